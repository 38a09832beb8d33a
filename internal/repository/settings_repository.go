package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/eligibility"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// settingsKey is the single row in the `settings` table holding the
// operational configuration blob.
const settingsKey = "operational"

// SettingsRepo persists the admin-configurable operational settings as
// one JSON document. Defaults come from the environment at startup;
// this table only exists so admin edits survive restarts.
type SettingsRepo struct {
	db       *sql.DB
	defaults model.OperationalSettings
}

// NewSettingsRepo returns a SettingsRepo that falls back to the given
// defaults while no row has been written yet.
func NewSettingsRepo(db *sql.DB, defaults model.OperationalSettings) *SettingsRepo {
	return &SettingsRepo{db: db, defaults: defaults}
}

// Get returns the stored settings, or the environment defaults when
// nothing has been saved.
func (r *SettingsRepo) Get(ctx context.Context) (model.OperationalSettings, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE name = ?`, settingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return r.defaults, nil
	}
	if err != nil {
		return model.OperationalSettings{}, err
	}
	var s model.OperationalSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.OperationalSettings{}, err
	}
	return s, nil
}

// FilterConfig exposes the current matching parameters to the
// eligibility filter, so admin edits to the radius or reopen window
// apply on the next browse rather than the next restart.
func (r *SettingsRepo) FilterConfig(ctx context.Context) (eligibility.Config, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return eligibility.Config{}, err
	}
	return eligibility.Config{
		RadiusKm:     s.ServiceRadiusKm,
		ReopenWindow: time.Duration(s.ReopenWindowHours * float64(time.Hour)),
	}, nil
}

// Put replaces the stored settings.
func (r *SettingsRepo) Put(ctx context.Context, s model.OperationalSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		settingsKey, string(raw))
	return err
}
