package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// AlertRepo provides data access to the `risk_alerts` table. Alerts
// are write-once diagnostics; the only mutations are resolve and
// delete, and neither touches the records an alert was derived from.
type AlertRepo struct {
	db *sql.DB
}

// NewAlertRepo returns an AlertRepo bound to the given database.
func NewAlertRepo(db *sql.DB) *AlertRepo { return &AlertRepo{db: db} }

const alertColumns = `id, category, severity, title, detected_issue, why_it_matters,
	likely_root_cause, recommended_action, source_ref, resolved, resolved_at,
	resolved_by, created_at`

// Insert stores one alert produced by a scan pass.
func (r *AlertRepo) Insert(ctx context.Context, a *model.RiskAlert) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO risk_alerts (id, category, severity, title, detected_issue,
			why_it_matters, likely_root_cause, recommended_action, source_ref, resolved)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Category, a.Severity, a.Title, a.DetectedIssue,
		a.WhyItMatters, a.LikelyRootCause, a.RecommendedAction, a.SourceRef, a.Resolved)
	return err
}

// ListAll returns every alert, unresolved first then newest first.
func (r *AlertRepo) ListAll(ctx context.Context) ([]*model.RiskAlert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM risk_alerts ORDER BY resolved ASC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	alerts := make([]*model.RiskAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Resolve marks an alert as handled. The resolved guard makes double
// resolution a no-op conflict rather than an overwrite of the original
// resolver.
func (r *AlertRepo) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE risk_alerts SET resolved = TRUE, resolved_at = ?, resolved_by = ?
		 WHERE id = ? AND resolved = FALSE`,
		at.UTC(), resolvedBy, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM risk_alerts WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes an alert outright.
func (r *AlertRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risk_alerts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUnresolved clears unresolved alerts ahead of a fresh scan so
// rescanning does not duplicate alerts for conditions that persist.
// Resolved alerts are kept as history.
func (r *AlertRepo) DeleteUnresolved(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risk_alerts WHERE resolved = FALSE`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanAlert(row rowScanner) (*model.RiskAlert, error) {
	var (
		a          model.RiskAlert
		resolvedAt sql.NullTime
		resolvedBy sql.NullString
	)
	err := row.Scan(&a.ID, &a.Category, &a.Severity, &a.Title, &a.DetectedIssue,
		&a.WhyItMatters, &a.LikelyRootCause, &a.RecommendedAction, &a.SourceRef,
		&a.Resolved, &resolvedAt, &resolvedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		a.ResolvedAt = &t
	}
	a.ResolvedBy = resolvedBy.String
	return &a, nil
}
