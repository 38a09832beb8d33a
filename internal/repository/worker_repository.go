package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// WorkerRepo provides data access to the `worker_profiles` table.
// Languages are stored as a JSON text column.
type WorkerRepo struct {
	db *sql.DB
}

// NewWorkerRepo returns a WorkerRepo bound to the given database.
func NewWorkerRepo(db *sql.DB) *WorkerRepo { return &WorkerRepo{db: db} }

// workerColumns is shared between the single-row and list queries.
const workerColumns = `user_id, display_name, phone, photo_url, gender, languages,
	home_postal_code, banking_on_file, created_at, updated_at`

// Upsert creates or replaces a worker's profile. Workers edit their
// own profile wholesale, so a full upsert is simpler and safer than
// per-field patches.
func (r *WorkerRepo) Upsert(ctx context.Context, p *model.WorkerProfile) error {
	languages, err := json.Marshal(p.Languages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO worker_profiles (user_id, display_name, phone, photo_url, gender, languages, home_postal_code, banking_on_file)
		 VALUES (?,?,?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE
			display_name = VALUES(display_name), phone = VALUES(phone),
			photo_url = VALUES(photo_url), gender = VALUES(gender),
			languages = VALUES(languages), home_postal_code = VALUES(home_postal_code),
			banking_on_file = VALUES(banking_on_file)`,
		p.UserID, p.DisplayName, p.Phone, p.PhotoURL, p.Gender, languages,
		p.HomePostalCode, p.BankingOnFile)
	return err
}

// GetByUserID loads one worker profile. Returns ErrNotFound when the
// worker has not created a profile yet.
func (r *WorkerRepo) GetByUserID(ctx context.Context, userID uint64) (*model.WorkerProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM worker_profiles WHERE user_id = ?`, userID)
	p, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// ListAll returns every worker profile, used by the risk scanner.
func (r *WorkerRepo) ListAll(ctx context.Context) ([]*model.WorkerProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workerColumns+` FROM worker_profiles ORDER BY user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	profiles := make([]*model.WorkerProfile, 0)
	for rows.Next() {
		p, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func scanWorker(row rowScanner) (*model.WorkerProfile, error) {
	var (
		p         model.WorkerProfile
		languages []byte
		gender    sql.NullString
		postal    sql.NullString
		phone     sql.NullString
		photo     sql.NullString
	)
	err := row.Scan(&p.UserID, &p.DisplayName, &phone, &photo, &gender, &languages,
		&postal, &p.BankingOnFile, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &p.Languages); err != nil {
			return nil, err
		}
	}
	p.Gender = gender.String
	p.HomePostalCode = postal.String
	p.Phone = phone.String
	p.PhotoURL = photo.String
	return &p, nil
}
