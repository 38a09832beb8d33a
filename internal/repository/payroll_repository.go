package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// PayrollRepo provides data access to the `payroll_entries` table.
// Entries are derived records: the calculator regenerates all money
// fields from the shift, and this repository never exposes a way to
// edit hours or totals after insertion. Clearing is the only mutation.
type PayrollRepo struct {
	db *sql.DB
}

// NewPayrollRepo returns a PayrollRepo bound to the given database.
func NewPayrollRepo(db *sql.DB) *PayrollRepo { return &PayrollRepo{db: db} }

const payrollColumns = `id, shift_id, psw_id, psw_name, task_name, scheduled_date,
	hours_worked, hourly_rate_cents, base_pay_cents, overtime_pay_cents,
	surcharge_cents, total_owed_cents, status, cleared_at, created_at`

// Insert stores a freshly derived entry and fills in its generated ID.
// A unique key on shift_id keeps regeneration idempotent: inserting a
// second entry for the same shift returns ErrConflict.
func (r *PayrollRepo) Insert(ctx context.Context, e *model.PayrollEntry) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payroll_entries (shift_id, psw_id, psw_name, task_name, scheduled_date,
			hours_worked, hourly_rate_cents, base_pay_cents, overtime_pay_cents,
			surcharge_cents, total_owed_cents, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ShiftID, e.PSWID, e.PSWName, e.TaskName, e.ScheduledDate,
		e.HoursWorked, e.HourlyRateCents, e.BasePayCents, e.OvertimePayCents,
		e.SurchargeCents, e.TotalOwedCents, e.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByShiftID loads the entry derived from one shift, or ErrNotFound.
func (r *PayrollRepo) GetByShiftID(ctx context.Context, shiftID string) (*model.PayrollEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll_entries WHERE shift_id = ?`, shiftID)
	e, err := scanPayroll(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

// ListByPSW returns a worker's entries, newest first.
func (r *PayrollRepo) ListByPSW(ctx context.Context, pswID uint64) ([]*model.PayrollEntry, error) {
	return r.list(ctx,
		`SELECT `+payrollColumns+` FROM payroll_entries WHERE psw_id = ? ORDER BY created_at DESC`, pswID)
}

// ListAll returns every entry, newest first.
func (r *PayrollRepo) ListAll(ctx context.Context) ([]*model.PayrollEntry, error) {
	return r.list(ctx, `SELECT ` + payrollColumns + ` FROM payroll_entries ORDER BY created_at DESC`)
}

// ListPending returns entries awaiting clearance, oldest first so the
// longest-waiting workers surface at the top.
func (r *PayrollRepo) ListPending(ctx context.Context) ([]*model.PayrollEntry, error) {
	return r.list(ctx,
		`SELECT `+payrollColumns+` FROM payroll_entries WHERE status = ? ORDER BY created_at ASC`,
		model.PayrollPending)
}

// Clear marks a pending entry as cleared. The status guard keeps the
// operation idempotent under double submission; clearing an already
// cleared entry returns ErrConflict.
func (r *PayrollRepo) Clear(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payroll_entries SET status = ?, cleared_at = ? WHERE id = ? AND status = ?`,
		model.PayrollCleared, at.UTC(), id, model.PayrollPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM payroll_entries WHERE id = ?`, id).Scan(&exists)
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

func (r *PayrollRepo) list(ctx context.Context, query string, args ...interface{}) ([]*model.PayrollEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*model.PayrollEntry, 0)
	for rows.Next() {
		e, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanPayroll(row rowScanner) (*model.PayrollEntry, error) {
	var (
		e         model.PayrollEntry
		clearedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.ShiftID, &e.PSWID, &e.PSWName, &e.TaskName, &e.ScheduledDate,
		&e.HoursWorked, &e.HourlyRateCents, &e.BasePayCents, &e.OvertimePayCents,
		&e.SurchargeCents, &e.TotalOwedCents, &e.Status, &clearedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if clearedAt.Valid {
		t := clearedAt.Time
		e.ClearedAt = &t
	}
	return &e, nil
}
