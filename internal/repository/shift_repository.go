package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// ShiftRepo provides data access to the `shifts` table. List-valued
// fields (services, preferred languages, care sheet, override log) are
// stored as JSON text columns; timestamps are stored in UTC.
//
// Every lifecycle transition goes through UpdateIfStatus, a single
// conditional UPDATE guarded on the current status. The guard is what
// makes Claim atomic: of two near-simultaneous claim attempts, exactly
// one UPDATE matches the AVAILABLE row and the other observes zero
// affected rows and gets ErrConflict. No transition is ever expressed
// as a client-side read-modify-write.
type ShiftRepo struct {
	db *sql.DB
}

// NewShiftRepo returns a ShiftRepo bound to the given database.
func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

// ShiftPatch describes the fields a lifecycle transition updates.
// Nil fields are left untouched; all non-nil fields are applied in the
// same UPDATE statement so a transition either fully applies or not at
// all.
type ShiftPatch struct {
	Status            *string
	PSWID             *uint64
	PSWName           *string
	PSWPhotoURL       *string
	AgreementAccepted *bool
	CheckedInAt       *time.Time
	CheckInLat        *float64
	CheckInLng        *float64
	SignedOutAt       *time.Time
	OvertimeMinutes   *int
	FlaggedOvertime   *bool
	CareSheet         *model.CareSheet
	AppendOverride    *model.OverrideEntry
}

const shiftColumns = `id, booking_id, client_name, client_phone, patient_address, postal_code,
	scheduled_date, scheduled_start, scheduled_end, services, service_kind,
	preferred_languages, preferred_gender, psw_id, psw_name, psw_photo_url,
	status, posted_at, agreement_accepted, checked_in_at, check_in_lat, check_in_lng,
	signed_out_at, overtime_minutes, flagged_for_overtime, care_sheet, override_log,
	created_at, updated_at`

// Insert stores a newly posted shift.
func (r *ShiftRepo) Insert(ctx context.Context, s *model.Shift) error {
	services, err := json.Marshal(s.Services)
	if err != nil {
		return err
	}
	languages, err := json.Marshal(s.PreferredLanguages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shifts (id, booking_id, client_name, client_phone, patient_address, postal_code,
			scheduled_date, scheduled_start, scheduled_end, services, service_kind,
			preferred_languages, preferred_gender, status, posted_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.BookingID, s.ClientName, s.ClientPhone, s.PatientAddress, s.PostalCode,
		s.ScheduledDate, s.ScheduledStart.UTC(), s.ScheduledEnd.UTC(), services, s.ServiceKind,
		languages, s.PreferredGender, s.Status, s.PostedAt.UTC())
	return err
}

// GetByID loads one shift. Returns ErrNotFound when it does not exist.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id)
	s, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

// ListByStatus returns all shifts in the given status ordered by
// posting time, newest last so pollers see a stable feed.
func (r *ShiftRepo) ListByStatus(ctx context.Context, status string) ([]*model.Shift, error) {
	return r.list(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE status = ? ORDER BY posted_at ASC`, status)
}

// ListByPSW returns all shifts ever assigned to a worker, newest first.
func (r *ShiftRepo) ListByPSW(ctx context.Context, pswID uint64) ([]*model.Shift, error) {
	return r.list(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE psw_id = ? ORDER BY posted_at DESC`, pswID)
}

// ListAll returns every shift. Used by the admin dashboard and the
// risk scanner; both tolerate eventually-consistent snapshots.
func (r *ShiftRepo) ListAll(ctx context.Context) ([]*model.Shift, error) {
	return r.list(ctx, `SELECT ` + shiftColumns + ` FROM shifts ORDER BY posted_at DESC`)
}

// UpdateIfStatus applies a patch only when the shift is currently in
// expectedStatus. ErrConflict is returned when the guard fails (the
// shift moved on), ErrNotFound when no shift with the id exists.
func (r *ShiftRepo) UpdateIfStatus(ctx context.Context, id, expectedStatus string, patch ShiftPatch) error {
	sets := []string{"updated_at = UTC_TIMESTAMP()"}
	args := []interface{}{}

	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.PSWID != nil {
		add("psw_id", *patch.PSWID)
	}
	if patch.PSWName != nil {
		add("psw_name", *patch.PSWName)
	}
	if patch.PSWPhotoURL != nil {
		add("psw_photo_url", *patch.PSWPhotoURL)
	}
	if patch.AgreementAccepted != nil {
		add("agreement_accepted", *patch.AgreementAccepted)
	}
	if patch.CheckedInAt != nil {
		add("checked_in_at", patch.CheckedInAt.UTC())
	}
	if patch.CheckInLat != nil {
		add("check_in_lat", *patch.CheckInLat)
	}
	if patch.CheckInLng != nil {
		add("check_in_lng", *patch.CheckInLng)
	}
	if patch.SignedOutAt != nil {
		add("signed_out_at", patch.SignedOutAt.UTC())
	}
	if patch.OvertimeMinutes != nil {
		add("overtime_minutes", *patch.OvertimeMinutes)
	}
	if patch.FlaggedOvertime != nil {
		add("flagged_for_overtime", *patch.FlaggedOvertime)
	}
	if patch.CareSheet != nil {
		b, err := json.Marshal(patch.CareSheet)
		if err != nil {
			return err
		}
		add("care_sheet", string(b))
	}
	if patch.AppendOverride != nil {
		b, err := json.Marshal(patch.AppendOverride)
		if err != nil {
			return err
		}
		// JSON_ARRAY_APPEND keeps the append inside the same guarded
		// statement instead of a read-modify-write round trip.
		sets = append(sets,
			"override_log = JSON_ARRAY_APPEND(COALESCE(override_log, JSON_ARRAY()), '$', CAST(? AS JSON))")
		args = append(args, string(b))
	}

	query := fmt.Sprintf("UPDATE shifts SET %s WHERE id = ? AND status = ?", strings.Join(sets, ", "))
	args = append(args, id, expectedStatus)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing shift from a lost race.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shifts WHERE id = ?`, id).Scan(&exists)
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

func (r *ShiftRepo) list(ctx context.Context, query string, args ...interface{}) ([]*model.Shift, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shifts := make([]*model.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShift(row rowScanner) (*model.Shift, error) {
	var (
		s            model.Shift
		services     []byte
		languages    []byte
		pswID        sql.NullInt64
		pswName      sql.NullString
		pswPhoto     sql.NullString
		checkedInAt  sql.NullTime
		checkInLat   sql.NullFloat64
		checkInLng   sql.NullFloat64
		signedOutAt  sql.NullTime
		careSheet    sql.NullString
		overrideLog  sql.NullString
		prefGender   sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.BookingID, &s.ClientName, &s.ClientPhone, &s.PatientAddress, &s.PostalCode,
		&s.ScheduledDate, &s.ScheduledStart, &s.ScheduledEnd, &services, &s.ServiceKind,
		&languages, &prefGender, &pswID, &pswName, &pswPhoto,
		&s.Status, &s.PostedAt, &s.AgreementAccepted, &checkedInAt, &checkInLat, &checkInLng,
		&signedOutAt, &s.OvertimeMinutes, &s.FlaggedForOvertime, &careSheet, &overrideLog,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &s.Services); err != nil {
			return nil, err
		}
	}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &s.PreferredLanguages); err != nil {
			return nil, err
		}
	}
	if prefGender.Valid {
		s.PreferredGender = prefGender.String
	}
	if pswID.Valid {
		s.PSWID = uint64(pswID.Int64)
	}
	if pswName.Valid {
		s.PSWName = pswName.String
	}
	if pswPhoto.Valid {
		s.PSWPhotoURL = pswPhoto.String
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		s.CheckedInAt = &t
	}
	if checkInLat.Valid {
		v := checkInLat.Float64
		s.CheckInLat = &v
	}
	if checkInLng.Valid {
		v := checkInLng.Float64
		s.CheckInLng = &v
	}
	if signedOutAt.Valid {
		t := signedOutAt.Time
		s.SignedOutAt = &t
	}
	if careSheet.Valid && careSheet.String != "" {
		var cs model.CareSheet
		if err := json.Unmarshal([]byte(careSheet.String), &cs); err != nil {
			return nil, err
		}
		s.CareSheet = &cs
	}
	if overrideLog.Valid && overrideLog.String != "" {
		if err := json.Unmarshal([]byte(overrideLog.String), &s.OverrideLog); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
