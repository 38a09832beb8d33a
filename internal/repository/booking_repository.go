package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// BookingRepo provides data access to the `bookings` table. Bookings
// are append-mostly: a client places one, a shift is opened from it,
// and afterwards it is only read back for history.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Insert stores a new booking.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	services, err := json.Marshal(b.Services)
	if err != nil {
		return err
	}
	languages, err := json.Marshal(b.PreferredLanguages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, client_user_id, client_name, client_phone, patient_address,
			postal_code, scheduled_date, scheduled_start, scheduled_end, services,
			preferred_languages, preferred_gender)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.ClientUserID, b.ClientName, b.ClientPhone, b.PatientAddress,
		b.PostalCode, b.ScheduledDate, b.ScheduledStart.UTC(), b.ScheduledEnd.UTC(), services,
		languages, b.PreferredGender)
	return err
}

// ListByClient returns a client's bookings, newest first.
func (r *BookingRepo) ListByClient(ctx context.Context, clientUserID uint64) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_user_id, client_name, client_phone, patient_address, postal_code,
			scheduled_date, scheduled_start, scheduled_end, services, preferred_languages,
			preferred_gender, created_at
		 FROM bookings WHERE client_user_id = ? ORDER BY created_at DESC`, clientUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		var (
			b         model.Booking
			services  []byte
			languages []byte
		)
		if err := rows.Scan(&b.ID, &b.ClientUserID, &b.ClientName, &b.ClientPhone,
			&b.PatientAddress, &b.PostalCode, &b.ScheduledDate, &b.ScheduledStart,
			&b.ScheduledEnd, &services, &languages, &b.PreferredGender, &b.CreatedAt); err != nil {
			return nil, err
		}
		if len(services) > 0 {
			if err := json.Unmarshal(services, &b.Services); err != nil {
				return nil, err
			}
		}
		if len(languages) > 0 {
			if err := json.Unmarshal(languages, &b.PreferredLanguages); err != nil {
				return nil, err
			}
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
