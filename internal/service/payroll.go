package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tiffarshi-web/pswdirect/internal/logging"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
)

// PayrollStore is the persistence surface for derived pay records.
type PayrollStore interface {
	Insert(ctx context.Context, e *model.PayrollEntry) error
	GetByShiftID(ctx context.Context, shiftID string) (*model.PayrollEntry, error)
	ListByPSW(ctx context.Context, pswID uint64) ([]*model.PayrollEntry, error)
	ListAll(ctx context.Context) ([]*model.PayrollEntry, error)
	ListPending(ctx context.Context) ([]*model.PayrollEntry, error)
	Clear(ctx context.Context, id uint64, at time.Time) error
}

// Payroll derives pay records from completed shifts and manages their
// pending -> cleared flow. The derivation itself is ComputeEntry, a
// pure function; Payroll adds persistence and authorization around it.
type Payroll struct {
	shifts   ShiftStore
	entries  PayrollStore
	settings SettingsSource
	now      func() time.Time
}

func NewPayroll(shifts ShiftStore, entries PayrollStore, settings SettingsSource) *Payroll {
	return &Payroll{
		shifts:   shifts,
		entries:  entries,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests only.
func (p *Payroll) SetClock(now func() time.Time) { p.now = now }

// ComputeEntry is the pure pay derivation over a completed shift and
// the current rate table. Recomputing from the same inputs always
// yields the same figures and the shift itself is never touched.
//
// The paid window opens at the scheduled start when the worker's
// verified check-in lands a few minutes late (GPS acquisition delay
// must not shave paid hours) and at the check-in when the worker
// started early. Overtime is the portion past the scheduled end, paid
// at 1.5x; the base portion is everything before it. All money math is
// integer cents over whole minutes, rounded half up, so the split is
// exact and reproducible.
func ComputeEntry(s *model.Shift, settings model.OperationalSettings) (*model.PayrollEntry, error) {
	if s.Status != model.ShiftCompleted {
		return nil, validationf("payroll can only be generated for a completed shift")
	}
	if s.CheckedInAt == nil || s.SignedOutAt == nil {
		return nil, validationf("shift is missing check-in or sign-out timestamps")
	}

	paidFrom := *s.CheckedInAt
	if s.ScheduledStart.Before(paidFrom) {
		paidFrom = s.ScheduledStart
	}
	paidMinutes := int64(s.SignedOutAt.Sub(paidFrom).Minutes())
	if paidMinutes < 0 {
		paidMinutes = 0
	}
	overtimeMinutes := int64(s.OvertimeMinutes)
	if overtimeMinutes > paidMinutes {
		overtimeMinutes = paidMinutes
	}
	baseMinutes := paidMinutes - overtimeMinutes

	rate := settings.Rates.RateFor(s.ServiceKind)
	basePay := (rate*baseMinutes + 30) / 60
	overtimePay := (rate*3*overtimeMinutes + 60) / 120

	var surcharge int64
	if zone := settings.SurgeZoneFor(s.PostalCode); zone != nil {
		surcharge = zone.FlatCents + (zone.HourlyCents*paidMinutes+30)/60
	}

	return &model.PayrollEntry{
		ShiftID:          s.ID,
		PSWID:            s.PSWID,
		PSWName:          s.PSWName,
		TaskName:         s.ServiceKind,
		ScheduledDate:    s.ScheduledDate,
		HoursWorked:      float64(paidMinutes) / 60,
		HourlyRateCents:  rate,
		BasePayCents:     basePay,
		OvertimePayCents: overtimePay,
		SurchargeCents:   surcharge,
		TotalOwedCents:   basePay + overtimePay + surcharge,
		Status:           model.PayrollPending,
	}, nil
}

// GenerateForShift derives and stores the pay record for a completed
// shift. Generation is idempotent per shift: a second call returns the
// existing entry instead of inserting a duplicate.
func (p *Payroll) GenerateForShift(ctx context.Context, shiftID string, actor Actor) (*model.PayrollEntry, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	s, err := p.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	cfg, err := p.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := ComputeEntry(s, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.entries.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return p.entries.GetByShiftID(ctx, shiftID)
		}
		return nil, err
	}
	logging.Log.WithFields(logrus.Fields{
		"shift_id":   shiftID,
		"psw_id":     entry.PSWID,
		"total_owed": entry.TotalOwedCents,
		"admin_id":   actor.ID,
	}).Info("payroll entry generated")
	return entry, nil
}

// Clear marks a pending entry as paid out. Clearing an already-cleared
// entry is a conflict, not a silent no-op, so double payouts surface.
func (p *Payroll) Clear(ctx context.Context, entryID uint64, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrNotAuthorized
	}
	if err := p.entries.Clear(ctx, entryID, p.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return validationf("payroll entry not found")
		case errors.Is(err, repository.ErrConflict):
			return validationf("payroll entry is already cleared")
		default:
			return err
		}
	}
	logging.Log.WithFields(logrus.Fields{
		"entry_id": entryID,
		"admin_id": actor.ID,
	}).Info("payroll entry cleared")
	return nil
}

// ListForWorker returns a worker's own pay records.
func (p *Payroll) ListForWorker(ctx context.Context, actor Actor) ([]*model.PayrollEntry, error) {
	return p.entries.ListByPSW(ctx, actor.ID)
}

// ListAll returns every pay record for the admin report view.
func (p *Payroll) ListAll(ctx context.Context, actor Actor) ([]*model.PayrollEntry, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return p.entries.ListAll(ctx)
}
