package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tiffarshi-web/pswdirect/internal/eligibility"
	"github.com/tiffarshi-web/pswdirect/internal/geo"
	"github.com/tiffarshi-web/pswdirect/internal/logging"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/queue"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
)

// Actor identifies the caller of a lifecycle operation, as established
// by the identity middleware: who they are and which role they hold.
type Actor struct {
	ID   uint64
	Name string
	Role string
}

// IsAdmin reports whether the actor may perform override operations.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// ShiftStore is the record-store surface the lifecycle needs. The
// MySQL implementation lives in internal/repository; tests use an
// in-memory one. UpdateIfStatus is the load-bearing method: every
// transition is a single conditional update guarded on the current
// status (compare-and-swap), never a client-side read-modify-write.
type ShiftStore interface {
	Insert(ctx context.Context, s *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Shift, error)
	ListByPSW(ctx context.Context, pswID uint64) ([]*model.Shift, error)
	ListAll(ctx context.Context) ([]*model.Shift, error)
	UpdateIfStatus(ctx context.Context, id, expectedStatus string, patch repository.ShiftPatch) error
}

// WorkerDirectory resolves worker profiles for claim stamping and
// eligibility checks.
type WorkerDirectory interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.WorkerProfile, error)
}

// SettingsSource supplies the current operational settings.
type SettingsSource interface {
	Get(ctx context.Context) (model.OperationalSettings, error)
}

// EventPublisher sends shift lifecycle events toward the notifier.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ShiftEvent) error
}

// Lifecycle owns the shift state machine:
//
//	available -> claimed -> active -> completed
//	              claimed/active -> stopped (admin only, terminal)
//
// plus the audited admin overrides that bypass the GPS and care-sheet
// gates. Transitions never partially apply: each is one conditional
// update against the store.
type Lifecycle struct {
	shifts   ShiftStore
	workers  WorkerDirectory
	settings SettingsSource
	posting  eligibility.PostingLog
	events   EventPublisher
	now      func() time.Time
}

// NewLifecycle wires a Lifecycle. postingLog and events may be nil, in
// which case those side effects are skipped (used in tests).
func NewLifecycle(shifts ShiftStore, workers WorkerDirectory, settings SettingsSource, postingLog eligibility.PostingLog, events EventPublisher) *Lifecycle {
	return &Lifecycle{
		shifts:   shifts,
		workers:  workers,
		settings: settings,
		posting:  postingLog,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests only.
func (l *Lifecycle) SetClock(now func() time.Time) { l.now = now }

// PostShift opens a shift in the available pool from a booking. The
// service classification is decided here, once, from the labels; the
// posting instant is recorded under the booking id for the language
// reopen rule.
func (l *Lifecycle) PostShift(ctx context.Context, b *model.Booking) (*model.Shift, error) {
	now := l.now()
	s := &model.Shift{
		ID:                 uuid.NewString(),
		BookingID:          b.ID,
		ClientName:         b.ClientName,
		ClientPhone:        b.ClientPhone,
		PatientAddress:     b.PatientAddress,
		PostalCode:         b.PostalCode,
		ScheduledDate:      b.ScheduledDate,
		ScheduledStart:     b.ScheduledStart,
		ScheduledEnd:       b.ScheduledEnd,
		Services:           b.Services,
		ServiceKind:        ClassifyServices(b.Services),
		PreferredLanguages: b.PreferredLanguages,
		PreferredGender:    b.PreferredGender,
		Status:             model.ShiftAvailable,
		PostedAt:           now,
	}
	if err := l.shifts.Insert(ctx, s); err != nil {
		return nil, err
	}
	if l.posting != nil {
		if err := l.posting.RecordPosted(ctx, b.ID, now); err != nil {
			// The filter falls back to the shift's own posted_at.
			logging.Log.WithError(err).WithField("booking_id", b.ID).Warn("posting log write failed")
		}
	}
	l.publish(ctx, s, queue.EventShiftPosted, "")
	l.audit(s, "posted", Actor{}, "")
	return s, nil
}

// Claim assigns an available shift to a worker. Exclusivity comes from
// the store's guarded update: of two concurrent claims exactly one
// matches the AVAILABLE row, the loser gets ErrShiftConflict. The
// worker must have accepted the professional-conduct agreement.
func (l *Lifecycle) Claim(ctx context.Context, shiftID string, actor Actor, agreementAccepted bool) (*model.Shift, error) {
	if actor.Role != model.RolePSW {
		return nil, ErrNotAuthorized
	}
	if !agreementAccepted {
		return nil, validationf("the professional conduct agreement must be accepted before claiming a shift")
	}
	profile, err := l.workers.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationf("complete your worker profile before claiming shifts")
		}
		return nil, err
	}

	status := model.ShiftClaimed
	name := profile.DisplayName
	photo := profile.PhotoURL
	agreed := true
	patch := repository.ShiftPatch{
		Status:            &status,
		PSWID:             &actor.ID,
		PSWName:           &name,
		PSWPhotoURL:       &photo,
		AgreementAccepted: &agreed,
	}
	if err := l.shifts.UpdateIfStatus(ctx, shiftID, model.ShiftAvailable, patch); err != nil {
		return nil, mapStoreErr(err)
	}

	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	l.publish(ctx, s, queue.EventShiftClaimed, "")
	l.audit(s, "claimed", actor, "")
	return s, nil
}

// CheckIn moves a claimed shift to active after verifying the worker's
// GPS fix against the job site. Only the assigned worker may check in.
// A missing fix, or one outside the tolerance, is a validation error
// and the shift stays claimed; the mobile client owns GPS acquisition
// and reports permission/timeout failures itself.
func (l *Lifecycle) CheckIn(ctx context.Context, shiftID string, actor Actor, fix *geo.Coordinates) (*model.Shift, error) {
	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if s.Status != model.ShiftClaimed {
		return nil, ErrShiftConflict
	}
	if actor.Role != model.RolePSW || actor.ID != s.PSWID {
		return nil, ErrNotAuthorized
	}
	if fix == nil {
		return nil, validationf("a GPS location fix is required to check in")
	}
	cfg, err := l.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if site, ok := geo.LookupPostalCode(s.PostalCode); ok {
		if d := geo.DistanceKm(*fix, site); d > cfg.CheckInToleranceKm {
			return nil, validationf("you appear to be away from the job site; move closer or contact the office")
		}
	}
	// Unresolvable job-site postal codes fail open: a data gap must
	// not block a worker standing at the door.

	now := l.now()
	status := model.ShiftActive
	patch := repository.ShiftPatch{
		Status:      &status,
		CheckedInAt: &now,
		CheckInLat:  &fix.Lat,
		CheckInLng:  &fix.Lng,
	}
	if err := l.shifts.UpdateIfStatus(ctx, shiftID, model.ShiftClaimed, patch); err != nil {
		return nil, mapStoreErr(err)
	}
	s, err = l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	l.audit(s, "checked_in", actor, "")
	return s, nil
}

// CheckInOverride is the admin path past the GPS gate. It records no
// coordinates and appends an audit entry carrying the admin identity
// and the mandatory reason.
func (l *Lifecycle) CheckInOverride(ctx context.Context, shiftID string, admin Actor, reason string) (*model.Shift, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("an override reason is required")
	}

	now := l.now()
	status := model.ShiftActive
	patch := repository.ShiftPatch{
		Status:      &status,
		CheckedInAt: &now,
		AppendOverride: &model.OverrideEntry{
			Action: "checkin_override", AdminID: admin.ID, AdminName: admin.Name,
			Reason: reason, At: now,
		},
	}
	if err := l.shifts.UpdateIfStatus(ctx, shiftID, model.ShiftClaimed, patch); err != nil {
		return nil, mapStoreErr(err)
	}
	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	l.audit(s, "checkin_override", admin, reason)
	return s, nil
}

// SignOut completes an active shift. The assigned worker must submit a
// valid care sheet; free text is screened for contact-information
// leakage. Overtime is the time past the scheduled end, paid hours
// never shrink below the scheduled window for a slightly late GPS
// check-in.
func (l *Lifecycle) SignOut(ctx context.Context, shiftID string, actor Actor, sheet *model.CareSheet) (*model.Shift, error) {
	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if s.Status != model.ShiftActive {
		return nil, ErrShiftConflict
	}
	if actor.Role != model.RolePSW || actor.ID != s.PSWID {
		return nil, ErrNotAuthorized
	}
	if err := ValidateCareSheet(sheet); err != nil {
		return nil, err
	}
	return l.completeShift(ctx, s, actor, sheet, nil)
}

// SignOutOverride is the admin path past the care-sheet requirement.
// The shift completes without a care sheet; the override is logged
// with the admin identity and the mandatory reason.
func (l *Lifecycle) SignOutOverride(ctx context.Context, shiftID string, admin Actor, reason string) (*model.Shift, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("an override reason is required")
	}
	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if s.Status != model.ShiftActive {
		return nil, ErrShiftConflict
	}
	now := l.now()
	entry := &model.OverrideEntry{
		Action: "signout_override", AdminID: admin.ID, AdminName: admin.Name,
		Reason: reason, At: now,
	}
	return l.completeShift(ctx, s, admin, nil, entry)
}

func (l *Lifecycle) completeShift(ctx context.Context, s *model.Shift, actor Actor, sheet *model.CareSheet, override *model.OverrideEntry) (*model.Shift, error) {
	now := l.now()
	if s.CheckedInAt != nil && !now.After(*s.CheckedInAt) {
		return nil, validationf("sign-out must happen after check-in")
	}

	overtime := 0
	if now.After(s.ScheduledEnd) {
		overtime = int(now.Sub(s.ScheduledEnd).Minutes())
	}
	flagged := overtime > 0
	status := model.ShiftCompleted
	patch := repository.ShiftPatch{
		Status:          &status,
		SignedOutAt:     &now,
		OvertimeMinutes: &overtime,
		FlaggedOvertime: &flagged,
		CareSheet:       sheet,
		AppendOverride:  override,
	}
	if err := l.shifts.UpdateIfStatus(ctx, s.ID, model.ShiftActive, patch); err != nil {
		return nil, mapStoreErr(err)
	}
	s, err := l.shifts.GetByID(ctx, s.ID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	l.publish(ctx, s, queue.EventShiftCompleted, "")
	reason := ""
	if override != nil {
		reason = override.Reason
	}
	l.audit(s, "signed_out", actor, reason)
	return s, nil
}

// Stop terminates a claimed or active shift. Admin-only, terminal and
// distinct from completion; always requires a reason.
func (l *Lifecycle) Stop(ctx context.Context, shiftID string, admin Actor, reason string) (*model.Shift, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("a reason is required to stop a shift")
	}
	s, err := l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if s.Status != model.ShiftClaimed && s.Status != model.ShiftActive {
		return nil, ErrShiftConflict
	}

	now := l.now()
	status := model.ShiftStopped
	patch := repository.ShiftPatch{
		Status: &status,
		AppendOverride: &model.OverrideEntry{
			Action: "stop", AdminID: admin.ID, AdminName: admin.Name,
			Reason: reason, At: now,
		},
	}
	// Guard on the status we observed; if the shift moved between the
	// read and the update the caller gets a conflict and can retry
	// against the fresh state.
	if err := l.shifts.UpdateIfStatus(ctx, shiftID, s.Status, patch); err != nil {
		return nil, mapStoreErr(err)
	}
	s, err = l.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	l.publish(ctx, s, queue.EventShiftStopped, reason)
	l.audit(s, "stopped", admin, reason)
	return s, nil
}

// ClassifyServices tags a shift's service kind from its labels. The
// tag is decided once at posting so pay-time logic never re-parses
// free text.
func ClassifyServices(labels []string) string {
	for _, label := range labels {
		lower := strings.ToLower(label)
		if strings.Contains(lower, "hospital") || strings.Contains(lower, "doctor") {
			return model.ServiceHospitalVisit
		}
	}
	return model.ServiceStandard
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrShiftNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrShiftConflict
	default:
		return err
	}
}

func (l *Lifecycle) publish(ctx context.Context, s *model.Shift, eventType, reason string) {
	if l.events == nil {
		return
	}
	ev := queue.ShiftEvent{
		Type:            eventType,
		ShiftID:         s.ID,
		BookingID:       s.BookingID,
		ClientFirstName: s.ClientFirstName(),
		PostalCode:      s.PostalCode,
		ScheduledDate:   s.ScheduledDate,
		ScheduledStart:  s.ScheduledStart.UTC().Format(time.RFC3339),
		ScheduledEnd:    s.ScheduledEnd.UTC().Format(time.RFC3339),
		PSWID:           s.PSWID,
		PSWName:         s.PSWName,
		Status:          s.Status,
		Reason:          reason,
		OccurredAt:      l.now().Format(time.RFC3339),
	}
	if eventType == queue.EventShiftClaimed {
		ev.PatientAddress = s.PatientAddress
	}
	// Notification loss must never fail a transition.
	_ = l.events.Publish(ctx, ev)
}

func (l *Lifecycle) audit(s *model.Shift, action string, actor Actor, reason string) {
	fields := logrus.Fields{
		"shift_id": s.ID,
		"status":   s.Status,
		"action":   action,
	}
	if actor.ID != 0 {
		fields["actor_id"] = actor.ID
		fields["actor_name"] = actor.Name
		fields["actor_role"] = actor.Role
	}
	if reason != "" {
		fields["reason"] = reason
	}
	logging.Log.WithFields(fields).Info("shift transition")
}
