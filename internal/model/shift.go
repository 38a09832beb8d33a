package model

import (
	"strings"
	"time"
)

// Shift lifecycle statuses. Transitions only move forward:
// available -> claimed -> active -> completed, with an admin-only
// side exit to stopped from claimed or active. Both completed and
// stopped are terminal.
const (
	ShiftAvailable = "AVAILABLE"
	ShiftClaimed   = "CLAIMED"
	ShiftActive    = "ACTIVE"
	ShiftCompleted = "COMPLETED"
	ShiftStopped   = "STOPPED"
)

// Service classifications decided once when the shift is posted.
// The payroll rate lookup keys off this tag rather than re-matching
// the free-text service labels at pay time.
const (
	ServiceStandard      = "STANDARD"
	ServiceHospitalVisit = "HOSPITAL_VISIT"
)

// Gender preference values carried on a shift. Anything other than
// male/female is treated as no preference.
const (
	GenderMale         = "MALE"
	GenderFemale       = "FEMALE"
	GenderNoPreference = "NO_PREFERENCE"
)

// Shift is the canonical record of a scheduled care visit as stored in
// the `shifts` table. It is the source of truth for the lifecycle;
// payroll entries and risk alerts are derived projections and never
// authoritative over it.
//
// Fields:
//  ID                 – opaque stable identifier (UUID).
//  BookingID          – originating booking.
//  ClientName         – full client name (admin-facing).
//  ClientPhone        – client contact number (revealed after claim).
//  PatientAddress     – visit address.
//  PostalCode         – postal code of the visit address.
//  ScheduledDate      – calendar date of the visit (YYYY-MM-DD).
//  ScheduledStart     – scheduled start time.
//  ScheduledEnd       – scheduled end time.
//  Services           – ordered service labels requested by the client.
//  ServiceKind        – STANDARD or HOSPITAL_VISIT, set at posting.
//  PreferredLanguages – optional language codes for matching.
//  PreferredGender    – MALE, FEMALE or NO_PREFERENCE.
//  PSWID              – assigned worker, zero until claimed.
//  PSWName            – assigned worker's display name.
//  PSWPhotoURL        – assigned worker's photo URL.
//  Status             – lifecycle status, see constants above.
//  PostedAt           – when the shift entered the available pool.
//  AgreementAccepted  – worker accepted the conduct agreement at claim.
//  CheckedInAt        – set on GPS-verified check-in or admin override.
//  CheckInLat/Lng     – verified check-in fix; nil on admin override.
//  SignedOutAt        – set on sign-out; strictly after CheckedInAt.
//  OvertimeMinutes    – actual minus scheduled duration when positive.
//  FlaggedForOvertime – true when OvertimeMinutes > 0.
//  CareSheet          – post-visit report, nil until sign-out and nil
//                       forever on an admin override sign-out.
//  OverrideLog        – audit notes for admin overrides on this shift.
type Shift struct {
	ID                 string
	BookingID          string
	ClientName         string
	ClientPhone        string
	PatientAddress     string
	PostalCode         string
	ScheduledDate      string
	ScheduledStart     time.Time
	ScheduledEnd       time.Time
	Services           []string
	ServiceKind        string
	PreferredLanguages []string
	PreferredGender    string
	PSWID              uint64
	PSWName            string
	PSWPhotoURL        string
	Status             string
	PostedAt           time.Time
	AgreementAccepted  bool
	CheckedInAt        *time.Time
	CheckInLat         *float64
	CheckInLng         *float64
	SignedOutAt        *time.Time
	OvertimeMinutes    int
	FlaggedForOvertime bool
	CareSheet          *CareSheet
	OverrideLog        []OverrideEntry
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ClientFirstName returns the privacy-preserving projection of the
// client name shown to workers browsing the available pool: first name
// plus last initial ("Jane D.").
func (s *Shift) ClientFirstName() string {
	first, rest, found := strings.Cut(strings.TrimSpace(s.ClientName), " ")
	if !found || rest == "" {
		return first
	}
	return first + " " + rest[:1] + "."
}

// ScheduledMinutes returns the planned duration of the visit.
func (s *Shift) ScheduledMinutes() int {
	d := s.ScheduledEnd.Sub(s.ScheduledStart)
	if d < 0 {
		return 0
	}
	return int(d.Minutes())
}

// Terminal reports whether the shift can no longer change state.
func (s *Shift) Terminal() bool {
	return s.Status == ShiftCompleted || s.Status == ShiftStopped
}

// OverrideEntry records one admin override performed on a shift. Every
// override carries the acting admin's identity and a human-entered
// reason; the lifecycle service refuses overrides without one.
type OverrideEntry struct {
	Action    string    // e.g. "checkin_override", "signout_override", "stop"
	AdminID   uint64    // acting admin
	AdminName string    // acting admin's display name
	Reason    string    // mandatory human-entered reason
	At        time.Time // when the override was applied
}
