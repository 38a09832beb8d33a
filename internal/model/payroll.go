package model

import "time"

// Payroll entry statuses.
const (
	PayrollPending = "PENDING"
	PayrollCleared = "CLEARED"
)

// PayrollEntry is the derived pay record for one completed shift as
// stored in the `payroll_entries` table. Every monetary figure is in
// cents. HoursWorked and TotalOwedCents are always recomputed from the
// shift's check-in/out timestamps and the rate table; they are never
// edited independently once generated.
//
// Fields:
//  ID               – primary key identifier.
//  ShiftID          – completed shift this entry was derived from.
//  PSWID            – worker owed the pay.
//  PSWName          – worker display name, denormalized for reports.
//  TaskName         – service classification used for the rate lookup.
//  ScheduledDate    – calendar date of the shift.
//  HoursWorked      – paid window in hours, >= 0. The window opens at
//                     min(checkedInAt, scheduledStart) and closes at
//                     signedOutAt.
//  HourlyRateCents  – applicable rate at generation time.
//  BasePayCents     – non-overtime minutes at the hourly rate.
//  OvertimePayCents – overtime minutes at 1.5x the hourly rate.
//  SurchargeCents   – surge-zone bonus, tracked apart from base pay.
//  TotalOwedCents   – base + overtime + surcharge.
//  Status           – PENDING until an admin clears it.
//  ClearedAt        – when the entry was cleared (nullable).
type PayrollEntry struct {
	ID               uint64
	ShiftID          string
	PSWID            uint64
	PSWName          string
	TaskName         string
	ScheduledDate    string
	HoursWorked      float64
	HourlyRateCents  int64
	BasePayCents     int64
	OvertimePayCents int64
	SurchargeCents   int64
	TotalOwedCents   int64
	Status           string
	ClearedAt        *time.Time
	CreatedAt        time.Time
}

// RateTable holds the admin-configurable hourly rates in cents.
type RateTable struct {
	StandardHomeCareCents      int64
	HospitalOrDoctorVisitCents int64
}

// RateFor returns the hourly rate for a service classification.
// Unknown kinds fall back to the standard home-care rate.
func (r RateTable) RateFor(serviceKind string) int64 {
	if serviceKind == ServiceHospitalVisit {
		return r.HospitalOrDoctorVisitCents
	}
	return r.StandardHomeCareCents
}

// SurgeZone is a postal-prefix pay bonus: shifts whose postal code
// starts with Prefix earn FlatCents once plus HourlyCents per hour
// worked, on top of base and overtime pay.
type SurgeZone struct {
	Prefix      string
	FlatCents   int64
	HourlyCents int64
}
