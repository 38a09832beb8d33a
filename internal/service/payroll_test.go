package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// completedShift returns a finished 09:00-12:00 shift; callers adjust
// the timestamps per scenario.
func completedShift() *model.Shift {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	checkIn := start.Add(2 * time.Minute)
	signOut := end
	return &model.Shift{
		ID:             "sh-1",
		BookingID:      "bk-1",
		ClientName:     "Jane Doe",
		PostalCode:     "M5A 1A1",
		ScheduledDate:  "2025-01-10",
		ScheduledStart: start,
		ScheduledEnd:   end,
		ServiceKind:    model.ServiceStandard,
		PSWID:          7,
		PSWName:        "Amina Osei",
		Status:         model.ShiftCompleted,
		CheckedInAt:    &checkIn,
		SignedOutAt:    &signOut,
	}
}

func TestComputeEntryEndToEnd(t *testing.T) {
	// 09:00-12:00 scheduled, GPS check-in at 09:02, sign-out 12:10.
	// The late check-in does not shave paid hours; the 10 overtime
	// minutes are paid at 1.5x. At $25/h: $75.00 + $6.25 = $81.25.
	s := completedShift()
	signOut := s.ScheduledEnd.Add(10 * time.Minute)
	s.SignedOutAt = &signOut
	s.OvertimeMinutes = 10
	s.FlaggedForOvertime = true

	e, err := ComputeEntry(s, testSettings().cfg)
	require.NoError(t, err)

	assert.InDelta(t, 3.167, e.HoursWorked, 0.001)
	assert.Equal(t, int64(2500), e.HourlyRateCents)
	assert.Equal(t, int64(7500), e.BasePayCents)
	assert.Equal(t, int64(625), e.OvertimePayCents)
	assert.Zero(t, e.SurchargeCents)
	assert.Equal(t, int64(8125), e.TotalOwedCents)
	assert.Equal(t, model.PayrollPending, e.Status)
	assert.Equal(t, model.ServiceStandard, e.TaskName)
}

func TestComputeEntryOvertimeSplit(t *testing.T) {
	// Checkout 45 minutes past a 3h schedule: 3h at base rate plus
	// 0.75h at 1.5x, never the whole shift at 1.5x.
	s := completedShift()
	checkIn := s.ScheduledStart
	signOut := s.ScheduledEnd.Add(45 * time.Minute)
	s.CheckedInAt = &checkIn
	s.SignedOutAt = &signOut
	s.OvertimeMinutes = 45
	s.FlaggedForOvertime = true

	e, err := ComputeEntry(s, testSettings().cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7500), e.BasePayCents)
	assert.Equal(t, int64(2813), e.OvertimePayCents) // 0.75h * $37.50
	assert.Equal(t, int64(10313), e.TotalOwedCents)
}

func TestComputeEntryHospitalRate(t *testing.T) {
	s := completedShift()
	s.ServiceKind = model.ServiceHospitalVisit

	e, err := ComputeEntry(s, testSettings().cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), e.HourlyRateCents)
	assert.Equal(t, int64(9000), e.BasePayCents)
	assert.Equal(t, model.ServiceHospitalVisit, e.TaskName)
}

func TestComputeEntrySurgeZone(t *testing.T) {
	cfg := testSettings().cfg
	cfg.SurgeZones = []model.SurgeZone{
		{Prefix: "M5", FlatCents: 500, HourlyCents: 100},
	}
	s := completedShift()
	checkIn := s.ScheduledStart
	s.CheckedInAt = &checkIn

	e, err := ComputeEntry(s, cfg)
	require.NoError(t, err)
	// Flat $5 plus $1/h over 3 paid hours, kept apart from base pay.
	assert.Equal(t, int64(800), e.SurchargeCents)
	assert.Equal(t, int64(7500), e.BasePayCents)
	assert.Equal(t, int64(8300), e.TotalOwedCents)
}

func TestComputeEntryOutsideSurgeZone(t *testing.T) {
	cfg := testSettings().cfg
	cfg.SurgeZones = []model.SurgeZone{{Prefix: "K1", FlatCents: 500}}

	e, err := ComputeEntry(completedShift(), cfg)
	require.NoError(t, err)
	assert.Zero(t, e.SurchargeCents)
}

func TestComputeEntryDeterminism(t *testing.T) {
	s := completedShift()
	cfg := testSettings().cfg

	first, err := ComputeEntry(s, cfg)
	require.NoError(t, err)
	second, err := ComputeEntry(s, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.HoursWorked, second.HoursWorked)
	assert.Equal(t, first.TotalOwedCents, second.TotalOwedCents)
	assert.Equal(t, *first, *second)
}

func TestComputeEntryGuards(t *testing.T) {
	s := completedShift()
	s.Status = model.ShiftActive
	_, err := ComputeEntry(s, testSettings().cfg)
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation, "only completed shifts are payable")

	s = completedShift()
	s.CheckedInAt = nil
	_, err = ComputeEntry(s, testSettings().cfg)
	_, isValidation = IsValidation(err)
	assert.True(t, isValidation)
}

func TestGenerateForShiftIsIdempotent(t *testing.T) {
	shifts := newMemShiftStore()
	entries := newMemPayrollStore()
	p := NewPayroll(shifts, entries, testSettings())

	s := completedShift()
	require.NoError(t, shifts.Insert(context.Background(), s))

	first, err := p.GenerateForShift(context.Background(), s.ID, adminActor)
	require.NoError(t, err)
	second, err := p.GenerateForShift(context.Background(), s.ID, adminActor)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "regeneration returns the stored entry")
	all, err := entries.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenerateForShiftAuthorization(t *testing.T) {
	p := NewPayroll(newMemShiftStore(), newMemPayrollStore(), testSettings())
	_, err := p.GenerateForShift(context.Background(), "sh-1", workerActor)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestClearSurfacesDoublePayout(t *testing.T) {
	shifts := newMemShiftStore()
	entries := newMemPayrollStore()
	p := NewPayroll(shifts, entries, testSettings())

	s := completedShift()
	require.NoError(t, shifts.Insert(context.Background(), s))
	e, err := p.GenerateForShift(context.Background(), s.ID, adminActor)
	require.NoError(t, err)

	require.NoError(t, p.Clear(context.Background(), e.ID, adminActor))
	err = p.Clear(context.Background(), e.ID, adminActor)
	msg, isValidation := IsValidation(err)
	require.True(t, isValidation)
	assert.Contains(t, msg, "already cleared")

	got, err := entries.GetByShiftID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayrollCleared, got.Status)
	assert.NotNil(t, got.ClearedAt)
}
