package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffarshi-web/pswdirect/internal/geo"
	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/queue"
)

var (
	workerActor = Actor{ID: 7, Name: "Amina Osei", Role: model.RolePSW}
	otherWorker = Actor{ID: 8, Name: "Dmitri Alvarez", Role: model.RolePSW}
	adminActor  = Actor{ID: 1, Name: "Ops Admin", Role: model.RoleAdmin}
)

func newTestLifecycle(t *testing.T) (*Lifecycle, *memShiftStore, *capturePublisher) {
	t.Helper()
	store := newMemShiftStore()
	workers := newMemWorkerDir(
		&model.WorkerProfile{UserID: 7, DisplayName: "Amina Osei", PhotoURL: "https://cdn.example.com/amina.jpg", Gender: model.GenderFemale, Languages: []string{"en"}},
		&model.WorkerProfile{UserID: 8, DisplayName: "Dmitri Alvarez", Gender: model.GenderMale, Languages: []string{"en", "ru"}},
	)
	pub := &capturePublisher{}
	return NewLifecycle(store, workers, testSettings(), nil, pub), store, pub
}

func testBooking() *model.Booking {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:             "bk-100",
		ClientUserID:   42,
		ClientName:     "Jane Doe",
		ClientPhone:    "416-555-0100",
		PatientAddress: "12 Berkeley St, Toronto",
		PostalCode:     "M5A 1A1",
		ScheduledDate:  "2025-01-10",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(3 * time.Hour),
		Services:       []string{"Meal preparation", "Light housekeeping"},
	}
}

func validSheet() *model.CareSheet {
	return &model.CareSheet{
		MoodOnArrival:   "calm",
		MoodOnDeparture: "cheerful",
		TasksCompleted:  []string{"Prepared lunch", "Tidied kitchen"},
		Observations:    "Client ate well and was in good spirits.",
	}
}

// postAndClaim walks a fresh shift to CLAIMED for tests of the later
// transitions.
func postAndClaim(t *testing.T, lc *Lifecycle) *model.Shift {
	t.Helper()
	s, err := lc.PostShift(context.Background(), testBooking())
	require.NoError(t, err)
	s, err = lc.Claim(context.Background(), s.ID, workerActor, true)
	require.NoError(t, err)
	return s
}

func TestPostShiftOpensAvailable(t *testing.T) {
	lc, _, pub := newTestLifecycle(t)

	s, err := lc.PostShift(context.Background(), testBooking())
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, model.ShiftAvailable, s.Status)
	assert.Equal(t, model.ServiceStandard, s.ServiceKind)
	assert.False(t, s.PostedAt.IsZero())
	assert.Zero(t, s.PSWID)

	posted := pub.byType(queue.EventShiftPosted)
	require.Len(t, posted, 1)
	assert.Equal(t, "Jane D.", posted[0].ClientFirstName)
	assert.Empty(t, posted[0].PatientAddress, "pool events must not leak the address")
}

func TestPostShiftClassifiesHospitalVisits(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	b := testBooking()
	b.Services = []string{"Escort to Doctor Appointment"}

	s, err := lc.PostShift(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, model.ServiceHospitalVisit, s.ServiceKind)
}

func TestClaimStampsWorker(t *testing.T) {
	lc, _, pub := newTestLifecycle(t)
	s, err := lc.PostShift(context.Background(), testBooking())
	require.NoError(t, err)

	s, err = lc.Claim(context.Background(), s.ID, workerActor, true)
	require.NoError(t, err)

	assert.Equal(t, model.ShiftClaimed, s.Status)
	assert.Equal(t, workerActor.ID, s.PSWID)
	assert.Equal(t, "Amina Osei", s.PSWName)
	assert.True(t, s.AgreementAccepted)

	claimed := pub.byType(queue.EventShiftClaimed)
	require.Len(t, claimed, 1)
	assert.Equal(t, "12 Berkeley St, Toronto", claimed[0].PatientAddress,
		"the assigned worker's notification carries the address")
}

func TestClaimRequiresAgreementAndRole(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s, err := lc.PostShift(context.Background(), testBooking())
	require.NoError(t, err)

	_, err = lc.Claim(context.Background(), s.ID, workerActor, false)
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)

	_, err = lc.Claim(context.Background(), s.ID, adminActor, true)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	got, err := lc.shifts.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftAvailable, got.Status, "failed claims leave the shift available")
}

func TestClaimExclusivity(t *testing.T) {
	lc, store, _ := newTestLifecycle(t)
	s, err := lc.PostShift(context.Background(), testBooking())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	winners := []Actor{workerActor, otherWorker}
	for i := range winners {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = lc.Claim(context.Background(), s.ID, winners[i], true)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrShiftConflict):
			conflicts++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one claim wins")
	assert.Equal(t, 1, conflicts, "the loser gets a state conflict")

	got, err := store.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClaimed, got.Status)
	assert.Contains(t, []uint64{workerActor.ID, otherWorker.ID}, got.PSWID)
}

func TestCheckInVerifiesLocation(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	site, ok := geo.LookupPostalCode("M5A 1A1")
	require.True(t, ok)

	s, err := lc.CheckIn(context.Background(), s.ID, workerActor, &site)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftActive, s.Status)
	require.NotNil(t, s.CheckedInAt)
	require.NotNil(t, s.CheckInLat)
	assert.InDelta(t, site.Lat, *s.CheckInLat, 1e-9)
}

func TestCheckInRejectsFarFix(t *testing.T) {
	lc, store, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	ottawa, ok := geo.LookupPostalCode("K1P 1A1")
	require.True(t, ok)

	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &ottawa)
	msg, isValidation := IsValidation(err)
	require.True(t, isValidation)
	assert.Contains(t, msg, "away from the job site")

	got, err := store.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClaimed, got.Status, "a failed check-in never partially applies")
	assert.Nil(t, got.CheckedInAt)
}

func TestCheckInRequiresFixAndAssignedWorker(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, nil)
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)

	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err = lc.CheckIn(context.Background(), s.ID, otherWorker, &fix)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCheckInFailsOpenOnUnknownSite(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	b := testBooking()
	b.PostalCode = "X9X 9X9"
	s, err := lc.PostShift(context.Background(), b)
	require.NoError(t, err)
	s, err = lc.Claim(context.Background(), s.ID, workerActor, true)
	require.NoError(t, err)

	anywhere := geo.Coordinates{Lat: 43.0, Lng: -79.0}
	s, err = lc.CheckIn(context.Background(), s.ID, workerActor, &anywhere)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftActive, s.Status)
}

func TestCheckInOverride(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	_, err := lc.CheckInOverride(context.Background(), s.ID, workerActor, "forgot phone")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = lc.CheckInOverride(context.Background(), s.ID, adminActor, "  ")
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation, "a reason is mandatory")

	s, err = lc.CheckInOverride(context.Background(), s.ID, adminActor, "worker phone died, confirmed by client call")
	require.NoError(t, err)
	assert.Equal(t, model.ShiftActive, s.Status)
	assert.Nil(t, s.CheckInLat, "overrides record no coordinates")
	require.Len(t, s.OverrideLog, 1)
	assert.Equal(t, "checkin_override", s.OverrideLog[0].Action)
	assert.Equal(t, adminActor.ID, s.OverrideLog[0].AdminID)
	assert.Equal(t, "worker phone died, confirmed by client call", s.OverrideLog[0].Reason)
}

func TestSignOutComputesOvertime(t *testing.T) {
	lc, _, pub := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	checkIn := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	lc.SetClock(func() time.Time { return checkIn })
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	lc.SetClock(func() time.Time { return time.Date(2025, 1, 10, 12, 45, 0, 0, time.UTC) })
	s, err = lc.SignOut(context.Background(), s.ID, workerActor, validSheet())
	require.NoError(t, err)

	assert.Equal(t, model.ShiftCompleted, s.Status)
	assert.Equal(t, 45, s.OvertimeMinutes)
	assert.True(t, s.FlaggedForOvertime)
	require.NotNil(t, s.CareSheet)
	assert.Len(t, pub.byType(queue.EventShiftCompleted), 1)
}

func TestSignOutOnTimeIsNotFlagged(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	lc.SetClock(func() time.Time { return time.Date(2025, 1, 10, 9, 2, 0, 0, time.UTC) })
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	lc.SetClock(func() time.Time { return time.Date(2025, 1, 10, 11, 55, 0, 0, time.UTC) })
	s, err = lc.SignOut(context.Background(), s.ID, workerActor, validSheet())
	require.NoError(t, err)
	assert.Zero(t, s.OvertimeMinutes)
	assert.False(t, s.FlaggedForOvertime)
}

func TestSignOutRejectsContactInfoInNotes(t *testing.T) {
	lc, store, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	leaky := validSheet()
	leaky.Observations = "Call me any time at 416-555-0199 for updates."
	_, err = lc.SignOut(context.Background(), s.ID, workerActor, leaky)
	_, isValidation := IsValidation(err)
	require.True(t, isValidation)

	leaky = validSheet()
	leaky.Observations = "Reach me at amina@example.com instead."
	_, err = lc.SignOut(context.Background(), s.ID, workerActor, leaky)
	_, isValidation = IsValidation(err)
	require.True(t, isValidation)

	got, err := store.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftActive, got.Status, "rejected care sheets never complete the shift")
}

func TestSignOutRequiresCareSheetAndActiveState(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	// Still CLAIMED: signing out is a state conflict.
	_, err := lc.SignOut(context.Background(), s.ID, workerActor, validSheet())
	assert.ErrorIs(t, err, ErrShiftConflict)

	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err = lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	_, err = lc.SignOut(context.Background(), s.ID, workerActor, nil)
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)

	_, err = lc.SignOut(context.Background(), s.ID, otherWorker, validSheet())
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSignOutOverrideCompletesWithoutSheet(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	_, err = lc.SignOutOverride(context.Background(), s.ID, adminActor, "")
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)

	s, err = lc.SignOutOverride(context.Background(), s.ID, adminActor, "worker app crashed, hours confirmed by client")
	require.NoError(t, err)
	assert.Equal(t, model.ShiftCompleted, s.Status)
	assert.Nil(t, s.CareSheet)
	require.Len(t, s.OverrideLog, 1)
	assert.Equal(t, "signout_override", s.OverrideLog[0].Action)
}

func TestStopIsAdminOnlyAndTerminal(t *testing.T) {
	lc, _, pub := newTestLifecycle(t)
	s := postAndClaim(t, lc)

	_, err := lc.Stop(context.Background(), s.ID, workerActor, "client cancelled")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = lc.Stop(context.Background(), s.ID, adminActor, "")
	_, isValidation := IsValidation(err)
	assert.True(t, isValidation)

	s, err = lc.Stop(context.Background(), s.ID, adminActor, "client cancelled the visit")
	require.NoError(t, err)
	assert.Equal(t, model.ShiftStopped, s.Status)
	require.Len(t, s.OverrideLog, 1)
	assert.Equal(t, "stop", s.OverrideLog[0].Action)
	assert.Len(t, pub.byType(queue.EventShiftStopped), 1)

	// Terminal: stopped shifts never move again.
	_, err = lc.Stop(context.Background(), s.ID, adminActor, "again")
	assert.ErrorIs(t, err, ErrShiftConflict)
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err = lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	assert.ErrorIs(t, err, ErrShiftConflict)
}

func TestStopFromActive(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)
	s := postAndClaim(t, lc)
	fix, _ := geo.LookupPostalCode("M5A 1A1")
	_, err := lc.CheckIn(context.Background(), s.ID, workerActor, &fix)
	require.NoError(t, err)

	s, err = lc.Stop(context.Background(), s.ID, adminActor, "safety concern reported on site")
	require.NoError(t, err)
	assert.Equal(t, model.ShiftStopped, s.Status)
}

func TestOperationsOnMissingShift(t *testing.T) {
	lc, _, _ := newTestLifecycle(t)

	_, err := lc.Claim(context.Background(), "no-such-shift", workerActor, true)
	assert.ErrorIs(t, err, ErrShiftNotFound)
	_, err = lc.CheckIn(context.Background(), "no-such-shift", workerActor, &geo.Coordinates{})
	assert.ErrorIs(t, err, ErrShiftNotFound)
	_, err = lc.Stop(context.Background(), "no-such-shift", adminActor, "reason")
	assert.ErrorIs(t, err, ErrShiftNotFound)
}
