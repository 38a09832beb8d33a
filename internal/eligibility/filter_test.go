package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

type memPostingLog struct {
	byBooking map[string]time.Time
}

func newMemPostingLog() *memPostingLog {
	return &memPostingLog{byBooking: map[string]time.Time{}}
}

func (m *memPostingLog) RecordPosted(_ context.Context, bookingID string, at time.Time) error {
	m.byBooking[bookingID] = at
	return nil
}

func (m *memPostingLog) PostedAt(_ context.Context, bookingID string) (time.Time, bool, error) {
	at, ok := m.byBooking[bookingID]
	return at, ok, nil
}

func openShift(postal string) *model.Shift {
	return &model.Shift{
		ID:         "shift-1",
		BookingID:  "booking-1",
		PostalCode: postal,
		Status:     model.ShiftAvailable,
		PostedAt:   time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC),
	}
}

func worker() *model.WorkerProfile {
	return &model.WorkerProfile{
		UserID:         7,
		DisplayName:    "Amina K",
		Languages:      []string{"en"},
		HomePostalCode: "M5A",
	}
}

func TestDistanceHidesFarShifts(t *testing.T) {
	f := NewFilter(Config{RadiusKm: 75}, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	// Ottawa job, Toronto worker: well beyond 75 km.
	s := openShift("K1P 5G3")
	assert.False(t, f.Visible(context.Background(), s, worker(), now))

	// Mississauga job is inside the radius.
	s = openShift("L5B")
	assert.True(t, f.Visible(context.Background(), s, worker(), now))
}

func TestDistanceFailsOpenOnDataGaps(t *testing.T) {
	f := NewFilter(Config{}, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	// No home postal code on file: everything is visible.
	w := worker()
	w.HomePostalCode = ""
	assert.True(t, f.Visible(context.Background(), openShift("K1P"), w, now))

	// Unresolvable shift postal code: visible.
	assert.True(t, f.Visible(context.Background(), openShift("Z9Z 9Z9"), worker(), now))

	// Unresolvable home postal code: visible.
	w = worker()
	w.HomePostalCode = "bogus"
	assert.True(t, f.Visible(context.Background(), openShift("K1P"), w, now))
}

func TestGenderPreferenceIsHard(t *testing.T) {
	f := NewFilter(Config{}, nil)
	// Far beyond the reopen window so the language rule cannot mask
	// the gender decision.
	now := time.Date(2025, 1, 12, 7, 0, 0, 0, time.UTC)

	s := openShift("M5A")
	s.PreferredGender = model.GenderFemale

	for _, declared := range []string{model.GenderMale, "OTHER", "PREFER_NOT_TO_SAY", ""} {
		w := worker()
		w.Gender = declared
		assert.False(t, f.Visible(context.Background(), s, w, now), declared)
	}

	w := worker()
	w.Gender = model.GenderFemale
	assert.True(t, f.Visible(context.Background(), s, w, now))
}

func TestNoGenderPreferenceMatchesEveryone(t *testing.T) {
	f := NewFilter(Config{}, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	for _, pref := range []string{"", model.GenderNoPreference} {
		s := openShift("M5A")
		s.PreferredGender = pref
		w := worker()
		w.Gender = ""
		assert.True(t, f.Visible(context.Background(), s, w, now), pref)
	}
}

func TestLanguageReopenWindow(t *testing.T) {
	log := newMemPostingLog()
	f := NewFilter(Config{ReopenWindow: 2 * time.Hour}, log)

	posted := time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)
	s := openShift("M5A")
	s.PreferredLanguages = []string{"fr"}
	assert.NoError(t, log.RecordPosted(context.Background(), s.BookingID, posted))

	english := worker() // speaks en only

	// One hour in: hidden from non-matching workers.
	assert.False(t, f.Visible(context.Background(), s, english, posted.Add(time.Hour)))

	// Exactly at the window boundary: still hidden.
	assert.False(t, f.Visible(context.Background(), s, english, posted.Add(2*time.Hour)))

	// One minute past the window: open to everyone.
	assert.True(t, f.Visible(context.Background(), s, english, posted.Add(2*time.Hour+time.Minute)))

	// A matching speaker sees it immediately.
	french := worker()
	french.Languages = []string{"fr", "en"}
	assert.True(t, f.Visible(context.Background(), s, french, posted.Add(time.Minute)))
}

func TestLanguageFallsBackToShiftPostedAt(t *testing.T) {
	// No posting log wired: the shift's own PostedAt drives the window.
	f := NewFilter(Config{}, nil)

	s := openShift("M5A")
	s.PreferredLanguages = []string{"tl"}

	assert.False(t, f.Visible(context.Background(), s, worker(), s.PostedAt.Add(90*time.Minute)))
	assert.True(t, f.Visible(context.Background(), s, worker(), s.PostedAt.Add(3*time.Hour)))
}

type memConfigSource struct {
	cfg Config
	err error
}

func (m *memConfigSource) FilterConfig(context.Context) (Config, error) { return m.cfg, m.err }

func TestDynamicFilterPicksUpConfigEdits(t *testing.T) {
	src := &memConfigSource{cfg: Config{RadiusKm: 75}}
	f := NewDynamicFilter(src, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	// Ottawa is outside a 75 km radius from the Toronto worker.
	s := openShift("K1P 5G3")
	assert.False(t, f.Visible(context.Background(), s, worker(), now))

	// Widening the radius takes effect on the very next evaluation.
	src.cfg.RadiusKm = 500
	assert.True(t, f.Visible(context.Background(), s, worker(), now))
}

func TestDynamicFilterReopenWindowEdit(t *testing.T) {
	src := &memConfigSource{cfg: Config{ReopenWindow: 2 * time.Hour}}
	f := NewDynamicFilter(src, nil)

	s := openShift("M5A")
	s.PreferredLanguages = []string{"fr"}
	at := s.PostedAt.Add(90 * time.Minute)

	assert.False(t, f.Visible(context.Background(), s, worker(), at))

	// Shortening the window to one hour opens the same shift at the
	// same instant.
	src.cfg.ReopenWindow = time.Hour
	assert.True(t, f.Visible(context.Background(), s, worker(), at))
}

func TestDynamicFilterFallsBackOnSourceError(t *testing.T) {
	src := &memConfigSource{err: context.DeadlineExceeded}
	f := NewDynamicFilter(src, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	// Defaults apply: Mississauga inside 75 km, Ottawa outside.
	assert.True(t, f.Visible(context.Background(), openShift("L5B"), worker(), now))
	assert.False(t, f.Visible(context.Background(), openShift("K1P"), worker(), now))
}

func TestFilterShiftsPreservesOrder(t *testing.T) {
	f := NewFilter(Config{}, nil)
	now := time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC)

	near := openShift("M4B")
	far := openShift("K1P")
	near2 := openShift("M6G")

	got := f.FilterShifts(context.Background(), []*model.Shift{near, far, near2}, worker(), now)
	assert.Equal(t, []*model.Shift{near, near2}, got)
}
