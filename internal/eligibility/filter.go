// Package eligibility decides which open shifts a worker may currently
// see. Three rules run in order: a distance cutoff, a hard gender
// preference, and a language preference that relaxes a fixed window
// after posting so uncommon-language jobs do not go unfilled.
package eligibility

import (
	"context"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/geo"
	"github.com/tiffarshi-web/pswdirect/internal/logging"
	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// PostingLog records when a booking's shift entered the available
// pool. The language reopen rule keys off it by booking id. The redis
// implementation lives in internal/repository; tests use an in-memory
// one.
type PostingLog interface {
	RecordPosted(ctx context.Context, bookingID string, at time.Time) error
	PostedAt(ctx context.Context, bookingID string) (time.Time, bool, error)
}

// Config carries the tunable matching parameters.
type Config struct {
	RadiusKm     float64       // distance cutoff, default 75
	ReopenWindow time.Duration // language reopen window, default 2h
}

func (c Config) withDefaults() Config {
	if c.RadiusKm <= 0 {
		c.RadiusKm = 75
	}
	if c.ReopenWindow <= 0 {
		c.ReopenWindow = 2 * time.Hour
	}
	return c
}

// ConfigSource yields the current matching parameters. Admin edits to
// the radius or reopen window apply on the next evaluation, without a
// restart.
type ConfigSource interface {
	FilterConfig(ctx context.Context) (Config, error)
}

type staticSource struct{ cfg Config }

func (s staticSource) FilterConfig(context.Context) (Config, error) { return s.cfg, nil }

// Filter evaluates shift visibility for workers. It is stateless apart
// from reading the posting log and the config source.
type Filter struct {
	src ConfigSource
	log PostingLog
}

// NewFilter builds a Filter over fixed parameters. A nil posting log is
// allowed; the reopen rule then falls back to each shift's own
// PostedAt.
func NewFilter(cfg Config, log PostingLog) *Filter {
	return NewDynamicFilter(staticSource{cfg.withDefaults()}, log)
}

// NewDynamicFilter builds a Filter that re-reads its parameters from
// src on every evaluation.
func NewDynamicFilter(src ConfigSource, log PostingLog) *Filter {
	return &Filter{src: src, log: log}
}

// config resolves the current parameters. A source failure falls back
// to the defaults: a worker browsing jobs should see the pool under
// stock rules rather than an error.
func (f *Filter) config(ctx context.Context) Config {
	cfg, err := f.src.FilterConfig(ctx)
	if err != nil {
		logging.Log.WithError(err).Warn("eligibility: config source unavailable, using defaults")
		return Config{}.withDefaults()
	}
	return cfg.withDefaults()
}

// Visible reports whether the shift should appear in the worker's
// available-jobs list at the given instant.
//
// Distance: hidden when both postal codes resolve and the gap exceeds
// the radius. A worker with no home postal code, or either code
// failing to resolve, passes: data gaps must not starve workers of
// work.
//
// Gender: a stated MALE/FEMALE preference is a hard filter. Only an
// exactly matching declared gender passes; undeclared and OTHER never
// match, and the reopen window below does not apply.
//
// Language: with no preferred languages the shift is open to everyone
// who passed the filters above. With preferences, it opens immediately
// to workers sharing a language and to everyone else once the reopen
// window has elapsed since posting.
func (f *Filter) Visible(ctx context.Context, shift *model.Shift, worker *model.WorkerProfile, now time.Time) bool {
	return f.visible(ctx, f.config(ctx), shift, worker, now)
}

// FilterShifts returns the subset of shifts visible to the worker,
// preserving order. The parameters are resolved once for the whole
// pass.
func (f *Filter) FilterShifts(ctx context.Context, shifts []*model.Shift, worker *model.WorkerProfile, now time.Time) []*model.Shift {
	cfg := f.config(ctx)
	out := make([]*model.Shift, 0, len(shifts))
	for _, s := range shifts {
		if f.visible(ctx, cfg, s, worker, now) {
			out = append(out, s)
		}
	}
	return out
}

func (f *Filter) visible(ctx context.Context, cfg Config, shift *model.Shift, worker *model.WorkerProfile, now time.Time) bool {
	if !withinRadius(cfg, shift, worker) {
		return false
	}
	if !genderMatches(shift.PreferredGender, worker.Gender) {
		return false
	}
	return f.languageOpen(ctx, cfg, shift, worker, now)
}

func withinRadius(cfg Config, shift *model.Shift, worker *model.WorkerProfile) bool {
	if worker.HomePostalCode == "" {
		return true
	}
	home, ok := geo.LookupPostalCode(worker.HomePostalCode)
	if !ok {
		return true
	}
	site, ok := geo.LookupPostalCode(shift.PostalCode)
	if !ok {
		return true
	}
	return geo.DistanceKm(home, site) <= cfg.RadiusKm
}

func genderMatches(preferred, declared string) bool {
	if preferred == "" || preferred == model.GenderNoPreference {
		return true
	}
	// Only an exact declared match satisfies a stated preference.
	return declared == preferred
}

func (f *Filter) languageOpen(ctx context.Context, cfg Config, shift *model.Shift, worker *model.WorkerProfile, now time.Time) bool {
	if len(shift.PreferredLanguages) == 0 {
		return true
	}
	if worker.SpeaksAny(shift.PreferredLanguages) {
		return true
	}
	postedAt := shift.PostedAt
	if f.log != nil {
		if at, ok, err := f.log.PostedAt(ctx, shift.BookingID); err == nil && ok {
			postedAt = at
		}
	}
	return now.Sub(postedAt) > cfg.ReopenWindow
}
