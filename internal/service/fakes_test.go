package service

import (
	"context"
	"sync"
	"time"

	"github.com/tiffarshi-web/pswdirect/internal/model"
	"github.com/tiffarshi-web/pswdirect/internal/queue"
	"github.com/tiffarshi-web/pswdirect/internal/repository"
)

// memShiftStore is an in-memory ShiftStore with the same conditional
// update semantics as the MySQL repository: UpdateIfStatus applies the
// patch only when the stored status still matches, under a lock, so
// concurrent claims race exactly as they would against the database.
type memShiftStore struct {
	mu     sync.Mutex
	shifts map[string]*model.Shift
}

func newMemShiftStore() *memShiftStore {
	return &memShiftStore{shifts: make(map[string]*model.Shift)}
}

func (m *memShiftStore) Insert(_ context.Context, s *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.shifts[s.ID] = &cp
	return nil
}

func (m *memShiftStore) GetByID(_ context.Context, id string) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShiftStore) ListByStatus(_ context.Context, status string) ([]*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Shift
	for _, s := range m.shifts {
		if s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memShiftStore) ListByPSW(_ context.Context, pswID uint64) ([]*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Shift
	for _, s := range m.shifts {
		if s.PSWID == pswID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memShiftStore) ListAll(_ context.Context) ([]*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Shift
	for _, s := range m.shifts {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memShiftStore) UpdateIfStatus(_ context.Context, id, expectedStatus string, patch repository.ShiftPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.Status != expectedStatus {
		return repository.ErrConflict
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.PSWID != nil {
		s.PSWID = *patch.PSWID
	}
	if patch.PSWName != nil {
		s.PSWName = *patch.PSWName
	}
	if patch.PSWPhotoURL != nil {
		s.PSWPhotoURL = *patch.PSWPhotoURL
	}
	if patch.AgreementAccepted != nil {
		s.AgreementAccepted = *patch.AgreementAccepted
	}
	if patch.CheckedInAt != nil {
		t := *patch.CheckedInAt
		s.CheckedInAt = &t
	}
	if patch.CheckInLat != nil {
		v := *patch.CheckInLat
		s.CheckInLat = &v
	}
	if patch.CheckInLng != nil {
		v := *patch.CheckInLng
		s.CheckInLng = &v
	}
	if patch.SignedOutAt != nil {
		t := *patch.SignedOutAt
		s.SignedOutAt = &t
	}
	if patch.OvertimeMinutes != nil {
		s.OvertimeMinutes = *patch.OvertimeMinutes
	}
	if patch.FlaggedOvertime != nil {
		s.FlaggedForOvertime = *patch.FlaggedOvertime
	}
	if patch.CareSheet != nil {
		cs := *patch.CareSheet
		s.CareSheet = &cs
	}
	if patch.AppendOverride != nil {
		s.OverrideLog = append(s.OverrideLog, *patch.AppendOverride)
	}
	return nil
}

type memWorkerDir struct {
	mu       sync.Mutex
	profiles map[uint64]*model.WorkerProfile
	listErr  error
}

func newMemWorkerDir(profiles ...*model.WorkerProfile) *memWorkerDir {
	d := &memWorkerDir{profiles: make(map[uint64]*model.WorkerProfile)}
	for _, p := range profiles {
		d.profiles[p.UserID] = p
	}
	return d
}

func (d *memWorkerDir) GetByUserID(_ context.Context, userID uint64) (*model.WorkerProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (d *memWorkerDir) ListAll(_ context.Context) ([]*model.WorkerProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	var out []*model.WorkerProfile
	for _, p := range d.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// staticSettings serves a fixed settings snapshot.
type staticSettings struct {
	cfg model.OperationalSettings
}

func (s staticSettings) Get(context.Context) (model.OperationalSettings, error) {
	return s.cfg, nil
}

func testSettings() staticSettings {
	return staticSettings{cfg: model.OperationalSettings{
		Rates: model.RateTable{
			StandardHomeCareCents:      2500,
			HospitalOrDoctorVisitCents: 3000,
		},
		ServiceRadiusKm:    75,
		ReopenWindowHours:  2,
		CheckInToleranceKm: 1,
	}}
}

// capturePublisher records every published event.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.ShiftEvent
}

func (c *capturePublisher) Publish(_ context.Context, ev queue.ShiftEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) byType(t string) []queue.ShiftEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []queue.ShiftEvent
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// memPayrollStore enforces the one-entry-per-shift rule the MySQL
// unique key provides.
type memPayrollStore struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]*model.PayrollEntry
	byShift map[string]uint64
}

func newMemPayrollStore() *memPayrollStore {
	return &memPayrollStore{
		entries: make(map[uint64]*model.PayrollEntry),
		byShift: make(map[string]uint64),
	}
}

func (m *memPayrollStore) Insert(_ context.Context, e *model.PayrollEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byShift[e.ShiftID]; dup {
		return repository.ErrConflict
	}
	m.nextID++
	e.ID = m.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	m.entries[e.ID] = &cp
	m.byShift[e.ShiftID] = e.ID
	return nil
}

func (m *memPayrollStore) GetByShiftID(_ context.Context, shiftID string) (*model.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byShift[shiftID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m.entries[id]
	return &cp, nil
}

func (m *memPayrollStore) ListByPSW(_ context.Context, pswID uint64) ([]*model.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PayrollEntry
	for _, e := range m.entries {
		if e.PSWID == pswID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPayrollStore) ListAll(_ context.Context) ([]*model.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PayrollEntry
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPayrollStore) ListPending(_ context.Context) ([]*model.PayrollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PayrollEntry
	for _, e := range m.entries {
		if e.Status == model.PayrollPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPayrollStore) Clear(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Status != model.PayrollPending {
		return repository.ErrConflict
	}
	e.Status = model.PayrollCleared
	t := at
	e.ClearedAt = &t
	return nil
}

// memAlertStore keeps alerts in insertion order.
type memAlertStore struct {
	mu     sync.Mutex
	alerts []*model.RiskAlert
}

func (m *memAlertStore) Insert(_ context.Context, a *model.RiskAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.alerts = append(m.alerts, &cp)
	return nil
}

func (m *memAlertStore) ListAll(_ context.Context) ([]*model.RiskAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.RiskAlert, 0, len(m.alerts))
	for _, a := range m.alerts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAlertStore) Resolve(_ context.Context, id, resolvedBy string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			if a.Resolved {
				return repository.ErrConflict
			}
			a.Resolved = true
			t := at
			a.ResolvedAt = &t
			a.ResolvedBy = resolvedBy
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAlertStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.alerts {
		if a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAlertStore) DeleteUnresolved(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.alerts[:0]
	var removed int64
	for _, a := range m.alerts {
		if a.Resolved {
			kept = append(kept, a)
		} else {
			removed++
		}
	}
	m.alerts = kept
	return removed, nil
}
