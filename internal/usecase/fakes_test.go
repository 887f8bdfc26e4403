package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"
	_ "time/tzdata"

	"clinic-scheduling-api/config"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/domain/repository"
	"clinic-scheduling-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var errStorageDown = errors.New("connection refused")

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeAppointmentRepo is an in-memory ledger. WithSlotLock does not lock,
// so tests see only the serialization the usecase provides itself.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment
	failWith     error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[uuid.UUID]entity.Appointment{}}
}

func (r *fakeAppointmentRepo) put(a entity.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
}

func (r *fakeAppointmentRepo) get(id uuid.UUID) (entity.Appointment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	return a, ok
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, e := range r.appointments {
		if e.OccupiesSlot() && e.ProviderID == a.ProviderID && e.AppointmentDate.Equal(a.AppointmentDate) && e.StartTime == a.StartTime {
			return repository.ErrSlotTaken
		}
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.appointments[a.ID] = *a
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAppointmentRepo) FindAll(ctx context.Context, f entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, 0, r.failWith
	}

	var out []entity.Appointment
	for _, a := range r.appointments {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.ProviderID != nil && a.ProviderID != *f.ProviderID {
			continue
		}
		if f.Status != nil {
			if a.Status != *f.Status {
				continue
			}
		} else if !f.IncludeCancelled && a.IsCancelled() {
			continue
		}
		if f.Scope == entity.AppointmentScopeUpcoming && a.AppointmentDate.Before(f.Today) {
			continue
		}
		if f.Scope == entity.AppointmentScopePast && !a.AppointmentDate.Before(f.Today) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		less := out[i].AppointmentDate.Before(out[j].AppointmentDate) ||
			(out[i].AppointmentDate.Equal(out[j].AppointmentDate) && out[i].StartTime < out[j].StartTime)
		if f.SortDescending() {
			return !less
		}
		return less
	})

	total := int64(len(out))
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []entity.Appointment{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, total, nil
}

func (r *fakeAppointmentRepo) FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	return r.FindActiveByProviderInRange(ctx, providerID, date, date)
}

func (r *fakeAppointmentRepo) FindActiveByProviderInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.ProviderID != providerID || !a.OccupiesSlot() {
			continue
		}
		if a.AppointmentDate.Before(from) || a.AppointmentDate.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *fakeAppointmentRepo) CountActiveByPatientAndProvider(ctx context.Context, patientID, providerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if a.PatientID == patientID && a.ProviderID == providerID && a.OccupiesSlot() {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) TransitionStatus(ctx context.Context, a *entity.Appointment, from entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	stored, ok := r.appointments[a.ID]
	if !ok || stored.Status != from {
		return 0, nil
	}
	stored.Status = a.Status
	stored.ProviderNotes = a.ProviderNotes
	stored.CancelledAt = a.CancelledAt
	stored.UpdatedAt = time.Now()
	r.appointments[a.ID] = stored
	return 1, nil
}

func (r *fakeAppointmentRepo) DeleteIfStatus(ctx context.Context, id uuid.UUID, from entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appointments[id]
	if !ok || stored.Status != from {
		return 0, nil
	}
	delete(r.appointments, id)
	return 1, nil
}

func (r *fakeAppointmentRepo) WithSlotLock(ctx context.Context, providerID uuid.UUID, date time.Time, fn func(repo repository.AppointmentRepository) error) error {
	return fn(r)
}

type fakeAvailabilityRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]entity.ProviderAvailability
	loads int
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{rows: map[uuid.UUID]entity.ProviderAvailability{}}
}

func (r *fakeAvailabilityRepo) FindByProviderID(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	a, ok := r.rows[providerID]
	if !ok {
		return nil, nil
	}
	a.Days = append([]entity.AvailabilityDay(nil), a.Days...)
	return &a, nil
}

func (r *fakeAvailabilityRepo) CreateIfAbsent(ctx context.Context, a *entity.ProviderAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ProviderID]; !ok {
		c := *a
		c.Days = append([]entity.AvailabilityDay(nil), a.Days...)
		r.rows[a.ProviderID] = c
	}
	return nil
}

func (r *fakeAvailabilityRepo) Save(ctx context.Context, a *entity.ProviderAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rows[a.ProviderID]
	if !ok {
		current = entity.ProviderAvailability{ProviderID: a.ProviderID}
	}
	current.Timezone = a.Timezone
	current.Days = append([]entity.AvailabilityDay(nil), current.Days...)
	for _, d := range a.Days {
		current.SetDay(d)
	}
	r.rows[a.ProviderID] = current
	return nil
}

type fakeProviderDirectory struct {
	providers map[uuid.UUID]entity.Provider
}

func (d *fakeProviderDirectory) FindProvider(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	p, ok := d.providers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (d *fakeProviderDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := d.providers[id]
	return ok, nil
}

func (d *fakeProviderDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	return d.providers[id].DisplayName, nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) record(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogCreate(ctx context.Context, actorID uuid.UUID, action, entityName, entityID string, newValue interface{}) error {
	return s.record(action)
}

func (s *fakeAuditService) LogUpdate(ctx context.Context, actorID uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	return s.record(action)
}

func (s *fakeAuditService) LogDelete(ctx context.Context, actorID uuid.UUID, action, entityName, entityID string, oldValue interface{}) error {
	return s.record(action)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []entity.AppointmentEvent

	// onNotify runs outside the mutex, before the event is recorded.
	onNotify func(entity.AppointmentEvent)
}

func (n *fakeNotifier) Notify(ctx context.Context, e entity.AppointmentEvent) {
	if n.onNotify != nil {
		n.onNotify(e)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) Close() error { return nil }

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

// testEnv wires the usecases over fakes with a fixed clock:
// Sunday 2026-10-18 12:00 UTC. The provider works Mondays 09:00-17:00.
type testEnv struct {
	appointments *fakeAppointmentRepo
	availability *fakeAvailabilityRepo
	audit        *fakeAuditService
	notifier     *fakeNotifier
	locks        *service.SlotLockService
	store        *AvailabilityStore
	scheduling   *schedulingUsecase
	avail        AvailabilityUsecase

	providerID uuid.UUID
	patientID  uuid.UUID
	now        time.Time
}

const monday = "2026-10-19"

func newTestEnv(cfgs ...config.SchedulingConfig) *testEnv {
	cfg := config.DefaultSchedulingConfig()
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	log := newTestLogger()
	env := &testEnv{
		appointments: newFakeAppointmentRepo(),
		availability: newFakeAvailabilityRepo(),
		audit:        &fakeAuditService{},
		notifier:     &fakeNotifier{},
		locks:        service.NewSlotLockService(log, time.Minute),
		providerID:   uuid.New(),
		patientID:    uuid.New(),
		now:          time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	directory := &fakeProviderDirectory{providers: map[uuid.UUID]entity.Provider{
		env.providerID: {ID: env.providerID, DisplayName: "Dr. Rivera", ConsultationFee: decimal.NewFromInt(150)},
	}}

	env.store = NewAvailabilityStore(log, env.availability, service.NewNoopAvailabilityCache(), cfg.DefaultTimezone)
	env.scheduling = NewSchedulingUsecase(log, cfg, env.appointments, directory, env.store, env.locks, env.audit, env.notifier).(*schedulingUsecase)
	env.scheduling.now = func() time.Time { return env.now }
	env.avail = NewAvailabilityUsecase(log, env.store, directory, env.audit)

	start, end := "09:00", "17:00"
	a := entity.NewDefaultAvailability(env.providerID, "UTC")
	a.SetDay(entity.AvailabilityDay{Weekday: entity.Monday, IsAvailable: true, StartTime: &start, EndTime: &end})
	_ = env.availability.Save(context.Background(), a)

	return env
}

func (e *testEnv) close() {
	e.locks.Stop()
}

func (e *testEnv) patient() entity.Caller {
	return entity.Caller{ID: e.patientID, Role: entity.CallerRolePatient}
}

func (e *testEnv) provider() entity.Caller {
	return entity.Caller{ID: e.providerID, Role: entity.CallerRoleProvider}
}

func (e *testEnv) admin() entity.Caller {
	return entity.Caller{ID: uuid.New(), Role: entity.CallerRoleAdmin}
}

// seed stores an appointment directly in the ledger.
func (e *testEnv) seed(date, start, end string, status entity.AppointmentStatus) entity.Appointment {
	d, _ := entity.ParseDate(date)
	a := entity.Appointment{
		ID:              uuid.New(),
		PatientID:       e.patientID,
		ProviderID:      e.providerID,
		AppointmentDate: d,
		StartTime:       start,
		EndTime:         end,
		Status:          status,
	}
	e.appointments.put(a)
	return a
}
