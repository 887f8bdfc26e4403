package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling-api/config"
	"clinic-scheduling-api/internal/converter"
	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/domain/repository"
	"clinic-scheduling-api/internal/scheduling"
	"clinic-scheduling-api/internal/service"
	"clinic-scheduling-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("clinic-scheduling-api/usecase")

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type SchedulingUsecase interface {
	ListSlots(ctx context.Context, providerID uuid.UUID, date string) (*dto.SlotListResponse, error)
	CreateBooking(ctx context.Context, caller entity.Caller, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, caller entity.Caller, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, caller entity.Caller, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAndDelete(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.CancelAppointmentResponse, error)
	GetProviderSchedule(ctx context.Context, providerID uuid.UUID, query *dto.ScheduleQuery) (*dto.ProviderScheduleResponse, error)
}

type schedulingUsecase struct {
	log             *logrus.Logger
	cfg             config.SchedulingConfig
	appointmentRepo repository.AppointmentRepository
	providers       repository.ProviderDirectory
	availability    *AvailabilityStore
	slotLocker      service.SlotLocker
	auditService    service.AuditService
	notifier        service.Notifier
	defaultLocation *time.Location
	now             func() time.Time
}

func NewSchedulingUsecase(
	log *logrus.Logger,
	cfg config.SchedulingConfig,
	appointmentRepo repository.AppointmentRepository,
	providers repository.ProviderDirectory,
	availability *AvailabilityStore,
	slotLocker service.SlotLocker,
	auditService service.AuditService,
	notifier service.Notifier,
) SchedulingUsecase {
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Warnf("Unknown default timezone %q, using UTC: %+v", cfg.DefaultTimezone, err)
		loc = time.UTC
	}
	return &schedulingUsecase{
		log:             log,
		cfg:             cfg,
		appointmentRepo: appointmentRepo,
		providers:       providers,
		availability:    availability,
		slotLocker:      slotLocker,
		auditService:    auditService,
		notifier:        notifier,
		defaultLocation: loc,
		now:             time.Now,
	}
}

// ListSlots returns the bookable slots of a provider on a date.
//
// Flow:
// 1. Resolve the weekday window from the availability store
// 2. Split it into fixed-length slots
// 3. Mark slots that overlap a non-cancelled appointment
func (u *schedulingUsecase) ListSlots(ctx context.Context, providerID uuid.UUID, date string) (*dto.SlotListResponse, error) {
	day, err := entity.ParseDate(date)
	if err != nil {
		return nil, apperror.Validation("invalid date %q: expected YYYY-MM-DD", date)
	}
	if err := u.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	availability, err := u.availability.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	weekday := entity.WeekdayOf(day)
	resp := &dto.SlotListResponse{
		ProviderID: providerID.String(),
		Date:       entity.FormatDate(day),
		Weekday:    string(weekday),
		Timezone:   availability.Location().String(),
		Slots:      []dto.SlotResponse{},
	}

	window, ok := u.workingWindow(availability, weekday)
	if !ok {
		resp.Reason = fmt.Sprintf("provider does not work on %s", weekday)
		return resp, nil
	}

	appointments, err := u.appointmentRepo.FindActiveByProviderAndDate(ctx, providerID, day)
	if err != nil {
		u.log.Warnf("Failed to find appointments for provider %s on %s: %+v", providerID, resp.Date, err)
		return nil, apperror.Storage("failed to load appointments", err)
	}

	slots := scheduling.GenerateSlots(window, u.cfg.SlotDurationMinutes, u.bookedIntervals(appointments))

	resp.Available = true
	resp.WorkingHours = &dto.WorkingHoursResponse{Start: window.Start.String(), End: window.End.String()}
	resp.Slots = converter.SlotsToResponses(slots)
	if !hasFreeSlot(slots) {
		resp.Reason = "all slots are booked"
	}
	return resp, nil
}

// CreateBooking books a time for the calling patient.
//
// Flow:
// 1. Validate input, provider and that the time is not in the past
// 2. Check the time lies inside the provider's working hours
// 3. Take the provider-day lock (in process, then in the database)
// 4. Under the lock: conflict check, first-visit count, insert
// 5. Audit and notify (non-fatal)
func (u *schedulingUsecase) CreateBooking(ctx context.Context, caller entity.Caller, req *dto.CreateAppointmentRequest) (resp *dto.AppointmentResponse, err error) {
	ctx, span := tracer.Start(ctx, "SchedulingUsecase.CreateBooking")
	span.SetAttributes(
		attribute.String("provider.id", req.ProviderID),
		attribute.String("appointment.date", req.Date),
	)
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, apperror.KindOf(err).String())
		}
		span.End()
	}()

	if !caller.IsPatient() {
		return nil, ErrOnlyPatientsCanBook
	}

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, apperror.Validation("invalid providerId")
	}
	proposed, err := scheduling.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperror.Validation("%v", err)
	}
	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Validation("invalid date %q: expected YYYY-MM-DD", req.Date)
	}

	provider, err := u.providers.FindProvider(ctx, providerID)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", providerID, err)
		return nil, apperror.Storage("failed to look up provider", err)
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	availability, err := u.availability.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	// "Now" is read at call time in the provider's zone.
	now := u.now().In(availability.Location())
	today := entity.CivilDate(now)
	if date.Before(today) || (date.Equal(today) && proposed.Start <= scheduling.MinutesOf(now)) {
		return nil, ErrBookingInPast
	}

	window, ok := u.workingWindow(availability, entity.WeekdayOf(date))
	if !ok || !window.Contains(proposed) {
		return nil, ErrOutsideWorkingHrs
	}

	_, lockSpan := tracer.Start(ctx, "SlotLock.Wait")
	unlock := u.slotLocker.Lock(providerID, date)
	lockSpan.End()

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       caller.ID,
		ProviderID:      providerID,
		AppointmentDate: date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          entity.AppointmentStatusPending,
		Reason:          req.Reason,
		PatientNotes:    req.PatientNotes,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		ConsultationFee: provider.ConsultationFee,
	}

	err = u.appointmentRepo.WithSlotLock(ctx, providerID, date, func(repo repository.AppointmentRepository) error {
		existing, err := repo.FindActiveByProviderAndDate(ctx, providerID, date)
		if err != nil {
			return err
		}
		if scheduling.FindConflict(proposed, u.bookedIntervals(existing)) >= 0 {
			return ErrSlotUnavailable
		}

		prior, err := repo.CountActiveByPatientAndProvider(ctx, caller.ID, providerID)
		if err != nil {
			return err
		}
		appointment.IsFirstVisit = prior == 0

		return repo.Create(ctx, appointment)
	})
	// Audit and notify run after the provider-day is released.
	unlock()
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotUnavailable), errors.Is(err, repository.ErrSlotTaken):
			u.log.Debugf("Slot conflict for provider %s on %s %s-%s", providerID, req.Date, req.StartTime, req.EndTime)
			return nil, ErrSlotUnavailable
		default:
			u.log.Warnf("Failed to create appointment for provider %s: %+v", providerID, err)
			return nil, apperror.Storage("failed to create appointment", err)
		}
	}

	_ = u.auditService.LogCreate(ctx, caller.ID, entity.AuditActionAppointmentCreate, entity.AuditEntityAppointment, appointment.ID.String(), converter.AppointmentToResponse(appointment))
	u.notifier.Notify(ctx, entity.NewAppointmentEvent(entity.AppointmentEventCreated, appointment, u.now()))

	u.log.Infof("Appointment created: id=%s, provider=%s, date=%s, %s-%s, first_visit=%t",
		appointment.ID, providerID, req.Date, req.StartTime, req.EndTime, appointment.IsFirstVisit)
	return converter.AppointmentToResponse(appointment), nil
}

// ListAppointments lists the caller's appointments. Patients and providers
// see their own; admins see all, optionally narrowed to one provider.
func (u *schedulingUsecase) ListAppointments(ctx context.Context, caller entity.Caller, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	filter := entity.AppointmentFilter{}
	loc := u.defaultLocation

	switch caller.Role {
	case entity.CallerRolePatient:
		filter.PatientID = &caller.ID
	case entity.CallerRoleProvider:
		filter.ProviderID = &caller.ID
		if availability, err := u.availability.Get(ctx, caller.ID); err == nil {
			loc = availability.Location()
		}
	case entity.CallerRoleAdmin:
		if query.ProviderID != "" {
			providerID, err := uuid.Parse(query.ProviderID)
			if err != nil {
				return nil, apperror.Validation("invalid providerId")
			}
			filter.ProviderID = &providerID
		}
	default:
		return nil, ErrListNotAllowed
	}

	if query.Status != "" {
		status := entity.AppointmentStatus(query.Status)
		if !status.IsValid() {
			return nil, apperror.Validation("unknown status %q", query.Status)
		}
		filter.Status = &status
	}

	switch entity.AppointmentScope(query.Scope) {
	case entity.AppointmentScopeAll, entity.AppointmentScopeUpcoming, entity.AppointmentScopePast:
		filter.Scope = entity.AppointmentScope(query.Scope)
	default:
		return nil, apperror.Validation("scope must be upcoming or past")
	}
	filter.Today = entity.CivilDate(u.now().In(loc))

	page, limit := normalizePage(query.Page, query.Limit)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	appointments, total, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s %s: %+v", caller.Role, caller.ID, err)
		return nil, apperror.Storage("failed to list appointments", err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Page:         page,
		Limit:        limit,
		Total:        total,
	}, nil
}

func (u *schedulingUsecase) GetAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus moves an appointment through its lifecycle. Role and
// ownership are checked before the transition itself.
func (u *schedulingUsecase) UpdateStatus(ctx context.Context, caller entity.Caller, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	target := entity.AppointmentStatus(req.Status)
	if !target.IsValid() {
		return nil, apperror.Validation("unknown status %q", req.Status)
	}

	appointment, err := u.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scheduling.CanSetStatus(caller, appointment, target) {
		return nil, ErrStatusNotAllowed
	}
	if req.ProviderNotes != nil && !scheduling.CanWriteProviderNotes(caller, appointment) {
		return nil, ErrProviderNotesForbidden
	}
	if !scheduling.CanTransition(appointment.Status, target) {
		return nil, ErrInvalidTransition
	}

	previous := appointment.Status
	updated := *appointment
	updated.Status = target
	updated.UpdatedAt = u.now()
	if req.ProviderNotes != nil {
		updated.ProviderNotes = *req.ProviderNotes
	}
	if target == entity.AppointmentStatusCancelled {
		cancelledAt := updated.UpdatedAt
		updated.CancelledAt = &cancelledAt
	}

	affected, err := u.appointmentRepo.TransitionStatus(ctx, &updated, previous)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s to %s: %+v", id, target, err)
		return nil, apperror.Storage("failed to update appointment", err)
	}
	if affected == 0 {
		return nil, ErrAppointmentChanged
	}

	_ = u.auditService.LogUpdate(ctx, caller.ID, entity.AuditActionAppointmentStatus, entity.AuditEntityAppointment, id.String(),
		map[string]interface{}{"status": previous},
		map[string]interface{}{"status": target, "provider_notes_changed": req.ProviderNotes != nil},
	)
	eventType := entity.AppointmentEventStatusChanged
	if target == entity.AppointmentStatusCancelled {
		eventType = entity.AppointmentEventCancelled
	}
	u.notifier.Notify(ctx, entity.NewAppointmentEvent(eventType, &updated, u.now()))

	u.log.Infof("Appointment status changed: id=%s, %s -> %s, by=%s %s", id, previous, target, caller.Role, caller.ID)
	return converter.AppointmentToResponse(&updated), nil
}

// CancelAndDelete cancels an appointment so it no longer holds its slot.
// The record is kept with status cancelled, or removed when hard delete
// is configured. Completed appointments cannot be cancelled.
func (u *schedulingUsecase) CancelAndDelete(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.CancelAppointmentResponse, error) {
	appointment, err := u.findVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if appointment.IsCompleted() {
		return nil, ErrAppointmentCompleted
	}
	if appointment.IsCancelled() && !u.cfg.HardDeleteOnCancel {
		return nil, ErrAppointmentCancelled
	}

	previous := appointment.Status
	resp := &dto.CancelAppointmentResponse{ID: id}

	var affected int64
	if u.cfg.HardDeleteOnCancel {
		affected, err = u.appointmentRepo.DeleteIfStatus(ctx, id, previous)
		resp.Deleted = true
	} else {
		cancelledAt := u.now()
		appointment.Status = entity.AppointmentStatusCancelled
		appointment.CancelledAt = &cancelledAt
		appointment.UpdatedAt = cancelledAt
		affected, err = u.appointmentRepo.TransitionStatus(ctx, appointment, previous)
		resp.Status = string(entity.AppointmentStatusCancelled)
	}
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return nil, apperror.Storage("failed to cancel appointment", err)
	}
	if affected == 0 {
		return nil, ErrAppointmentChanged
	}

	_ = u.auditService.LogDelete(ctx, caller.ID, entity.AuditActionAppointmentCancel, entity.AuditEntityAppointment, id.String(),
		map[string]interface{}{"status": previous, "deleted": resp.Deleted},
	)
	appointment.Status = entity.AppointmentStatusCancelled
	u.notifier.Notify(ctx, entity.NewAppointmentEvent(entity.AppointmentEventCancelled, appointment, u.now()))

	u.log.Infof("Appointment cancelled: id=%s, from=%s, deleted=%t, by=%s %s", id, previous, resp.Deleted, caller.Role, caller.ID)
	return resp, nil
}

// GetProviderSchedule returns a provider's booked times in a date range,
// without patient details, alongside the weekly availability.
//
// Range defaults:
// - neither bound: [today, today+window]
// - start only:    [start, start+window]
// - end only:      [today, end]
func (u *schedulingUsecase) GetProviderSchedule(ctx context.Context, providerID uuid.UUID, query *dto.ScheduleQuery) (*dto.ProviderScheduleResponse, error) {
	if err := u.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	availability, err := u.availability.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	from, to, err := u.scheduleRange(query, entity.CivilDate(u.now().In(availability.Location())))
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindActiveByProviderInRange(ctx, providerID, from, to)
	if err != nil {
		u.log.Warnf("Failed to load schedule for provider %s: %+v", providerID, err)
		return nil, apperror.Storage("failed to load schedule", err)
	}

	name, err := u.providers.DisplayName(ctx, providerID)
	if err != nil {
		u.log.Warnf("Failed to resolve display name for provider %s: %+v", providerID, err)
	}

	return &dto.ProviderScheduleResponse{
		ProviderID:   providerID,
		ProviderName: name,
		StartDate:    entity.FormatDate(from),
		EndDate:      entity.FormatDate(to),
		Availability: converter.AvailabilityToResponse(availability),
		Appointments: converter.AppointmentsToScheduleEntries(appointments),
	}, nil
}

func (u *schedulingUsecase) scheduleRange(query *dto.ScheduleQuery, today time.Time) (time.Time, time.Time, error) {
	window := u.cfg.ScheduleWindowDays
	from, to := today, today.AddDate(0, 0, window)

	if query.StartDate != "" {
		start, err := entity.ParseDate(query.StartDate)
		if err != nil {
			return from, to, apperror.Validation("invalid startDate %q: expected YYYY-MM-DD", query.StartDate)
		}
		from, to = start, start.AddDate(0, 0, window)
	}
	if query.EndDate != "" {
		end, err := entity.ParseDate(query.EndDate)
		if err != nil {
			return from, to, apperror.Validation("invalid endDate %q: expected YYYY-MM-DD", query.EndDate)
		}
		to = end
	}

	if to.Before(from) {
		return from, to, ErrInvalidScheduleRange
	}
	if u.cfg.MaxScheduleDays > 0 && to.Sub(from) > time.Duration(u.cfg.MaxScheduleDays)*24*time.Hour {
		return from, to, ErrScheduleRangeTooLong
	}
	return from, to, nil
}

func (u *schedulingUsecase) requireProvider(ctx context.Context, providerID uuid.UUID) error {
	exists, err := u.providers.Exists(ctx, providerID)
	if err != nil {
		u.log.Warnf("Failed to look up provider %s: %+v", providerID, err)
		return apperror.Storage("failed to look up provider", err)
	}
	if !exists {
		return ErrProviderNotFound
	}
	return nil
}

func (u *schedulingUsecase) findAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Storage("failed to load appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

func (u *schedulingUsecase) findVisible(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scheduling.CanView(caller, appointment) {
		return nil, ErrAppointmentAccess
	}
	return appointment, nil
}

// workingWindow returns the open interval of a weekday, if any.
func (u *schedulingUsecase) workingWindow(availability *entity.ProviderAvailability, weekday entity.Weekday) (scheduling.Interval, bool) {
	day := availability.Day(weekday)
	if !day.IsOpen() {
		return scheduling.Interval{}, false
	}
	window, err := scheduling.ParseInterval(*day.StartTime, *day.EndTime)
	if err != nil {
		u.log.Warnf("Ignoring malformed %s window for provider %s: %+v", weekday, availability.ProviderID, err)
		return scheduling.Interval{}, false
	}
	return window, true
}

// bookedIntervals converts stored appointments to minute intervals.
func (u *schedulingUsecase) bookedIntervals(appointments []entity.Appointment) []scheduling.Interval {
	intervals := make([]scheduling.Interval, 0, len(appointments))
	for _, a := range appointments {
		if !a.OccupiesSlot() {
			continue
		}
		iv, err := scheduling.ParseInterval(a.StartTime, a.EndTime)
		if err != nil {
			u.log.Warnf("Ignoring appointment %s with malformed times %s-%s", a.ID, a.StartTime, a.EndTime)
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals
}

func hasFreeSlot(slots []scheduling.Slot) bool {
	for _, s := range slots {
		if s.Available {
			return true
		}
	}
	return false
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
