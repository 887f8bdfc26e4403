package usecase

import (
	"context"

	"clinic-scheduling-api/internal/converter"
	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/domain/repository"
	"clinic-scheduling-api/internal/scheduling"
	"clinic-scheduling-api/internal/service"
	"clinic-scheduling-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	GetWeeklyAvailability(ctx context.Context, providerID uuid.UUID) (*dto.WeeklyAvailabilityResponse, error)
	SetDay(ctx context.Context, caller entity.Caller, providerID uuid.UUID, weekday string, req *dto.DayWindowRequest) (*dto.WeeklyAvailabilityResponse, error)
	SetWeekly(ctx context.Context, caller entity.Caller, providerID uuid.UUID, req *dto.SetWeeklyAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error)
}

type availabilityUsecase struct {
	log          *logrus.Logger
	store        *AvailabilityStore
	providers    repository.ProviderDirectory
	auditService service.AuditService
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	store *AvailabilityStore,
	providers repository.ProviderDirectory,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:          log,
		store:        store,
		providers:    providers,
		auditService: auditService,
	}
}

func (u *availabilityUsecase) GetWeeklyAvailability(ctx context.Context, providerID uuid.UUID) (*dto.WeeklyAvailabilityResponse, error) {
	if err := u.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	availability, err := u.store.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return converter.AvailabilityToResponse(availability), nil
}

func (u *availabilityUsecase) SetDay(ctx context.Context, caller entity.Caller, providerID uuid.UUID, weekday string, req *dto.DayWindowRequest) (*dto.WeeklyAvailabilityResponse, error) {
	if !scheduling.CanManageAvailability(caller, providerID) {
		return nil, ErrAvailabilityAccess
	}
	w, ok := entity.ParseWeekday(weekday)
	if !ok {
		return nil, apperror.Validation("unknown weekday %q", weekday)
	}
	if err := u.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	availability, err := u.store.SetDay(ctx, providerID, DayWindow{
		Weekday:     w,
		IsAvailable: req.IsAvailable,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		return nil, err
	}

	u.audit(ctx, caller, providerID, req)
	u.log.Infof("Availability updated: provider=%s, weekday=%s, available=%t", providerID, w, req.IsAvailable)
	return converter.AvailabilityToResponse(availability), nil
}

func (u *availabilityUsecase) SetWeekly(ctx context.Context, caller entity.Caller, providerID uuid.UUID, req *dto.SetWeeklyAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error) {
	if !scheduling.CanManageAvailability(caller, providerID) {
		return nil, ErrAvailabilityAccess
	}

	windows := make([]DayWindow, 0, len(req.Weekly))
	seen := make(map[entity.Weekday]string, len(req.Weekly))
	for name, day := range req.Weekly {
		w, ok := entity.ParseWeekday(name)
		if !ok {
			return nil, apperror.Validation("unknown weekday %q", name)
		}
		if other, dup := seen[w]; dup {
			return nil, apperror.Validation("weekday %s is given twice (%q and %q)", w, other, name)
		}
		seen[w] = name
		windows = append(windows, DayWindow{
			Weekday:     w,
			IsAvailable: day.IsAvailable,
			Start:       day.Start,
			End:         day.End,
		})
	}
	if err := u.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	availability, err := u.store.SetWeekly(ctx, providerID, req.Timezone, windows)
	if err != nil {
		return nil, err
	}

	u.audit(ctx, caller, providerID, req)
	u.log.Infof("Weekly availability replaced: provider=%s, timezone=%s", providerID, availability.Timezone)
	return converter.AvailabilityToResponse(availability), nil
}

func (u *availabilityUsecase) requireProvider(ctx context.Context, providerID uuid.UUID) error {
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

func (u *availabilityUsecase) audit(ctx context.Context, caller entity.Caller, providerID uuid.UUID, change interface{}) {
	// Non-fatal: the audit service already logged the failure.
	_ = u.auditService.LogUpdate(ctx, caller.ID, entity.AuditActionAvailabilitySet, entity.AuditEntityAvailability, providerID.String(), nil, change)
}
