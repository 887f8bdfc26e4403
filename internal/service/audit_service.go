package service

import (
	"context"

	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// AuditService records who changed which appointment or schedule.
// Failures are logged and returned; callers treat them as non-fatal.
type AuditService interface {
	LogCreate(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, actorID, action, entityName, entityID, nil, newValue)
}

func (s *auditService) LogUpdate(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, actorID, action, entityName, entityID, oldValue, newValue)
}

func (s *auditService) LogDelete(ctx context.Context, actorID uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.write(ctx, actorID, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, actorID uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	metadata := entity.JSON{}
	if oldValue != nil {
		metadata["old"] = oldValue
	}
	if newValue != nil {
		metadata["new"] = newValue
	}
	// Ties the entry to the request's trace when one is recording.
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["traceId"] = sc.TraceID().String()
	}

	auditLog := &entity.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		EntityType: entityName,
		EntityID:   entityID,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s for %s %s: %+v", action, entityName, entityID, err)
		return err
	}

	return nil
}
