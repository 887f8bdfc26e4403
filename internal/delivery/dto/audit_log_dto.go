package dto

import (
	"time"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditLogQuery carries the GET /admin/audit-logs query string.
type AuditLogQuery struct {
	Action     string `json:"action" validate:"omitempty,max=100"`
	EntityType string `json:"entityType" validate:"omitempty,oneof=appointment availability"`
	EntityID   string `json:"entityId" validate:"omitempty,max=64"`
	ActorID    string `json:"actorId" validate:"omitempty,uuid"`
	Page       int    `json:"page" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	ActorID    *uuid.UUID  `json:"actorId,omitempty"`
	Action     string      `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId"`
	Metadata   entity.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Page  int                `json:"-"`
	Limit int                `json:"-"`
	Total int64              `json:"-"`
}
