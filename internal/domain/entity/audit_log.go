package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one write to an appointment or a provider schedule.
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	Action     string     `gorm:"type:varchar(100);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null"`
	EntityID   string     `gorm:"type:varchar(64);not null"`
	Metadata   JSON       `gorm:"type:jsonb"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows an audit trail listing. Zero fields match everything.
type AuditLogFilter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    *uuid.UUID
	Limit      int
	Offset     int
}

// JSON stores a free-form object in a jsonb column.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb value of type %T", value)
	}

	result := map[string]interface{}{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Audit actions
const (
	AuditActionAppointmentCreate = "appointment.create"
	AuditActionAppointmentStatus = "appointment.status"
	AuditActionAppointmentCancel = "appointment.cancel"
	AuditActionAvailabilitySet   = "availability.update"
)

// Audited entity types
const (
	AuditEntityAppointment  = "appointment"
	AuditEntityAvailability = "availability"
)
