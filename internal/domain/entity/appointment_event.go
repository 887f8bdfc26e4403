package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment event types published to the notification channel
const (
	AppointmentEventCreated       = "appointment.created"
	AppointmentEventStatusChanged = "appointment.status_changed"
	AppointmentEventCancelled     = "appointment.cancelled"
)

// AppointmentEvent describes a change to an appointment.
type AppointmentEvent struct {
	ID            uuid.UUID         `json:"id"`
	Type          string            `json:"type"`
	AppointmentID uuid.UUID         `json:"appointment_id"`
	PatientID     uuid.UUID         `json:"patient_id"`
	ProviderID    uuid.UUID         `json:"provider_id"`
	Status        AppointmentStatus `json:"status"`
	Date          string            `json:"date"`
	StartTime     string            `json:"start_time"`
	EndTime       string            `json:"end_time"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// NewAppointmentEvent snapshots an appointment into an event.
func NewAppointmentEvent(eventType string, a *Appointment, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		ID:            uuid.New(),
		Type:          eventType,
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		ProviderID:    a.ProviderID,
		Status:        a.Status,
		Date:          FormatDate(a.AppointmentDate),
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		OccurredAt:    at,
	}
}
