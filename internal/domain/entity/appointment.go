package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is recorded on the appointment; collection happens elsewhere.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Appointment is a booking of a provider's time by a patient.
// AppointmentDate is a calendar date stored as midnight UTC; StartTime and
// EndTime are HH:MM in the provider's timezone.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	ProviderID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_provider_date" json:"provider_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index:idx_appointments_provider_date" json:"appointment_date"`
	StartTime       string            `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string            `gorm:"type:varchar(5);not null" json:"end_time"`
	Status          AppointmentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Reason          string            `gorm:"type:text" json:"reason,omitempty"`
	PatientNotes    string            `gorm:"type:text" json:"patient_notes,omitempty"`
	ProviderNotes   string            `gorm:"type:text" json:"provider_notes,omitempty"`
	IsFirstVisit    bool              `gorm:"not null;default:false" json:"is_first_visit"`
	PaymentStatus   PaymentStatus     `gorm:"type:varchar(16);not null;default:'unpaid'" json:"payment_status"`
	ConsultationFee decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"consultation_fee"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is awaiting the provider
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsConfirmed checks if appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// OccupiesSlot reports whether the appointment still holds its time slot.
func (a *Appointment) OccupiesSlot() bool {
	return a.Status != AppointmentStatusCancelled
}

func (a *Appointment) BelongsToPatient(id uuid.UUID) bool {
	return a.PatientID == id
}

func (a *Appointment) BelongsToProvider(id uuid.UUID) bool {
	return a.ProviderID == id
}
