package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	ProviderID   string `json:"providerId" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,date"`
	StartTime    string `json:"startTime" validate:"required,hhmm"`
	EndTime      string `json:"endTime" validate:"required,hhmm"`
	Reason       string `json:"reason" validate:"max=500"`
	PatientNotes string `json:"patientNotes" validate:"max=2000"`
}

type UpdateAppointmentStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	ProviderNotes *string `json:"providerNotes" validate:"omitempty,max=2000"`
}

// AppointmentListQuery carries the GET /bookings query string.
type AppointmentListQuery struct {
	Status     string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Scope      string `json:"scope" validate:"omitempty,oneof=upcoming past"`
	ProviderID string `json:"providerId" validate:"omitempty,uuid"`
	Page       int    `json:"page" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       uuid.UUID       `json:"patientId"`
	ProviderID      uuid.UUID       `json:"providerId"`
	Date            string          `json:"date"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Status          string          `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	PatientNotes    string          `json:"patientNotes,omitempty"`
	ProviderNotes   string          `json:"providerNotes,omitempty"`
	IsFirstVisit    bool            `json:"isFirstVisit"`
	PaymentStatus   string          `json:"paymentStatus"`
	ConsultationFee decimal.Decimal `json:"consultationFee"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Page         int                   `json:"-"`
	Limit        int                   `json:"-"`
	Total        int64                 `json:"-"`
}

// CancelAppointmentResponse reports what cancellation did to the record.
type CancelAppointmentResponse struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
	Status  string    `json:"status,omitempty"`
}
