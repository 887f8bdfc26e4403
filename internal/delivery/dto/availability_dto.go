package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type DayWindowRequest struct {
	IsAvailable bool   `json:"isAvailable"`
	Start       string `json:"start" validate:"omitempty,hhmm"`
	End         string `json:"end" validate:"omitempty,hhmm"`
}

type SetWeeklyAvailabilityRequest struct {
	Timezone string                      `json:"timezone" validate:"omitempty,timezone"`
	Weekly   map[string]DayWindowRequest `json:"weekly" validate:"required,min=1,dive,keys,weekday,endkeys"`
}

// Response DTOs

type DayWindowResponse struct {
	Weekday     string  `json:"weekday"`
	IsAvailable bool    `json:"isAvailable"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
}

type WeeklyAvailabilityResponse struct {
	ProviderID uuid.UUID           `json:"providerId"`
	Timezone   string              `json:"timezone"`
	Weekly     []DayWindowResponse `json:"weekly"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type ScheduleQuery struct {
	StartDate string `json:"startDate" validate:"omitempty,date"`
	EndDate   string `json:"endDate" validate:"omitempty,date"`
}

// ScheduleAppointmentResponse is an appointment without patient-identifying fields.
type ScheduleAppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Status    string    `json:"status"`
}

type ProviderScheduleResponse struct {
	ProviderID   uuid.UUID                     `json:"providerId"`
	ProviderName string                        `json:"providerName"`
	StartDate    string                        `json:"startDate"`
	EndDate      string                        `json:"endDate"`
	Availability *WeeklyAvailabilityResponse   `json:"availability"`
	Appointments []ScheduleAppointmentResponse `json:"appointments"`
}
