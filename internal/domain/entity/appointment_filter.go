package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentScope splits appointments around "today".
type AppointmentScope string

const (
	AppointmentScopeAll      AppointmentScope = ""
	AppointmentScopeUpcoming AppointmentScope = "upcoming"
	AppointmentScopePast     AppointmentScope = "past"
)

// AppointmentFilter is a domain-level filter for querying the ledger.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	PatientID        *uuid.UUID
	ProviderID       *uuid.UUID
	Status           *AppointmentStatus
	Scope            AppointmentScope
	Today            time.Time // cutoff for Scope, a calendar date
	IncludeCancelled bool
	Limit            int
	Offset           int
}

// SortDescending reports whether results run newest first.
func (f AppointmentFilter) SortDescending() bool {
	return f.Scope == AppointmentScopePast
}
