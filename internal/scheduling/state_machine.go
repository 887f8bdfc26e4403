package scheduling

import (
	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

var transitions = map[entity.AppointmentStatus][]entity.AppointmentStatus{
	entity.AppointmentStatusPending: {
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusCompleted,
	},
	entity.AppointmentStatusConfirmed: {
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusCompleted,
	},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to entity.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func IsTerminal(s entity.AppointmentStatus) bool {
	return len(transitions[s]) == 0
}

// CanSetStatus reports whether caller may move appt to target. It checks
// ownership and role only; CanTransition decides if the move is legal.
func CanSetStatus(caller entity.Caller, appt *entity.Appointment, target entity.AppointmentStatus) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.IsProvider() && appt.BelongsToProvider(caller.ID):
		return target == entity.AppointmentStatusConfirmed ||
			target == entity.AppointmentStatusCancelled ||
			target == entity.AppointmentStatusCompleted
	case caller.IsPatient() && appt.BelongsToPatient(caller.ID):
		return target == entity.AppointmentStatusCancelled
	}
	return false
}

// CanView reports whether caller may read or cancel appt.
func CanView(caller entity.Caller, appt *entity.Appointment) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.IsProvider():
		return appt.BelongsToProvider(caller.ID)
	case caller.IsPatient():
		return appt.BelongsToPatient(caller.ID)
	}
	return false
}

// CanWriteProviderNotes reports whether caller may set provider notes on appt.
func CanWriteProviderNotes(caller entity.Caller, appt *entity.Appointment) bool {
	return caller.IsProvider() && appt.BelongsToProvider(caller.ID)
}

// CanManageAvailability reports whether caller may edit providerID's schedule.
func CanManageAvailability(caller entity.Caller, providerID uuid.UUID) bool {
	if caller.IsAdmin() {
		return true
	}
	return caller.IsProvider() && caller.ID == providerID
}
