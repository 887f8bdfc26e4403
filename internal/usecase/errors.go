package usecase

import (
	"clinic-scheduling-api/pkg/apperror"
)

var (
	ErrProviderNotFound    = apperror.New(apperror.KindNotFound, "provider not found")
	ErrAppointmentNotFound = apperror.New(apperror.KindNotFound, "appointment not found")
	ErrAuditLogNotFound    = apperror.New(apperror.KindNotFound, "audit log not found")

	ErrOnlyPatientsCanBook    = apperror.New(apperror.KindAuthorization, "only patients can create bookings")
	ErrAppointmentAccess      = apperror.New(apperror.KindAuthorization, "you are not allowed to access this appointment")
	ErrStatusNotAllowed       = apperror.New(apperror.KindAuthorization, "you are not allowed to set this status")
	ErrProviderNotesForbidden = apperror.New(apperror.KindAuthorization, "only the appointment's provider can write provider notes")
	ErrAvailabilityAccess     = apperror.New(apperror.KindAuthorization, "you are not allowed to change this provider's availability")
	ErrListNotAllowed         = apperror.New(apperror.KindAuthorization, "your role cannot list appointments")

	ErrSlotUnavailable = apperror.New(apperror.KindConflict, "the requested time overlaps an existing appointment")
	ErrBookingInPast   = apperror.New(apperror.KindConflict, "cannot book a time in the past")

	ErrOutsideWorkingHrs = apperror.New(apperror.KindValidation, "the requested time is outside the provider's working hours")

	ErrInvalidTransition       = apperror.New(apperror.KindInvalidState, "status transition is not allowed from the current status")
	ErrAppointmentCompleted    = apperror.New(apperror.KindInvalidState, "a completed appointment cannot be cancelled")
	ErrAppointmentCancelled    = apperror.New(apperror.KindInvalidState, "appointment is already cancelled")
	ErrAppointmentChanged      = apperror.New(apperror.KindInvalidState, "appointment was changed by another request, reload and retry")
	ErrInvalidScheduleRange    = apperror.New(apperror.KindValidation, "endDate must not be before startDate")
	ErrScheduleRangeTooLong    = apperror.New(apperror.KindValidation, "requested schedule range is too long")
	ErrMissingAvailabilityTime = apperror.New(apperror.KindValidation, "start and end are required when the day is available")
)
