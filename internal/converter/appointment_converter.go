package converter

import (
	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		ProviderID:      appointment.ProviderID,
		Date:            entity.FormatDate(appointment.AppointmentDate),
		StartTime:       appointment.StartTime,
		EndTime:         appointment.EndTime,
		Status:          string(appointment.Status),
		Reason:          appointment.Reason,
		PatientNotes:    appointment.PatientNotes,
		ProviderNotes:   appointment.ProviderNotes,
		IsFirstVisit:    appointment.IsFirstVisit,
		PaymentStatus:   string(appointment.PaymentStatus),
		ConsultationFee: appointment.ConsultationFee,
		CancelledAt:     appointment.CancelledAt,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentsToScheduleEntries strips patient-identifying fields for public schedule views.
func AppointmentsToScheduleEntries(appointments []entity.Appointment) []dto.ScheduleAppointmentResponse {
	entries := make([]dto.ScheduleAppointmentResponse, len(appointments))
	for i, a := range appointments {
		entries[i] = dto.ScheduleAppointmentResponse{
			ID:        a.ID,
			Date:      entity.FormatDate(a.AppointmentDate),
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Status:    string(a.Status),
		}
	}
	return entries
}
