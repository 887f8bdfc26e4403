package handler

import (
	"encoding/json"
	"net/http"

	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/usecase"
	"clinic-scheduling-api/pkg/response"
	"clinic-scheduling-api/pkg/validator"
)

type AppointmentHandler struct {
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewAppointmentHandler(schedulingUsecase usecase.SchedulingUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

func (h *AppointmentHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.schedulingUsecase.CreateBooking(r.Context(), caller, &req)
	if err != nil {
		writeError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", appointment)
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}

	page, okPage := intQuery(r, "page")
	limit, okLimit := intQuery(r, "limit")
	if !okPage || !okLimit {
		response.BadRequest(w, "page and limit must be integers")
		return
	}

	query := dto.AppointmentListQuery{
		Status:     r.URL.Query().Get("status"),
		Scope:      r.URL.Query().Get("scope"),
		ProviderID: r.URL.Query().Get("providerId"),
		Page:       page,
		Limit:      limit,
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	list, err := h.schedulingUsecase.ListAppointments(r.Context(), caller, &query)
	if err != nil {
		writeError(w, err, "Failed to get bookings")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Bookings retrieved successfully", list.Appointments, response.NewMeta(list.Page, list.Limit, list.Total))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "booking")
	if !ok {
		return
	}

	appointment, err := h.schedulingUsecase.GetAppointment(r.Context(), caller, id)
	if err != nil {
		writeError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", appointment)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "booking")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.schedulingUsecase.UpdateStatus(r.Context(), caller, id, &req)
	if err != nil {
		writeError(w, err, "Failed to update booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking updated successfully", appointment)
}

func (h *AppointmentHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "booking")
	if !ok {
		return
	}

	result, err := h.schedulingUsecase.CancelAndDelete(r.Context(), caller, id)
	if err != nil {
		writeError(w, err, "Failed to cancel booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", result)
}
