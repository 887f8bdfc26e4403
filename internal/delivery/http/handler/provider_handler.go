package handler

import (
	"encoding/json"
	"net/http"

	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/usecase"
	"clinic-scheduling-api/pkg/response"
	"clinic-scheduling-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ProviderHandler serves a provider's public schedule and availability edits.
type ProviderHandler struct {
	schedulingUsecase   usecase.SchedulingUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewProviderHandler(
	schedulingUsecase usecase.SchedulingUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
) *ProviderHandler {
	return &ProviderHandler{
		schedulingUsecase:   schedulingUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *ProviderHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.publicProvider(w, r)
	if !ok {
		return
	}

	query := dto.ScheduleQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.schedulingUsecase.GetProviderSchedule(r.Context(), providerID, &query)
	if err != nil {
		writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

func (h *ProviderHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.publicProvider(w, r)
	if !ok {
		return
	}

	availability, err := h.availabilityUsecase.GetWeeklyAvailability(r.Context(), providerID)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *ProviderHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	providerID, ok := h.targetProvider(w, r, caller)
	if !ok {
		return
	}

	var req dto.DayWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.SetDay(r.Context(), caller, providerID, mux.Vars(r)["weekday"], &req)
	if err != nil {
		writeError(w, err, "Failed to update availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", availability)
}

func (h *ProviderHandler) SetWeekly(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	providerID, ok := h.targetProvider(w, r, caller)
	if !ok {
		return
	}

	var req dto.SetWeeklyAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.SetWeekly(r.Context(), caller, providerID, &req)
	if err != nil {
		writeError(w, err, "Failed to update availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", availability)
}

// publicProvider resolves {id} on routes open to anonymous callers. "me"
// still needs an authenticated provider.
func (h *ProviderHandler) publicProvider(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if mux.Vars(r)["id"] != "me" {
		return uuidVar(w, r, "id", "provider")
	}
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return uuid.Nil, false
	}
	return h.targetProvider(w, r, caller)
}

// targetProvider resolves {id}, where "me" means the calling provider.
func (h *ProviderHandler) targetProvider(w http.ResponseWriter, r *http.Request, caller entity.Caller) (uuid.UUID, bool) {
	if mux.Vars(r)["id"] == "me" {
		if !caller.IsProvider() {
			response.BadRequest(w, "Only providers can use \"me\"")
			return uuid.Nil, false
		}
		return caller.ID, true
	}
	return uuidVar(w, r, "id", "provider")
}
