package handler

import (
	"net/http"

	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/usecase"
	"clinic-scheduling-api/pkg/response"
	"clinic-scheduling-api/pkg/validator"

	"github.com/google/uuid"
)

type SlotHandler struct {
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewSlotHandler(schedulingUsecase usecase.SchedulingUsecase, validator *validator.CustomValidator) *SlotHandler {
	return &SlotHandler{
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

// ListSlots handles GET /slots?providerId=&date=
func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	query := dto.SlotQuery{
		ProviderID: r.URL.Query().Get("providerId"),
		Date:       r.URL.Query().Get("date"),
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	providerID, err := uuid.Parse(query.ProviderID)
	if err != nil {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	slots, err := h.schedulingUsecase.ListSlots(r.Context(), providerID, query.Date)
	if err != nil {
		writeError(w, err, "Failed to list slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}
