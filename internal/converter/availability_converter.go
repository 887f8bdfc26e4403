package converter

import (
	"clinic-scheduling-api/internal/delivery/dto"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/scheduling"
)

// AvailabilityToResponse lists the week Monday first, whatever order the rows came in.
func AvailabilityToResponse(availability *entity.ProviderAvailability) *dto.WeeklyAvailabilityResponse {
	if availability == nil {
		return nil
	}

	weekly := make([]dto.DayWindowResponse, len(entity.Weekdays))
	for i, w := range entity.Weekdays {
		day := availability.Day(w)
		weekly[i] = dto.DayWindowResponse{
			Weekday:     string(w),
			IsAvailable: day.IsAvailable,
			Start:       day.StartTime,
			End:         day.EndTime,
		}
	}

	return &dto.WeeklyAvailabilityResponse{
		ProviderID: availability.ProviderID,
		Timezone:   availability.Timezone,
		Weekly:     weekly,
		UpdatedAt:  availability.UpdatedAt,
	}
}

// SlotsToResponses converts generated slots to SlotResponse DTOs
func SlotsToResponses(slots []scheduling.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{
			StartTime:   s.Start.String(),
			EndTime:     s.End.String(),
			IsAvailable: s.Available,
		}
	}
	return responses
}
