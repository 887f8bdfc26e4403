package dto

type SlotQuery struct {
	ProviderID string `json:"providerId" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,date"`
}

type SlotResponse struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

type WorkingHoursResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type SlotListResponse struct {
	ProviderID   string                `json:"providerId"`
	Date         string                `json:"date"`
	Weekday      string                `json:"weekday"`
	Timezone     string                `json:"timezone"`
	Available    bool                  `json:"available"`
	WorkingHours *WorkingHoursResponse `json:"workingHours"`
	Slots        []SlotResponse        `json:"slots"`
	Reason       string                `json:"reason,omitempty"`
}
