package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderAvailability is a provider's weekly recurring schedule.
// The composite key on AvailabilityDay keeps one window per weekday.
type ProviderAvailability struct {
	ProviderID uuid.UUID         `gorm:"type:uuid;primaryKey" json:"provider_id"`
	Timezone   string            `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	Days       []AvailabilityDay `gorm:"foreignKey:ProviderID;references:ProviderID" json:"days"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProviderAvailability) TableName() string {
	return "provider_availabilities"
}

// AvailabilityDay is the open window of a single weekday.
// StartTime and EndTime are HH:MM and only set when IsAvailable is true.
type AvailabilityDay struct {
	ProviderID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Weekday     Weekday   `gorm:"type:varchar(9);primaryKey" json:"weekday"`
	IsAvailable bool      `gorm:"not null;default:false" json:"is_available"`
	StartTime   *string   `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime     *string   `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AvailabilityDay) TableName() string {
	return "provider_availability_days"
}

// NewDefaultAvailability returns an all-unavailable week.
func NewDefaultAvailability(providerID uuid.UUID, timezone string) *ProviderAvailability {
	days := make([]AvailabilityDay, len(Weekdays))
	for i, w := range Weekdays {
		days[i] = AvailabilityDay{ProviderID: providerID, Weekday: w}
	}
	return &ProviderAvailability{
		ProviderID: providerID,
		Timezone:   timezone,
		Days:       days,
	}
}

// Day returns the window for a weekday. A missing row reads as closed.
func (a *ProviderAvailability) Day(w Weekday) AvailabilityDay {
	for _, d := range a.Days {
		if d.Weekday == w {
			return d
		}
	}
	return AvailabilityDay{ProviderID: a.ProviderID, Weekday: w}
}

// SetDay replaces the window of d.Weekday, adding it when absent.
func (a *ProviderAvailability) SetDay(d AvailabilityDay) {
	d.ProviderID = a.ProviderID
	for i := range a.Days {
		if a.Days[i].Weekday == d.Weekday {
			a.Days[i] = d
			return
		}
	}
	a.Days = append(a.Days, d)
}

// Location resolves the provider's timezone, falling back to UTC.
func (a *ProviderAvailability) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsOpen reports whether the day has a usable window.
func (d AvailabilityDay) IsOpen() bool {
	return d.IsAvailable && d.StartTime != nil && d.EndTime != nil
}
