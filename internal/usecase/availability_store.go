package usecase

import (
	"context"
	"time"

	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/domain/repository"
	"clinic-scheduling-api/internal/scheduling"
	"clinic-scheduling-api/internal/service"
	"clinic-scheduling-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DayWindow is a requested change to one weekday.
type DayWindow struct {
	Weekday     entity.Weekday
	IsAvailable bool
	Start       string
	End         string
}

// AvailabilityStore owns providers' weekly schedules. Reads go through the
// cache; concurrent misses for one provider share a single load.
type AvailabilityStore struct {
	log             *logrus.Logger
	repo            repository.AvailabilityRepository
	cache           service.AvailabilityCache
	defaultTimezone string
	loads           singleflight.Group
}

func NewAvailabilityStore(
	log *logrus.Logger,
	repo repository.AvailabilityRepository,
	cache service.AvailabilityCache,
	defaultTimezone string,
) *AvailabilityStore {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &AvailabilityStore{
		log:             log,
		repo:            repo,
		cache:           cache,
		defaultTimezone: defaultTimezone,
	}
}

// Get returns the provider's weekly schedule, creating an all-unavailable
// default on first access. It never reports "not found".
func (s *AvailabilityStore) Get(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, error) {
	if cached, ok := s.cache.Get(ctx, providerID); ok {
		return cached, nil
	}

	v, err, _ := s.loads.Do(providerID.String(), func() (interface{}, error) {
		return s.load(ctx, providerID)
	})
	if err != nil {
		return nil, err
	}

	// Callers may mutate the result; hand each one its own copy.
	return cloneAvailability(v.(*entity.ProviderAvailability)), nil
}

func (s *AvailabilityStore) load(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, error) {
	availability, err := s.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		s.log.Warnf("Failed to find availability for provider %s: %+v", providerID, err)
		return nil, apperror.Storage("failed to load availability", err)
	}

	if availability == nil {
		if err := s.repo.CreateIfAbsent(ctx, entity.NewDefaultAvailability(providerID, s.defaultTimezone)); err != nil {
			s.log.Warnf("Failed to create default availability for provider %s: %+v", providerID, err)
			return nil, apperror.Storage("failed to create availability", err)
		}
		availability, err = s.repo.FindByProviderID(ctx, providerID)
		if err != nil {
			s.log.Warnf("Failed to reload availability for provider %s: %+v", providerID, err)
			return nil, apperror.Storage("failed to load availability", err)
		}
		if availability == nil {
			availability = entity.NewDefaultAvailability(providerID, s.defaultTimezone)
		}
		s.log.Infof("Default availability created for provider %s", providerID)
	}

	s.cache.Set(ctx, availability)
	return availability, nil
}

// SetDay validates and stores one weekday's window.
func (s *AvailabilityStore) SetDay(ctx context.Context, providerID uuid.UUID, window DayWindow) (*entity.ProviderAvailability, error) {
	day, err := buildDay(window)
	if err != nil {
		return nil, err
	}

	availability, err := s.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	availability.SetDay(day)

	// Write only this day so concurrent edits of other days survive.
	changed := &entity.ProviderAvailability{
		ProviderID: providerID,
		Timezone:   availability.Timezone,
		Days:       []entity.AvailabilityDay{day},
	}
	if err := s.save(ctx, changed); err != nil {
		return nil, err
	}
	return availability, nil
}

// SetWeekly replaces the whole week. Days not listed become unavailable.
// An empty timezone keeps the current one.
func (s *AvailabilityStore) SetWeekly(ctx context.Context, providerID uuid.UUID, timezone string, windows []DayWindow) (*entity.ProviderAvailability, error) {
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, apperror.Validation("unknown timezone %q", timezone)
		}
	}
	days := make(map[entity.Weekday]entity.AvailabilityDay, len(windows))
	for _, w := range windows {
		day, err := buildDay(w)
		if err != nil {
			return nil, err
		}
		days[w.Weekday] = day
	}

	availability, err := s.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if timezone != "" {
		availability.Timezone = timezone
	}
	for _, w := range entity.Weekdays {
		day, ok := days[w]
		if !ok {
			day = entity.AvailabilityDay{Weekday: w}
		}
		availability.SetDay(day)
	}

	if err := s.save(ctx, availability); err != nil {
		return nil, err
	}
	return availability, nil
}

func (s *AvailabilityStore) save(ctx context.Context, availability *entity.ProviderAvailability) error {
	if err := s.repo.Save(ctx, availability); err != nil {
		s.log.Warnf("Failed to save availability for provider %s: %+v", availability.ProviderID, err)
		return apperror.Storage("failed to save availability", err)
	}
	s.cache.Invalidate(ctx, availability.ProviderID)
	return nil
}

func buildDay(w DayWindow) (entity.AvailabilityDay, error) {
	day := entity.AvailabilityDay{Weekday: w.Weekday, IsAvailable: w.IsAvailable}
	if !w.IsAvailable {
		return day, nil
	}
	if w.Start == "" || w.End == "" {
		return day, ErrMissingAvailabilityTime
	}
	if _, err := scheduling.ParseInterval(w.Start, w.End); err != nil {
		return day, apperror.Validation("%s: %v", w.Weekday, err)
	}
	start, end := w.Start, w.End
	day.StartTime, day.EndTime = &start, &end
	return day, nil
}

func cloneAvailability(a *entity.ProviderAvailability) *entity.ProviderAvailability {
	c := *a
	c.Days = append([]entity.AvailabilityDay(nil), a.Days...)
	return &c
}
