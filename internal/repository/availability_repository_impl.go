package repository

import (
	"context"
	"errors"

	"clinic-scheduling-api/internal/domain/entity"
	domainRepo "clinic-scheduling-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) domainRepo.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, error) {
	var availability entity.ProviderAvailability
	err := r.db.WithContext(ctx).
		Preload("Days").
		Where("provider_id = ?", providerID).
		First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) CreateIfAbsent(ctx context.Context, availability *entity.ProviderAvailability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit("Days").Clauses(clause.OnConflict{DoNothing: true}).Create(availability)
		if result.Error != nil || result.RowsAffected == 0 {
			return result.Error
		}
		for i := range availability.Days {
			availability.Days[i].ProviderID = availability.ProviderID
		}
		if len(availability.Days) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&availability.Days).Error
	})
}

func (r *availabilityRepository) Save(ctx context.Context, availability *entity.ProviderAvailability) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("Days").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"timezone", "updated_at"}),
		}).Create(availability).Error
		if err != nil {
			return err
		}

		if len(availability.Days) == 0 {
			return nil
		}
		for i := range availability.Days {
			availability.Days[i].ProviderID = availability.ProviderID
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}, {Name: "weekday"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_available", "start_time", "end_time", "updated_at"}),
		}).Create(&availability.Days).Error
	})
}
