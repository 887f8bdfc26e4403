package repository

import (
	"context"
	"errors"

	"clinic-scheduling-api/internal/domain/entity"
	domainRepo "clinic-scheduling-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type providerDirectory struct {
	db *gorm.DB
}

func NewProviderDirectory(db *gorm.DB) domainRepo.ProviderDirectory {
	return &providerDirectory{db: db}
}

// FindProvider loads an active user holding the doctor role, with its
// optional doctor profile.
func (r *providerDirectory) FindProvider(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("DoctorProfile").
		Where("id = ? AND role_id = ? AND is_active = ?", id, entity.RoleIDDoctor, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	provider := &entity.Provider{
		ID:          user.ID,
		DisplayName: user.FullName,
	}
	if user.DoctorProfile != nil {
		provider.Specialization = user.DoctorProfile.Specialization
		provider.ConsultationFee = user.DoctorProfile.ConsultationFee
	}
	return provider, nil
}

func (r *providerDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND role_id = ? AND is_active = ?", id, entity.RoleIDDoctor, true).
		Count(&count).Error
	return count > 0, err
}

func (r *providerDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND role_id = ?", id, entity.RoleIDDoctor).
		Limit(1).
		Pluck("full_name", &names).Error
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}
