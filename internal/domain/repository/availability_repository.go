package repository

import (
	"context"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	// FindByProviderID returns (nil, nil) when the provider has no schedule yet.
	FindByProviderID(ctx context.Context, providerID uuid.UUID) (*entity.ProviderAvailability, error)
	// CreateIfAbsent inserts the schedule unless one already exists.
	CreateIfAbsent(ctx context.Context, availability *entity.ProviderAvailability) error
	// Save upserts the schedule header and every day it carries.
	Save(ctx context.Context, availability *entity.ProviderAvailability) error
}
