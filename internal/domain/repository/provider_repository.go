package repository

import (
	"context"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

// ProviderDirectory resolves bookable providers from the identity tables.
type ProviderDirectory interface {
	// FindProvider returns (nil, nil) when id is not an active doctor.
	FindProvider(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}
