package repository

import (
	"context"
	"errors"
	"time"

	"clinic-scheduling-api/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSlotTaken is returned when storage rejects a booking for a slot that
// another active appointment already holds.
var ErrSlotTaken = errors.New("slot already taken")

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	FindActiveByProviderInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)
	CountActiveByPatientAndProvider(ctx context.Context, patientID, providerID uuid.UUID) (int64, error)

	// TransitionStatus writes the appointment's status, provider notes and
	// cancelled_at only if the stored status still equals from.
	// Returns affected rows: 1 = applied, 0 = status changed underneath.
	TransitionStatus(ctx context.Context, appointment *entity.Appointment, from entity.AppointmentStatus) (int64, error)

	// DeleteIfStatus removes the appointment only if its status equals from.
	DeleteIfStatus(ctx context.Context, id uuid.UUID, from entity.AppointmentStatus) (int64, error)

	// WithSlotLock runs fn in a transaction that holds an exclusive lock on
	// (providerID, date). fn receives a repository bound to that transaction.
	WithSlotLock(ctx context.Context, providerID uuid.UUID, date time.Time, fn func(repo AppointmentRepository) error) error
}
