package repository

import (
	"context"
	"errors"
	"time"

	"clinic-scheduling-api/internal/domain/entity"
	domainRepo "clinic-scheduling-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// activeSlotConstraint is the partial unique index over non-cancelled
// appointments, see migrations/000002.
const activeSlotConstraint = "uq_appointments_active_slot"

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	err := r.db.WithContext(ctx).Create(appointment).Error
	if isUniqueViolation(err, activeSlotConstraint) {
		return domainRepo.ErrSlotTaken
	}
	return err
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	var appointments []entity.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Appointment{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	} else if !filter.IncludeCancelled {
		query = query.Where("status <> ?", entity.AppointmentStatusCancelled)
	}
	switch filter.Scope {
	case entity.AppointmentScopeUpcoming:
		query = query.Where("appointment_date >= ?", entity.FormatDate(filter.Today))
	case entity.AppointmentScopePast:
		query = query.Where("appointment_date < ?", entity.FormatDate(filter.Today))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "appointment_date ASC, start_time ASC"
	if filter.SortDescending() {
		order = "appointment_date DESC, start_time DESC"
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Order(order).Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *appointmentRepository) FindActiveByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND appointment_date = ? AND status <> ?", providerID, entity.FormatDate(date), entity.AppointmentStatusCancelled).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveByProviderInRange(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND appointment_date BETWEEN ? AND ? AND status <> ?",
			providerID, entity.FormatDate(from), entity.FormatDate(to), entity.AppointmentStatusCancelled).
		Order("appointment_date ASC, start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountActiveByPatientAndProvider(ctx context.Context, patientID, providerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("patient_id = ? AND provider_id = ? AND status <> ?", patientID, providerID, entity.AppointmentStatusCancelled).
		Count(&count).Error
	return count, err
}

// TransitionStatus atomically moves an appointment ONLY if nobody changed it first.
// Returns affected rows: 1 = success, 0 = lost the race.
func (r *appointmentRepository) TransitionStatus(ctx context.Context, appointment *entity.Appointment, from entity.AppointmentStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", appointment.ID, from).
		Updates(map[string]interface{}{
			"status":         appointment.Status,
			"provider_notes": appointment.ProviderNotes,
			"cancelled_at":   appointment.CancelledAt,
			"updated_at":     time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteIfStatus(ctx context.Context, id uuid.UUID, from entity.AppointmentStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, from).
		Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

// WithSlotLock serializes booking writers for one provider-day across every
// service instance sharing the database. The advisory lock is released when
// the transaction ends.
func (r *appointmentRepository) WithSlotLock(ctx context.Context, providerID uuid.UUID, date time.Time, fn func(repo domainRepo.AppointmentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := providerID.String() + "|" + entity.FormatDate(date)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return err
		}
		return fn(&appointmentRepository{db: tx})
	})
}

// isUniqueViolation reports PostgreSQL error 23505 on the named constraint.
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}
