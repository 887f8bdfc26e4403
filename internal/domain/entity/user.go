package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the read-only view of an account in the identity service
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID   int       `gorm:"not null;index"`
	FullName string    `gorm:"type:varchar(255);not null"`
	IsActive *bool     `gorm:"not null;default:true"`

	DoctorProfile *DoctorProfile `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// DoctorProfile holds the doctor-specific data the scheduler reads
type DoctorProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Specialization  string          `gorm:"type:varchar(100)"`
	ConsultationFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// Provider is a bookable doctor as resolved by the provider directory.
type Provider struct {
	ID              uuid.UUID
	DisplayName     string
	Specialization  string
	ConsultationFee decimal.Decimal
}
