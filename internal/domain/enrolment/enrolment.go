package enrolment

import (
	"context"

	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Enrolment links a customer to the vendor that signed them up. Devices
// reach their store through enrolment -> user -> store_id.
type Enrolment struct {
	shared.BaseEntity
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	User     *identity.User `gorm:"foreignKey:UserID"`
	VendorID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Vendor   *identity.User `gorm:"foreignKey:VendorID"`
}

// TableName returns the table name for GORM
func (Enrolment) TableName() string {
	return "enrolments"
}

// NewEnrolment creates an enrolment between a customer and a vendor
func NewEnrolment(userID, vendorID uuid.UUID) (*Enrolment, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("user_id is required")
	}
	if vendorID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("vendor_id is required")
	}
	return &Enrolment{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		VendorID:   vendorID,
	}, nil
}

// Filter narrows enrolment listings
type Filter struct {
	UserID   *uuid.UUID
	VendorID *uuid.UUID
	Page     shared.Page
}

// Repository persists enrolments
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Enrolment, error)
	FindAll(ctx context.Context, filter Filter) ([]Enrolment, error)
	Save(ctx context.Context, e *Enrolment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
