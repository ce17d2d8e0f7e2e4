package payment

import (
	"context"
	"time"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the settlement state of a payment
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateRefunded State = "refunded"
)

// IsValid reports whether s is a known payment state
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected, StateRefunded:
		return true
	}
	return false
}

// Payment is a single instalment against a plan
type Payment struct {
	shared.BaseEntity
	PlanID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Plan      *Plan           `gorm:"foreignKey:PlanID"`
	DeviceID  *uuid.UUID      `gorm:"type:uuid;index"`
	Device    *device.Device  `gorm:"foreignKey:DeviceID"`
	Value     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    string          `gorm:"type:varchar(50);not null"`
	State     State           `gorm:"type:varchar(20);not null;default:'pending'"`
	Date      time.Time       `gorm:"not null;index"`
	Reference string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a pending payment
func NewPayment(planID uuid.UUID, value decimal.Decimal, method string, date time.Time) (*Payment, error) {
	if planID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("plan_id is required")
	}
	if value.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("value must not be negative")
	}
	if method == "" {
		return nil, shared.ErrInvalidInput.WithMessage("method is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		PlanID:     planID,
		Value:      value.Round(2),
		Method:     method,
		State:      StatePending,
		Date:       date,
	}, nil
}

// SetState moves the payment to a new settlement state
func (p *Payment) SetState(s State) error {
	if !s.IsValid() {
		return shared.ErrInvalidInput.WithMessage("unknown payment state: " + string(s))
	}
	p.State = s
	p.Touch()
	return nil
}

// SetValue replaces the amount, rounded to cents
func (p *Payment) SetValue(v decimal.Decimal) error {
	if v.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("value must not be negative")
	}
	p.Value = v.Round(2)
	p.Touch()
	return nil
}

// Filter narrows payment listings. StoreID matches either the buyer's or
// the vendor's store.
type Filter struct {
	PlanID   *uuid.UUID
	DeviceID *uuid.UUID
	StoreID  *uuid.UUID
	Page     shared.Page
}

// Repository persists payments
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, filter Filter) ([]Payment, error)
	Save(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
