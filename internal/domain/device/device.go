package device

import (
	"context"
	"strings"

	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// State is the lifecycle state of an enrolled device
type State string

const (
	StatePending  State = "pending"
	StateActive   State = "active"
	StateBlocked  State = "blocked"
	StateReleased State = "released"
)

// IsValid reports whether s is a known device state
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateActive, StateBlocked, StateReleased:
		return true
	}
	return false
}

// Device is a financed handset tracked by the backend
type Device struct {
	shared.BaseEntity
	EnrolmentID  *uuid.UUID           `gorm:"type:uuid;index"`
	Enrolment    *enrolment.Enrolment `gorm:"foreignKey:EnrolmentID"`
	Name         string               `gorm:"type:varchar(100);not null"`
	IMEI         string               `gorm:"column:imei;type:varchar(20);not null;uniqueIndex:device_imei_key"`
	SerialNumber string               `gorm:"type:varchar(100)"`
	Model        string               `gorm:"type:varchar(100)"`
	Brand        string               `gorm:"type:varchar(100)"`
	ProductName  string               `gorm:"type:varchar(100)"`
	State        State                `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (Device) TableName() string {
	return "devices"
}

// NewDevice creates a pending device
func NewDevice(imei, name string) (*Device, error) {
	imei = strings.TrimSpace(imei)
	if imei == "" {
		return nil, shared.ErrInvalidInput.WithMessage("imei is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("name is required")
	}
	return &Device{
		BaseEntity: shared.NewBaseEntity(),
		IMEI:       imei,
		Name:       name,
		State:      StatePending,
	}, nil
}

// SetState moves the device to a new state
func (d *Device) SetState(s State) error {
	if !s.IsValid() {
		return shared.ErrInvalidInput.WithMessage("unknown device state: " + string(s))
	}
	d.State = s
	d.Touch()
	return nil
}

// Filter narrows device listings
type Filter struct {
	EnrolmentID *uuid.UUID
	UserID      *uuid.UUID
	Page        shared.Page
}

// Repository persists devices
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Device, error)
	FindAll(ctx context.Context, filter Filter) ([]Device, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id uuid.UUID) error
}
