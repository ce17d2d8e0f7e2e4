package payment

import (
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is the financing agreement a buyer pays off in instalments
type Plan struct {
	shared.BaseEntity
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	User     *identity.User  `gorm:"foreignKey:UserID"`
	VendorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Vendor   *identity.User  `gorm:"foreignKey:VendorID"`
	DeviceID *uuid.UUID      `gorm:"type:uuid;index"`
	Device   *device.Device  `gorm:"foreignKey:DeviceID"`
	Value    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quotas   int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (Plan) TableName() string {
	return "plans"
}
