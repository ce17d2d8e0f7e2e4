package configuration

import (
	"context"
	"strings"

	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Configuration is a key/value setting, optionally scoped to a store
type Configuration struct {
	shared.BaseEntity
	Key     string     `gorm:"type:varchar(100);not null;index"`
	Value   string     `gorm:"type:text;not null"`
	StoreID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Configuration) TableName() string {
	return "configurations"
}

// NewConfiguration creates a configuration entry
func NewConfiguration(key, value string, storeID *uuid.UUID) (*Configuration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.ErrInvalidInput.WithMessage("key is required")
	}
	return &Configuration{
		BaseEntity: shared.NewBaseEntity(),
		Key:        key,
		Value:      value,
		StoreID:    storeID,
	}, nil
}

// Filter narrows configuration listings
type Filter struct {
	Key     string
	StoreID *uuid.UUID
}

// Repository persists configurations
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Configuration, error)
	FindAll(ctx context.Context, filter Filter) ([]Configuration, error)
	Save(ctx context.Context, c *Configuration) error
	Delete(ctx context.Context, id uuid.UUID) error
}
