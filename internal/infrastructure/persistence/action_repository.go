package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActionRepository implements device.ActionRepository using GORM
type GormActionRepository struct {
	db *gorm.DB
}

// NewGormActionRepository creates a new GormActionRepository
func NewGormActionRepository(db *gorm.DB) *GormActionRepository {
	return &GormActionRepository{db: db}
}

// FindByID finds an action by its ID
func (r *GormActionRepository) FindByID(ctx context.Context, id uuid.UUID) (*device.Action, error) {
	var a device.Action
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Action not found")
	}
	return &a, nil
}

// FindAll lists actions, newest first, optionally for one device
func (r *GormActionRepository) FindAll(ctx context.Context, deviceID *uuid.UUID, page shared.Page) ([]device.Action, error) {
	query := r.db.WithContext(ctx).Model(&device.Action{})
	if deviceID != nil {
		query = query.Where("device_id = ?", *deviceID)
	}
	page = page.Normalize()

	var actions []device.Action
	if err := query.Order("created_at DESC").Offset(page.Skip).Limit(page.Limit).Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// Save creates or updates an action
func (r *GormActionRepository) Save(ctx context.Context, a *device.Action) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Delete removes an action
func (r *GormActionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&device.Action{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Action not found")
	}
	return nil
}

var _ device.ActionRepository = (*GormActionRepository)(nil)
