package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/configuration"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConfigurationRepository implements configuration.Repository using GORM
type GormConfigurationRepository struct {
	db *gorm.DB
}

// NewGormConfigurationRepository creates a new GormConfigurationRepository
func NewGormConfigurationRepository(db *gorm.DB) *GormConfigurationRepository {
	return &GormConfigurationRepository{db: db}
}

// FindByID finds a configuration by its ID
func (r *GormConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*configuration.Configuration, error) {
	var c configuration.Configuration
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Configuration not found")
	}
	return &c, nil
}

// FindAll lists configurations matching the filter
func (r *GormConfigurationRepository) FindAll(ctx context.Context, filter configuration.Filter) ([]configuration.Configuration, error) {
	query := r.db.WithContext(ctx).Model(&configuration.Configuration{})
	if filter.Key != "" {
		query = query.Where("key = ?", filter.Key)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}

	var configs []configuration.Configuration
	if err := query.Order("key ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// Save creates or updates a configuration
func (r *GormConfigurationRepository) Save(ctx context.Context, c *configuration.Configuration) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes a configuration
func (r *GormConfigurationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&configuration.Configuration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Configuration not found")
	}
	return nil
}

var _ configuration.Repository = (*GormConfigurationRepository)(nil)
