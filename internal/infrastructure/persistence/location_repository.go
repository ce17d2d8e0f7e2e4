package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLocationRepository implements device.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindLastByDevice returns the most recent location reported by a device
func (r *GormLocationRepository) FindLastByDevice(ctx context.Context, deviceID uuid.UUID) (*device.Location, error) {
	var loc device.Location
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		First(&loc).Error
	if err != nil {
		return nil, notFound(err, "Location not found")
	}
	return &loc, nil
}

var _ device.LocationRepository = (*GormLocationRepository)(nil)
