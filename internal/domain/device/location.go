package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Location is a position reported by a device
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeviceID  uuid.UUID `gorm:"type:uuid;not null;index:idx_locations_device_created,priority:1"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_locations_device_created,priority:2"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// LocationRepository reads device positions
type LocationRepository interface {
	FindLastByDevice(ctx context.Context, deviceID uuid.UUID) (*Location, error)
}
