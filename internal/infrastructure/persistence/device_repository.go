package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateIMEI is returned when a device IMEI is already registered
var ErrDuplicateIMEI = shared.NewDomainError("ALREADY_EXISTS", "A device with this IMEI already exists.")

// GormDeviceRepository implements device.Repository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// FindByID finds a device by its ID
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*device.Device, error) {
	var d device.Device
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Device not found")
	}
	return &d, nil
}

// FindAll lists devices, optionally by enrolment or by the enrolled user
func (r *GormDeviceRepository) FindAll(ctx context.Context, filter device.Filter) ([]device.Device, error) {
	query := r.db.WithContext(ctx).Model(&device.Device{})
	if filter.EnrolmentID != nil {
		query = query.Where("devices.enrolment_id = ?", *filter.EnrolmentID)
	}
	if filter.UserID != nil {
		query = query.Joins("JOIN enrolments ON enrolments.id = devices.enrolment_id").
			Where("enrolments.user_id = ?", *filter.UserID)
	}
	page := filter.Page.Normalize()

	var devices []device.Device
	if err := query.Order("devices.created_at DESC").Offset(page.Skip).Limit(page.Limit).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Count returns the total number of devices
func (r *GormDeviceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&device.Device{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Save creates or updates a device. A duplicate IMEI yields ErrDuplicateIMEI.
func (r *GormDeviceRepository) Save(ctx context.Context, d *device.Device) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error
	if isUniqueViolation(err) {
		return shared.WrapDomainError(ErrDuplicateIMEI.Code, ErrDuplicateIMEI.Message, err)
	}
	return err
}

// Delete removes a device
func (r *GormDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&device.Device{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Device not found")
	}
	return nil
}

var _ device.Repository = (*GormDeviceRepository)(nil)
