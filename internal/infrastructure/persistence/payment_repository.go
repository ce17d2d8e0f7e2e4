package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// withDetails preloads the device and the plan's parties with their roles
func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Device").
		Preload("Plan").
		Preload("Plan.User").
		Preload("Plan.User.Role").
		Preload("Plan.Vendor").
		Preload("Plan.Vendor.Role")
}

// FindByID finds a payment by its ID with device and plan loaded
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := withDetails(r.db.WithContext(ctx)).First(&p, "payments.id = ?", id).Error; err != nil {
		return nil, notFound(err, "Payment not found")
	}
	return &p, nil
}

// FindAll lists payments, newest first. A store filter matches payments
// whose plan's buyer or vendor belongs to the store.
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]payment.Payment, error) {
	query := r.db.WithContext(ctx).Model(&payment.Payment{})
	if filter.PlanID != nil {
		query = query.Where("payments.plan_id = ?", *filter.PlanID)
	}
	if filter.DeviceID != nil {
		query = query.Where("payments.device_id = ?", *filter.DeviceID)
	}
	if filter.StoreID != nil {
		query = query.
			Joins("JOIN plans ON plans.id = payments.plan_id").
			Joins("JOIN users buyer ON buyer.id = plans.user_id").
			Joins("JOIN users vendor ON vendor.id = plans.vendor_id").
			Where("buyer.store_id = ? OR vendor.store_id = ?", *filter.StoreID, *filter.StoreID)
	}
	page := filter.Page.Normalize()

	var payments []payment.Payment
	err := withDetails(query).
		Order("payments.date DESC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&payment.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Payment not found")
	}
	return nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
