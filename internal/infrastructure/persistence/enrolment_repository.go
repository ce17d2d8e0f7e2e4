package persistence

import (
	"context"

	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEnrolmentRepository implements enrolment.Repository using GORM
type GormEnrolmentRepository struct {
	db *gorm.DB
}

// NewGormEnrolmentRepository creates a new GormEnrolmentRepository
func NewGormEnrolmentRepository(db *gorm.DB) *GormEnrolmentRepository {
	return &GormEnrolmentRepository{db: db}
}

// FindByID finds an enrolment by its ID
func (r *GormEnrolmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*enrolment.Enrolment, error) {
	var e enrolment.Enrolment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Enrolment not found")
	}
	return &e, nil
}

// FindAll lists enrolments, newest first
func (r *GormEnrolmentRepository) FindAll(ctx context.Context, filter enrolment.Filter) ([]enrolment.Enrolment, error) {
	query := r.db.WithContext(ctx).Model(&enrolment.Enrolment{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	page := filter.Page.Normalize()

	var enrolments []enrolment.Enrolment
	if err := query.Order("created_at DESC").Offset(page.Skip).Limit(page.Limit).Find(&enrolments).Error; err != nil {
		return nil, err
	}
	return enrolments, nil
}

// Save creates or updates an enrolment
func (r *GormEnrolmentRepository) Save(ctx context.Context, e *enrolment.Enrolment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

// Delete removes an enrolment
func (r *GormEnrolmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&enrolment.Enrolment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Enrolment not found")
	}
	return nil
}

var _ enrolment.Repository = (*GormEnrolmentRepository)(nil)
