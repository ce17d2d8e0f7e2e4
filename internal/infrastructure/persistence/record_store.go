package persistence

import (
	"context"
	"fmt"

	"github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	joinUserRole        = "JOIN roles ON roles.id = users.role_id"
	joinDeviceEnrolment = "JOIN enrolments ON enrolments.id = devices.enrolment_id"
	joinEnrolmentUser   = "JOIN users ON users.id = enrolments.user_id"
	joinPaymentPlan     = "JOIN plans ON plans.id = payments.plan_id"
	joinPlanUser        = "JOIN users ON users.id = plans.user_id"
)

// column resolves a field path to a qualified column and the joins it needs
type column struct {
	name  string
	joins []string
}

var columns = map[analytics.Entity]map[analytics.Field]column{
	analytics.EntityUser: {
		analytics.FieldRoleName:  {name: "roles.name", joins: []string{joinUserRole}},
		analytics.FieldStoreID:   {name: "users.store_id"},
		analytics.FieldCreatedAt: {name: "users.created_at"},
	},
	analytics.EntityDevice: {
		analytics.FieldCreatedAt:            {name: "devices.created_at"},
		analytics.FieldEnrolmentUserStoreID: {name: "users.store_id", joins: []string{joinDeviceEnrolment, joinEnrolmentUser}},
	},
	analytics.EntityPayment: {
		analytics.FieldDate:            {name: "payments.date"},
		analytics.FieldPlanUserStoreID: {name: "users.store_id", joins: []string{joinPaymentPlan, joinPlanUser}},
	},
}

var operators = map[analytics.Op]string{
	analytics.OpEq:  "=",
	analytics.OpGte: ">=",
	analytics.OpLte: "<=",
}

// GormRecordStore implements analytics.RecordStore using GORM
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore creates a new GormRecordStore
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

// Count returns the number of records matching q
func (s *GormRecordStore) Count(ctx context.Context, q analytics.Query) (int64, error) {
	tx, err := s.scope(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Entity(), err)
	}
	return n, nil
}

// SumPaymentValues returns the sum of payments.value over q, zero when empty
func (s *GormRecordStore) SumPaymentValues(ctx context.Context, q analytics.Query) (decimal.Decimal, error) {
	if q.Entity() != analytics.EntityPayment {
		return decimal.Zero, fmt.Errorf("sum payment values: query is over %s", q.Entity())
	}
	tx, err := s.scope(ctx, q)
	if err != nil {
		return decimal.Zero, err
	}
	var total decimal.Decimal
	if err := tx.Select("COALESCE(SUM(payments.value), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum payment values: %w", err)
	}
	return total, nil
}

// FindUsers returns matching users with role and city loaded, oldest first
func (s *GormRecordStore) FindUsers(ctx context.Context, q analytics.Query) ([]identity.User, error) {
	if q.Entity() != analytics.EntityUser {
		return nil, fmt.Errorf("find users: query is over %s", q.Entity())
	}
	tx, err := s.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	var users []identity.User
	if err := tx.Preload("Role").Preload("City").Order("users.created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// FindDevices returns matching devices, oldest first
func (s *GormRecordStore) FindDevices(ctx context.Context, q analytics.Query) ([]device.Device, error) {
	if q.Entity() != analytics.EntityDevice {
		return nil, fmt.Errorf("find devices: query is over %s", q.Entity())
	}
	tx, err := s.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	var devices []device.Device
	if err := tx.Order("devices.created_at ASC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("find devices: %w", err)
	}
	return devices, nil
}

// FindPayments returns matching payments with their plan loaded, by date
func (s *GormRecordStore) FindPayments(ctx context.Context, q analytics.Query) ([]payment.Payment, error) {
	if q.Entity() != analytics.EntityPayment {
		return nil, fmt.Errorf("find payments: query is over %s", q.Entity())
	}
	tx, err := s.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	var payments []payment.Payment
	if err := tx.Preload("Plan").Order("payments.date ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	return payments, nil
}

// scope translates q into a GORM statement on the entity's table
func (s *GormRecordStore) scope(ctx context.Context, q analytics.Query) (*gorm.DB, error) {
	var tx *gorm.DB
	switch q.Entity() {
	case analytics.EntityUser:
		tx = s.db.WithContext(ctx).Model(&identity.User{})
	case analytics.EntityDevice:
		tx = s.db.WithContext(ctx).Model(&device.Device{})
	case analytics.EntityPayment:
		tx = s.db.WithContext(ctx).Model(&payment.Payment{})
	default:
		return nil, fmt.Errorf("%w: unknown entity %q", analytics.ErrUnsupportedPredicate, q.Entity())
	}

	joined := make(map[string]bool)
	for _, p := range q.Predicates() {
		col, ok := columns[q.Entity()][p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", analytics.ErrUnsupportedPredicate, q.Entity(), p.Field)
		}
		op, ok := operators[p.Op]
		if !ok {
			return nil, fmt.Errorf("%w: operator %s", analytics.ErrUnsupportedPredicate, p.Op)
		}
		for _, j := range col.joins {
			if !joined[j] {
				joined[j] = true
				tx = tx.Joins(j)
			}
		}
		tx = tx.Where(fmt.Sprintf("%s %s ?", col.name, op), p.Value)
	}
	return tx, nil
}

var _ analytics.RecordStore = (*GormRecordStore)(nil)
