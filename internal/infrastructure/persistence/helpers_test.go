package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/enrolment/backend/internal/domain/configuration"
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with every model migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&identity.Role{},
		&identity.City{},
		&identity.User{},
		&enrolment.Enrolment{},
		&device.Device{},
		&device.Action{},
		&device.Location{},
		&payment.Plan{},
		&payment.Payment{},
		&configuration.Configuration{},
	)
	require.NoError(t, err)
	return db
}

// newMockGormDB creates a GORM handle over sqlmock with the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// seeder writes fixture rows straight through GORM
type seeder struct {
	t     *testing.T
	db    *gorm.DB
	roles map[string]uuid.UUID
}

func newSeeder(t *testing.T, db *gorm.DB) *seeder {
	s := &seeder{t: t, db: db, roles: map[string]uuid.UUID{}}
	for _, name := range []string{identity.RoleCustomer, identity.RoleVendor, "Admin"} {
		id := uuid.New()
		require.NoError(t, db.Create(&identity.Role{ID: id, Name: name}).Error)
		s.roles[name] = id
	}
	return s
}

func at(day string, clock string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04:05", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return ts.UTC()
}

func (s *seeder) city(name string) *identity.City {
	c := &identity.City{ID: uuid.New(), Name: name}
	require.NoError(s.t, s.db.Create(c).Error)
	return c
}

func (s *seeder) user(role string, store *uuid.UUID, created time.Time, city *identity.City) *identity.User {
	u := &identity.User{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		DNI:        uuid.NewString()[:12],
		FirstName:  "First",
		LastName:   "Last",
		Email:      "user@example.com",
		Prefix:     "+57",
		Phone:      "3000000000",
		RoleID:     s.roles[role],
		StoreID:    store,
	}
	if city != nil {
		u.CityID = &city.ID
	}
	require.NoError(s.t, s.db.Omit("Role", "City").Create(u).Error)
	return u
}

func (s *seeder) enrolment(user, vendor *identity.User) *enrolment.Enrolment {
	e := &enrolment.Enrolment{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     user.ID,
		VendorID:   vendor.ID,
	}
	require.NoError(s.t, s.db.Omit("User", "Vendor").Create(e).Error)
	return e
}

func (s *seeder) device(imei string, e *enrolment.Enrolment, created time.Time) *device.Device {
	d := &device.Device{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		Name:       "Phone " + imei,
		IMEI:       imei,
		Brand:      "Samsung",
		Model:      "A14",
		State:      device.StateActive,
	}
	if e != nil {
		d.EnrolmentID = &e.ID
	}
	require.NoError(s.t, s.db.Omit("Enrolment").Create(d).Error)
	return d
}

func (s *seeder) plan(buyer, vendor *identity.User, d *device.Device) *payment.Plan {
	p := &payment.Plan{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     buyer.ID,
		VendorID:   vendor.ID,
		Value:      decimal.NewFromInt(1200),
		Quotas:     12,
	}
	if d != nil {
		p.DeviceID = &d.ID
	}
	require.NoError(s.t, s.db.Omit("User", "Vendor", "Device").Create(p).Error)
	return p
}

func (s *seeder) payment(plan *payment.Plan, value string, date time.Time) *payment.Payment {
	p := &payment.Payment{
		BaseEntity: shared.NewBaseEntity(),
		PlanID:     plan.ID,
		DeviceID:   plan.DeviceID,
		Value:      decimal.RequireFromString(value),
		Method:     "cash",
		State:      payment.StateApproved,
		Date:       date,
		Reference:  "REF-" + uuid.NewString()[:8],
	}
	require.NoError(s.t, s.db.Omit("Plan", "Device").Create(p).Error)
	return p
}
