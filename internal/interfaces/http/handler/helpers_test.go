package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	analyticsapp "github.com/enrolment/backend/internal/application/analytics"
	configapp "github.com/enrolment/backend/internal/application/configuration"
	deviceapp "github.com/enrolment/backend/internal/application/device"
	enrolmentapp "github.com/enrolment/backend/internal/application/enrolment"
	paymentapp "github.com/enrolment/backend/internal/application/payment"
	"github.com/enrolment/backend/internal/domain/configuration"
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/enrolment/backend/internal/infrastructure/persistence"
	"github.com/enrolment/backend/internal/interfaces/http/dto"
	"github.com/enrolment/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires real services over an in-memory sqlite database
type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	roles  map[string]uuid.UUID
}

func newTestEnv(t *testing.T, storage analyticsapp.ReportStorage) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))

	env := &testEnv{t: t, db: db, roles: map[string]uuid.UUID{}}
	for _, name := range []string{identity.RoleCustomer, identity.RoleVendor} {
		id := uuid.New()
		require.NoError(t, db.Create(&identity.Role{ID: id, Name: name}).Error)
		env.roles[name] = id
	}

	deviceRepo := persistence.NewGormDeviceRepository(db)
	store := persistence.NewGormRecordStore(db)
	today := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	clock := analyticsapp.WithClock(func() time.Time { return today })
	renderer := analyticsapp.NewRenderer(store, clock)
	var archiver *analyticsapp.Archiver
	if storage != nil {
		archiver = analyticsapp.NewArchiver(renderer, storage, "reports", time.Hour)
	}

	configs := NewConfigurationHandler(configapp.NewConfigurationService(persistence.NewGormConfigurationRepository(db)))
	devices := NewDeviceHandler(deviceapp.NewDeviceService(deviceRepo, persistence.NewGormLocationRepository(db)))
	actions := NewActionHandler(deviceapp.NewActionService(persistence.NewGormActionRepository(db), deviceRepo))
	enrolments := NewEnrolmentHandler(enrolmentapp.NewEnrolmentService(persistence.NewGormEnrolmentRepository(db)))
	payments := NewPaymentHandler(paymentapp.NewPaymentService(persistence.NewGormPaymentRepository(db)))
	analytics := NewAnalyticsHandler(analyticsapp.NewAggregator(store, clock), renderer, archiver)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")

	g := api.Group("/configurations")
	g.GET("", configs.List)
	g.POST("", configs.Create)
	g.GET("/:id", configs.GetByID)
	g.PATCH("/:id", configs.Update)
	g.DELETE("/:id", configs.Delete)

	g = api.Group("/devices")
	g.GET("", devices.List)
	g.POST("", devices.Create)
	g.GET("/count", devices.Count)
	g.GET("/:id", devices.GetByID)
	g.PATCH("/:id", devices.Update)
	g.DELETE("/:id", devices.Delete)
	g.GET("/:id/location", devices.LastLocation)

	g = api.Group("/actions")
	g.GET("", actions.List)
	g.POST("", actions.Create)
	g.GET("/:id", actions.GetByID)
	g.PATCH("/:id", actions.Update)
	g.DELETE("/:id", actions.Delete)

	g = api.Group("/enrolments")
	g.GET("", enrolments.List)
	g.POST("", enrolments.Create)
	g.GET("/:id", enrolments.GetByID)
	g.PATCH("/:id", enrolments.Update)
	g.DELETE("/:id", enrolments.Delete)

	g = api.Group("/payments")
	g.GET("", payments.List)
	g.POST("", payments.Create)
	g.GET("/:id", payments.GetByID)
	g.PATCH("/:id", payments.Update)
	g.DELETE("/:id", payments.Delete)

	api.GET("/analytics", analytics.Summary)
	api.GET("/analytics/export", analytics.Export)
	api.POST("/analytics/export/archive", analytics.Archive)

	env.engine = r
	return env
}

// do sends a request with an optional JSON body
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope, decoding data into out when given
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

func (e *testEnv) user(role string, store *uuid.UUID, created time.Time) *identity.User {
	u := &identity.User{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		DNI:        uuid.NewString()[:12],
		FirstName:  "Ana",
		LastName:   "Gomez",
		Email:      "ana@example.com",
		RoleID:     e.roles[role],
		StoreID:    store,
	}
	require.NoError(e.t, e.db.Omit("Role", "City").Create(u).Error)
	return u
}

func (e *testEnv) plan(buyer, vendor *identity.User, d *device.Device) *payment.Plan {
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
	require.NoError(e.t, e.db.Omit("User", "Vendor", "Device").Create(p).Error)
	return p
}

func (e *testEnv) device(imei string, enrolmentID *uuid.UUID, created time.Time) *device.Device {
	d := &device.Device{
		BaseEntity:  shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		EnrolmentID: enrolmentID,
		Name:        "Phone " + imei,
		IMEI:        imei,
		State:       device.StateActive,
	}
	require.NoError(e.t, e.db.Omit("Enrolment").Create(d).Error)
	return d
}

func at(value string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	return ts.UTC()
}
