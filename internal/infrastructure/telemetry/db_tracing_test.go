package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedDevice struct {
	ID   uint   `gorm:"primaryKey"`
	IMEI string `gorm:"size:20;uniqueIndex"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedDevice{}))
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	return db, recorder
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, recorder := setupTracedDB(t, DBTracingConfig{Enabled: false})

	require.NoError(t, db.Create(&tracedDevice{IMEI: "1"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestRegisterDBTracing_RecordsStatements(t *testing.T) {
	db, recorder := setupTracedDB(t, DBTracingConfig{Enabled: true, DBName: "enrolment", SlowQueryThresh: time.Hour})

	ctx, root := otel.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedDevice{IMEI: "356938035643809"}).Error)
	var got tracedDevice
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	root.End()

	var dbSpans int
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == root.SpanContext().SpanID() {
			dbSpans++
		}
	}
	assert.GreaterOrEqual(t, dbSpans, 2)
}

func TestRegisterDBTracing_MarksErrors(t *testing.T) {
	db, recorder := setupTracedDB(t, DBTracingConfig{Enabled: true, DBName: "enrolment"})

	ctx, root := otel.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&tracedDevice{IMEI: "dup"}).Error)
	require.Error(t, db.WithContext(ctx).Create(&tracedDevice{IMEI: "dup"}).Error)
	root.End()

	var errored bool
	for _, s := range recorder.Ended() {
		if s.Status().Code == codes.Error {
			errored = true
		}
	}
	assert.True(t, errored)
}
