package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{})
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.Nil(t, lp.Core(zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background(), zap.NewNop()))
}

func TestNewLoggerProvider_EnabledWithoutCollector(t *testing.T) {
	original := global.GetLoggerProvider()
	t.Cleanup(func() { global.SetLoggerProvider(original) })

	lp, err := NewLoggerProvider(context.Background(), LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "enrolment-test",
		Insecure:          true,
	})
	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())

	core := lp.Core(zapcore.WarnLevel)
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = lp.Shutdown(ctx, zap.NewNop())
}

func TestLevelFilterCore(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	log := zap.New(core).With(zap.String("component", "analytics"))
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept too")

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "analytics", recorded.All()[0].ContextMap()["component"])
}
