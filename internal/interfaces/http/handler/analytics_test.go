package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	analyticsapp "github.com/enrolment/backend/internal/application/analytics"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memoryStorage keeps uploaded reports in a map
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://reports.local/" + key, time.Date(2024, 1, 3, 13, 0, 0, 0, time.UTC), nil
}

func seedAnalytics(env *testEnv) uuid.UUID {
	storeID := uuid.New()
	customer := env.user(identity.RoleCustomer, &storeID, at("2024-01-02 10:05:00"))
	vendor := env.user(identity.RoleVendor, &storeID, at("2024-01-03 09:30:00"))
	env.user(identity.RoleCustomer, nil, at("2024-01-03 11:00:00"))
	d := env.device("356938035643809", nil, at("2024-01-02 11:00:00"))
	plan := env.plan(customer, vendor, d)

	w := env.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"plan_id": plan.ID,
		"value":   "100.50",
		"method":  "cash",
		"state":   "approved",
		"date":    "2024-01-02T15:00:00Z",
	})
	require.Equal(env.t, http.StatusCreated, w.Code)
	return storeID
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	env := newTestEnv(t, nil)
	storeID := seedAnalytics(env)

	t.Run("reversed range is swapped", func(t *testing.T) {
		var resp analyticsapp.AnalyticsResponse
		w := env.do(http.MethodGet, "/api/v1/analytics?start_date=2024-01-03&end_date=2024-01-01", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)

		assert.Equal(t, "2024-01-01", resp.StartDate)
		assert.Equal(t, "2024-01-03", resp.EndDate)
		require.Len(t, resp.Daily, 3)
		assert.Equal(t, int64(2), resp.TotalCustomers)
		assert.Equal(t, int64(1), resp.TotalVendors)
		assert.Equal(t, int64(1), resp.TotalDevices)
		assert.InDelta(t, 100.5, resp.TotalPayments, 1e-9)
		assert.Equal(t, int64(1), resp.Daily[1].Customers)
		assert.InDelta(t, 100.5, resp.Daily[1].Payments, 1e-9)
	})

	t.Run("missing end date means today", func(t *testing.T) {
		var resp analyticsapp.AnalyticsResponse
		w := env.do(http.MethodGet, "/api/v1/analytics?start_date=2024-01-02", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)
		assert.Equal(t, "2024-01-03", resp.EndDate)
		assert.Len(t, resp.Daily, 2)
	})

	t.Run("store scope", func(t *testing.T) {
		var resp analyticsapp.AnalyticsResponse
		w := env.do(http.MethodGet, "/api/v1/analytics?start_date=2024-01-01&end_date=2024-01-03&store_id="+storeID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)
		assert.Equal(t, int64(1), resp.TotalCustomers)
	})

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing start", "", dto.ErrCodeValidation},
		{"bad start", "?start_date=01/02/2024", dto.ErrCodeInvalidInput},
		{"bad end", "?start_date=2024-01-01&end_date=2024-13-01", dto.ErrCodeInvalidInput},
		{"bad store", "?start_date=2024-01-01&store_id=abc", dto.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/v1/analytics"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode(t, w, nil).Error.Code)
		})
	}
}

func TestAnalyticsHandler_Export(t *testing.T) {
	env := newTestEnv(t, nil)
	seedAnalytics(env)

	w := env.do(http.MethodGet, "/api/v1/analytics/export?start_date=2024-01-01&end_date=2024-01-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, analyticsapp.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=analytics_2024-01-01_2024-01-03.xlsx", w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(analyticsapp.SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ANALYTICS REPORT", v)
}

func TestAnalyticsHandler_Archive(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodPost, "/api/v1/analytics/export/archive?start_date=2024-01-01", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeUnavailable, decode(t, w, nil).Error.Code)
	})

	t.Run("uploads and links", func(t *testing.T) {
		storage := &memoryStorage{}
		env := newTestEnv(t, storage)
		seedAnalytics(env)

		var resp analyticsapp.ArchiveResponse
		w := env.do(http.MethodPost, "/api/v1/analytics/export/archive?start_date=2024-01-01&end_date=2024-01-03", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		decode(t, w, &resp)

		assert.True(t, strings.HasPrefix(resp.Key, "reports/all/"))
		assert.Equal(t, "https://reports.local/"+resp.Key, resp.URL)
		require.Contains(t, storage.objects, resp.Key)
		assert.NotEmpty(t, storage.objects[resp.Key])
	})
}
