package analytics

import (
	"time"

	domain "github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// settings are shared by the aggregator and the renderer
type settings struct {
	customerRole   string
	vendorRole     string
	location       *time.Location
	maxConcurrency int
	now            func() time.Time
	logger         *zap.Logger
	metrics        *telemetry.ReportMetrics
}

func defaultSettings() settings {
	return settings{
		customerRole:   identity.RoleCustomer,
		vendorRole:     identity.RoleVendor,
		location:       time.UTC,
		maxConcurrency: 1,
		now:            time.Now,
		logger:         zap.NewNop(),
	}
}

// Option configures an Aggregator or a Renderer
type Option func(*settings)

// WithRoles overrides the role names that identify customers and vendors
func WithRoles(customer, vendor string) Option {
	return func(s *settings) {
		if customer != "" {
			s.customerRole = customer
		}
		if vendor != "" {
			s.vendorRole = vendor
		}
	}
}

// WithLocation sets the location whose civil days bucket the records
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMaxConcurrency bounds how many days are queried at once
func WithMaxConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithClock replaces the clock used for the default end date
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records report activity on m
func WithMetrics(m *telemetry.ReportMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// resolve normalizes a request into a day range
func (s settings) resolve(req RangeRequest) domain.DateRange {
	end := s.now().In(s.location)
	if req.EndDate != nil {
		end = *req.EndDate
	}
	return domain.NewDateRange(req.StartDate, end, s.location)
}
