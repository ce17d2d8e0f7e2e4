package analytics

import (
	"context"
	"fmt"
	"time"

	domain "github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator computes daily customer, vendor, device and payment figures
// over a date range
type Aggregator struct {
	store domain.RecordStore
	settings
}

// NewAggregator creates a new Aggregator reading from store
func NewAggregator(store domain.RecordStore, opts ...Option) *Aggregator {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Aggregator{store: store, settings: s}
}

// dayFigures holds the raw results for one day
type dayFigures struct {
	customers int64
	vendors   int64
	devices   int64
	payments  decimal.Decimal
}

// Aggregate returns one record per day of the range plus grand totals.
// Any record store failure aborts the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, req RangeRequest) (resp *AnalyticsResponse, err error) {
	rng := a.resolve(req)
	days := rng.Each()

	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "aggregate",
		telemetry.WithAttribute(telemetry.SpanAttrStartDate, rng.Start.Format(domain.DayLayout)),
		telemetry.WithAttribute(telemetry.SpanAttrEndDate, rng.End.Format(domain.DayLayout)),
		telemetry.WithAttribute(telemetry.SpanAttrDays, len(days)),
	)
	defer span.End()
	if req.StoreID != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrStoreID, req.StoreID.String())
	}

	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		a.metrics.RecordReport(ctx, telemetry.ReportKindSummary, len(days), req.StoreID != nil, time.Since(started), err)
	}()

	figures := make([]dayFigures, len(days))
	if err := a.collect(ctx, days, req.StoreID, figures); err != nil {
		return nil, err
	}

	resp = &AnalyticsResponse{
		StartDate: rng.Start.Format(domain.DayLayout),
		EndDate:   rng.End.Format(domain.DayLayout),
		Daily:     make([]DailyRecord, len(days)),
	}
	totalPayments := decimal.Zero
	for i, d := range days {
		f := figures[i]
		resp.Daily[i] = DailyRecord{
			Date:      d.Format(domain.DayLayout),
			Customers: f.customers,
			Vendors:   f.vendors,
			Devices:   f.devices,
			Payments:  f.payments.InexactFloat64(),
		}
		resp.TotalCustomers += f.customers
		resp.TotalVendors += f.vendors
		resp.TotalDevices += f.devices
		totalPayments = totalPayments.Add(f.payments)
	}
	resp.TotalPayments = totalPayments.InexactFloat64()

	a.logger.Debug("Analytics range aggregated",
		zap.String("start_date", resp.StartDate),
		zap.String("end_date", resp.EndDate),
		zap.Int("days", len(days)),
		zap.Bool("store_scoped", req.StoreID != nil),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp, nil
}

// collect fills figures[i] for days[i], sequentially or with bounded fan-out
func (a *Aggregator) collect(ctx context.Context, days []time.Time, storeID *uuid.UUID, figures []dayFigures) error {
	if a.maxConcurrency <= 1 {
		for i, d := range days {
			f, err := a.day(ctx, d, storeID)
			if err != nil {
				return err
			}
			figures[i] = f
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)
	for i, d := range days {
		g.Go(func() error {
			f, err := a.day(gctx, d, storeID)
			if err != nil {
				return err
			}
			figures[i] = f
			return nil
		})
	}
	return g.Wait()
}

// day runs the four bucket queries for the day starting at d
func (a *Aggregator) day(ctx context.Context, d time.Time, storeID *uuid.UUID) (dayFigures, error) {
	from, to := domain.DayBounds(d)
	var f dayFigures

	customers, err := buildUserQuery(a.customerRole, from, to, storeID)
	if err != nil {
		return f, err
	}
	vendors, err := buildUserQuery(a.vendorRole, from, to, storeID)
	if err != nil {
		return f, err
	}
	devices, err := domain.NewQuery(domain.EntityDevice).InWindow(from, to).InStore(storeID).Build()
	if err != nil {
		return f, err
	}
	payments, err := domain.NewQuery(domain.EntityPayment).InWindow(from, to).InStore(storeID).Build()
	if err != nil {
		return f, err
	}

	label := d.Format(domain.DayLayout)
	if f.customers, err = a.store.Count(ctx, customers); err != nil {
		return f, fmt.Errorf("count customers on %s: %w", label, err)
	}
	if f.vendors, err = a.store.Count(ctx, vendors); err != nil {
		return f, fmt.Errorf("count vendors on %s: %w", label, err)
	}
	if f.devices, err = a.store.Count(ctx, devices); err != nil {
		return f, fmt.Errorf("count devices on %s: %w", label, err)
	}
	if f.payments, err = a.store.SumPaymentValues(ctx, payments); err != nil {
		return f, fmt.Errorf("sum payments on %s: %w", label, err)
	}
	return f, nil
}

// buildUserQuery selects users of one role created in [from, to]
func buildUserQuery(role string, from, to time.Time, storeID *uuid.UUID) (domain.Query, error) {
	return domain.NewQuery(domain.EntityUser).
		Where(domain.FieldRoleName, domain.OpEq, role).
		InWindow(from, to).
		InStore(storeID).
		Build()
}
