package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Report kinds used as metric labels
const (
	ReportKindSummary = "summary"
	ReportKindExport  = "export"
	ReportKindArchive = "archive"
)

// ReportMetrics records analytics report activity
type ReportMetrics struct {
	generatedTotal *Counter
	daysTotal      *Counter
	duration       *Histogram
}

// NewReportMetrics registers the report instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	generated, err := NewCounter(meter,
		"enrolment_report_generated_total",
		"Total number of analytics reports produced",
		"{reports}",
	)
	if err != nil {
		return nil, err
	}

	days, err := NewCounter(meter,
		"enrolment_report_days_total",
		"Total number of daily buckets computed",
		"{days}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "enrolment_report_duration_seconds",
		Description: "Time spent producing an analytics report",
		Unit:        "s",
		Boundaries:  ReportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		generatedTotal: generated,
		daysTotal:      days,
		duration:       duration,
	}, nil
}

// RecordReport records one finished report. A nil receiver is a no-op.
func (m *ReportMetrics) RecordReport(ctx context.Context, kind string, days int, storeScoped bool, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := []attribute.KeyValue{
		AttrReportKind.String(kind),
		AttrReportScoped.Bool(storeScoped),
		AttrReportResult.String(result),
	}
	m.generatedTotal.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
	if err == nil {
		m.daysTotal.Add(ctx, int64(days), AttrReportKind.String(kind))
	}
}

// ErrMeterNil is returned when a meter is required but missing
var ErrMeterNil = &MetricsError{Op: "NewReportMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failure while registering instruments
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
