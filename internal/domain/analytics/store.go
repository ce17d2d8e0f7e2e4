package analytics

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// RecordStore answers validated queries against the live records.
// Detail finders eagerly load the associations needed for rendering:
// users with role and city, payments with their plan.
type RecordStore interface {
	Count(ctx context.Context, q Query) (int64, error)
	SumPaymentValues(ctx context.Context, q Query) (decimal.Decimal, error)
	FindUsers(ctx context.Context, q Query) ([]identity.User, error)
	FindDevices(ctx context.Context, q Query) ([]device.Device, error)
	FindPayments(ctx context.Context, q Query) ([]payment.Payment, error)
}
