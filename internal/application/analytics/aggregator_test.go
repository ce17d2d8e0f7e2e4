package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	storeA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	storeB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// seedStore builds a small two-store data set spanning 2024-01-01..2024-01-04
func seedStore() *memoryStore {
	s := &memoryStore{}
	c1 := s.addUser(identity.RoleCustomer, ptr(storeA), at("2024-01-02", "10:00:00"))
	s.addUser(identity.RoleVendor, ptr(storeA), at("2024-01-03", "09:30:00"))
	c2 := s.addUser(identity.RoleCustomer, ptr(storeB), at("2024-01-02", "23:59:59"))
	s.addUser(identity.RoleCustomer, ptr(storeB), at("2024-01-04", "00:00:00"))
	s.addUser("customer", ptr(storeA), at("2024-01-02", "12:00:00"))

	s.addDevice(c1, "356938035643809", at("2024-01-02", "11:00:00"))
	s.addDevice(c2, "356938035643817", at("2024-01-03", "08:00:00"))

	s.addPayment(c1, "100.00", at("2024-01-02", "15:00:00"))
	s.addPayment(c2, "25.25", at("2024-01-03", "16:00:00"))
	s.addPayment(c2, "0.10", at("2024-01-03", "17:00:00"))
	return s
}

func TestAggregator_Aggregate_SingleStoreExample(t *testing.T) {
	s := &memoryStore{}
	c := s.addUser(identity.RoleCustomer, ptr(storeA), at("2024-01-02", "10:00:00"))
	s.addUser(identity.RoleVendor, ptr(storeA), at("2024-01-03", "10:00:00"))
	s.addPayment(c, "100.00", at("2024-01-02", "12:00:00"))

	agg := NewAggregator(s)
	resp, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2024-01-01"),
		EndDate:   ptr(date("2024-01-03")),
		StoreID:   ptr(storeA),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Equal(t, "2024-01-03", resp.EndDate)
	assert.Equal(t, int64(1), resp.TotalCustomers)
	assert.Equal(t, int64(1), resp.TotalVendors)
	assert.Equal(t, int64(0), resp.TotalDevices)
	assert.Equal(t, 100.0, resp.TotalPayments)
	assert.Equal(t, []DailyRecord{
		{Date: "2024-01-01"},
		{Date: "2024-01-02", Customers: 1, Payments: 100},
		{Date: "2024-01-03", Vendors: 1},
	}, resp.Daily)
}

func TestAggregator_Aggregate_AllStores(t *testing.T) {
	agg := NewAggregator(seedStore())

	resp, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2024-01-01"),
		EndDate:   ptr(date("2024-01-04")),
	})
	require.NoError(t, err)

	require.Len(t, resp.Daily, 4)
	assert.Equal(t, int64(2), resp.Daily[1].Customers, "lowercase role must not count")
	assert.Equal(t, int64(1), resp.Daily[3].Customers, "midnight belongs to the new day")
	assert.Equal(t, int64(3), resp.TotalCustomers)
	assert.Equal(t, int64(1), resp.TotalVendors)
	assert.Equal(t, int64(2), resp.TotalDevices)
	assert.Equal(t, 25.35, resp.Daily[2].Payments)
	assert.Equal(t, 125.35, resp.TotalPayments)
}

func TestAggregator_Aggregate_ReversedRangeIsSwapped(t *testing.T) {
	agg := NewAggregator(seedStore())
	ctx := context.Background()

	forward, err := agg.Aggregate(ctx, RangeRequest{StartDate: date("2024-01-01"), EndDate: ptr(date("2024-01-04"))})
	require.NoError(t, err)
	reversed, err := agg.Aggregate(ctx, RangeRequest{StartDate: date("2024-01-04"), EndDate: ptr(date("2024-01-01"))})
	require.NoError(t, err)

	assert.Equal(t, forward, reversed)
}

func TestAggregator_Aggregate_TotalsAreSumOfDays(t *testing.T) {
	agg := NewAggregator(seedStore())

	resp, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2023-12-30"),
		EndDate:   ptr(date("2024-01-06")),
	})
	require.NoError(t, err)

	var customers, vendors, devices int64
	payments := decimal.Zero
	for i, d := range resp.Daily {
		if i > 0 {
			assert.Less(t, resp.Daily[i-1].Date, d.Date, "ascending, no gaps")
		}
		customers += d.Customers
		vendors += d.Vendors
		devices += d.Devices
		payments = payments.Add(decimal.NewFromFloat(d.Payments))
	}
	assert.Len(t, resp.Daily, 8)
	assert.Equal(t, resp.TotalCustomers, customers)
	assert.Equal(t, resp.TotalVendors, vendors)
	assert.Equal(t, resp.TotalDevices, devices)
	assert.Equal(t, resp.TotalPayments, payments.InexactFloat64())
}

func TestAggregator_Aggregate_StoreScoping(t *testing.T) {
	agg := NewAggregator(seedStore())
	req := RangeRequest{StartDate: date("2024-01-01"), EndDate: ptr(date("2024-01-04"))}

	req.StoreID = ptr(storeB)
	resp, err := agg.Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCustomers)
	assert.Equal(t, int64(0), resp.TotalVendors)
	assert.Equal(t, int64(1), resp.TotalDevices)
	assert.Equal(t, 25.35, resp.TotalPayments)

	req.StoreID = ptr(uuid.New())
	resp, err = agg.Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Daily, 4)
	assert.Zero(t, resp.TotalCustomers)
	assert.Zero(t, resp.TotalPayments)
}

func TestAggregator_Aggregate_SingleDay(t *testing.T) {
	agg := NewAggregator(seedStore())

	resp, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: at("2024-01-02", "18:45:00"),
		EndDate:   ptr(at("2024-01-02", "01:00:00")),
	})
	require.NoError(t, err)
	require.Len(t, resp.Daily, 1)
	assert.Equal(t, "2024-01-02", resp.Daily[0].Date)
	assert.Equal(t, int64(2), resp.Daily[0].Customers)
}

func TestAggregator_Aggregate_DefaultEndDateUsesClock(t *testing.T) {
	clock := func() time.Time { return at("2024-01-03", "22:00:00") }
	agg := NewAggregator(seedStore(), WithClock(clock))

	resp, err := agg.Aggregate(context.Background(), RangeRequest{StartDate: date("2024-01-01")})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", resp.EndDate)
	assert.Len(t, resp.Daily, 3)
}

func TestAggregator_Aggregate_Idempotent(t *testing.T) {
	agg := NewAggregator(seedStore())
	req := RangeRequest{StartDate: date("2024-01-01"), EndDate: ptr(date("2024-01-04"))}

	first, err := agg.Aggregate(context.Background(), req)
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregator_Aggregate_ConcurrentMatchesSequential(t *testing.T) {
	store := seedStore()
	req := RangeRequest{StartDate: date("2023-12-01"), EndDate: ptr(date("2024-02-01"))}

	sequential, err := NewAggregator(store).Aggregate(context.Background(), req)
	require.NoError(t, err)
	concurrent, err := NewAggregator(store, WithMaxConcurrency(8)).Aggregate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
}

func TestAggregator_Aggregate_CustomRoles(t *testing.T) {
	agg := NewAggregator(seedStore(), WithRoles("customer", ""))

	resp, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2024-01-01"),
		EndDate:   ptr(date("2024-01-04")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCustomers)
	assert.Equal(t, int64(1), resp.TotalVendors)
}

func TestAggregator_Aggregate_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection reset")

	for _, workers := range []int{1, 4} {
		store := new(MockRecordStore)
		store.On("Count", mock.Anything, mock.Anything).Return(int64(0), storeErr)

		agg := NewAggregator(store, WithMaxConcurrency(workers))
		resp, err := agg.Aggregate(context.Background(), RangeRequest{
			StartDate: date("2024-01-01"),
			EndDate:   ptr(date("2024-01-05")),
		})

		assert.Nil(t, resp)
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), "count customers on 2024-01-0")
	}
}

func TestAggregator_Aggregate_SumErrorPropagates(t *testing.T) {
	storeErr := errors.New("statement timeout")
	store := new(MockRecordStore)
	store.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	store.On("SumPaymentValues", mock.Anything, mock.Anything).Return(decimal.Zero, storeErr)

	agg := NewAggregator(store)
	_, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2024-01-01"),
		EndDate:   ptr(date("2024-01-01")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, "sum payments on 2024-01-01: statement timeout", err.Error())
	store.AssertNumberOfCalls(t, "Count", 3)
}

func TestAggregator_Aggregate_LogsSummary(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	agg := NewAggregator(seedStore(), WithLogger(zap.New(core)))

	_, err := agg.Aggregate(context.Background(), RangeRequest{
		StartDate: date("2024-01-01"),
		EndDate:   ptr(date("2024-01-02")),
	})
	require.NoError(t, err)

	logs := recorded.FilterMessage("Analytics range aggregated").All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "2024-01-01", fields["start_date"])
	assert.Equal(t, int64(2), fields["days"])
	assert.Equal(t, false, fields["store_scoped"])
}
