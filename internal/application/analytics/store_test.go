package analytics

import (
	"context"
	"time"

	domain "github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memoryStore evaluates queries against in-memory records
type memoryStore struct {
	users    []*identity.User
	devices  []device.Device
	payments []payment.Payment
}

func (s *memoryStore) addUser(role string, store *uuid.UUID, created time.Time) *identity.User {
	u := &identity.User{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: created},
		DNI:        uuid.NewString()[:8],
		FirstName:  "Ana",
		LastName:   "Ruiz",
		Email:      "ana@example.com",
		Prefix:     "+57",
		Phone:      "3001234567",
		Role:       &identity.Role{ID: uuid.New(), Name: role},
		StoreID:    store,
	}
	s.users = append(s.users, u)
	return u
}

func (s *memoryStore) addDevice(owner *identity.User, imei string, created time.Time) {
	s.devices = append(s.devices, device.Device{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: created},
		Enrolment:  &enrolment.Enrolment{UserID: owner.ID, User: owner},
		Name:       "Phone " + imei,
		IMEI:       imei,
		Brand:      "Acme",
		Model:      "A1",
		State:      device.StateActive,
	})
}

func (s *memoryStore) addPayment(buyer *identity.User, value string, date time.Time) {
	s.payments = append(s.payments, payment.Payment{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: date},
		Plan:       &payment.Plan{UserID: buyer.ID, User: buyer},
		Value:      decimal.RequireFromString(value),
		Method:     "cash",
		State:      payment.StateApproved,
		Date:       date,
		Reference:  "REF-" + value,
	})
}

func (s *memoryStore) Count(_ context.Context, q domain.Query) (int64, error) {
	var n int64
	switch q.Entity() {
	case domain.EntityUser:
		for _, u := range s.users {
			if matches(q, userField(u)) {
				n++
			}
		}
	case domain.EntityDevice:
		for i := range s.devices {
			if matches(q, deviceField(&s.devices[i])) {
				n++
			}
		}
	case domain.EntityPayment:
		for i := range s.payments {
			if matches(q, paymentField(&s.payments[i])) {
				n++
			}
		}
	}
	return n, nil
}

func (s *memoryStore) SumPaymentValues(_ context.Context, q domain.Query) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range s.payments {
		if matches(q, paymentField(&s.payments[i])) {
			sum = sum.Add(s.payments[i].Value)
		}
	}
	return sum, nil
}

func (s *memoryStore) FindUsers(_ context.Context, q domain.Query) ([]identity.User, error) {
	var out []identity.User
	for _, u := range s.users {
		if matches(q, userField(u)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memoryStore) FindDevices(_ context.Context, q domain.Query) ([]device.Device, error) {
	var out []device.Device
	for i := range s.devices {
		if matches(q, deviceField(&s.devices[i])) {
			out = append(out, s.devices[i])
		}
	}
	return out, nil
}

func (s *memoryStore) FindPayments(_ context.Context, q domain.Query) ([]payment.Payment, error) {
	var out []payment.Payment
	for i := range s.payments {
		if matches(q, paymentField(&s.payments[i])) {
			out = append(out, s.payments[i])
		}
	}
	return out, nil
}

func storeOf(u *identity.User) any {
	if u == nil || u.StoreID == nil {
		return nil
	}
	return *u.StoreID
}

func userField(u *identity.User) func(domain.Field) any {
	return func(f domain.Field) any {
		switch f {
		case domain.FieldRoleName:
			return u.RoleName()
		case domain.FieldStoreID:
			return storeOf(u)
		case domain.FieldCreatedAt:
			return u.CreatedAt
		}
		return nil
	}
}

func deviceField(d *device.Device) func(domain.Field) any {
	return func(f domain.Field) any {
		switch f {
		case domain.FieldCreatedAt:
			return d.CreatedAt
		case domain.FieldEnrolmentUserStoreID:
			if d.Enrolment == nil {
				return nil
			}
			return storeOf(d.Enrolment.User)
		}
		return nil
	}
}

func paymentField(p *payment.Payment) func(domain.Field) any {
	return func(f domain.Field) any {
		switch f {
		case domain.FieldDate:
			return p.Date
		case domain.FieldPlanUserStoreID:
			if p.Plan == nil {
				return nil
			}
			return storeOf(p.Plan.User)
		}
		return nil
	}
}

func matches(q domain.Query, get func(domain.Field) any) bool {
	for _, p := range q.Predicates() {
		v := get(p.Field)
		switch p.Op {
		case domain.OpEq:
			if v != p.Value {
				return false
			}
		case domain.OpGte:
			t, ok := v.(time.Time)
			if !ok || t.Before(p.Value.(time.Time)) {
				return false
			}
		case domain.OpLte:
			t, ok := v.(time.Time)
			if !ok || t.After(p.Value.(time.Time)) {
				return false
			}
		}
	}
	return true
}

// MockRecordStore is a mock implementation of domain.RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Count(ctx context.Context, q domain.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordStore) SumPaymentValues(ctx context.Context, q domain.Query) (decimal.Decimal, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRecordStore) FindUsers(ctx context.Context, q domain.Query) ([]identity.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockRecordStore) FindDevices(ctx context.Context, q domain.Query) ([]device.Device, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]device.Device), args.Error(1)
}

func (m *MockRecordStore) FindPayments(ctx context.Context, q domain.Query) ([]payment.Payment, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func at(day, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func date(day string) time.Time {
	return at(day, "00:00:00")
}

func ptr[T any](v T) *T {
	return &v
}
