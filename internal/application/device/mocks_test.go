package device

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDeviceRepository is a mock implementation of device.Repository
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*device.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindAll(ctx context.Context, filter device.Filter) ([]device.Device, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]device.Device), args.Error(1)
}

func (m *MockDeviceRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) Save(ctx context.Context, d *device.Device) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLocationRepository is a mock implementation of device.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindLastByDevice(ctx context.Context, deviceID uuid.UUID) (*device.Location, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Location), args.Error(1)
}

// MockActionRepository is a mock implementation of device.ActionRepository
type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) FindByID(ctx context.Context, id uuid.UUID) (*device.Action, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Action), args.Error(1)
}

func (m *MockActionRepository) FindAll(ctx context.Context, deviceID *uuid.UUID, page shared.Page) ([]device.Action, error) {
	args := m.Called(ctx, deviceID, page)
	return args.Get(0).([]device.Action), args.Error(1)
}

func (m *MockActionRepository) Save(ctx context.Context, a *device.Action) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
