package device

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeviceService handles device registration and lookup
type DeviceService struct {
	deviceRepo   device.Repository
	locationRepo device.LocationRepository
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(deviceRepo device.Repository, locationRepo device.LocationRepository) *DeviceService {
	return &DeviceService{
		deviceRepo:   deviceRepo,
		locationRepo: locationRepo,
	}
}

// Create registers a new device
func (s *DeviceService) Create(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error) {
	d, err := device.NewDevice(req.IMEI, req.Name)
	if err != nil {
		return nil, err
	}
	d.EnrolmentID = req.EnrolmentID
	d.SerialNumber = req.SerialNumber
	d.Model = req.Model
	d.Brand = req.Brand
	d.ProductName = req.ProductName
	if req.State != "" {
		if err := d.SetState(device.State(req.State)); err != nil {
			return nil, err
		}
	}

	if err := s.deviceRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	response := ToDeviceResponse(d)
	return &response, nil
}

// GetByID retrieves a device by ID
func (s *DeviceService) GetByID(ctx context.Context, id uuid.UUID) (*DeviceResponse, error) {
	d, err := s.deviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDeviceResponse(d)
	return &response, nil
}

// List retrieves devices, optionally by enrolment or by owner
func (s *DeviceService) List(ctx context.Context, filter DeviceListFilter) ([]DeviceResponse, error) {
	domainFilter := device.Filter{Page: shared.Page{Skip: filter.Skip, Limit: filter.Limit}.Normalize()}
	var err error
	if domainFilter.EnrolmentID, err = parseOptionalID(filter.EnrolmentID, "enrolment_id"); err != nil {
		return nil, err
	}
	if domainFilter.UserID, err = parseOptionalID(filter.UserID, "user_id"); err != nil {
		return nil, err
	}

	devices, err := s.deviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToDeviceResponses(devices), nil
}

// Count returns the number of registered devices
func (s *DeviceService) Count(ctx context.Context) (*CountResponse, error) {
	n, err := s.deviceRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: n}, nil
}

// Update applies the non-nil fields of req
func (s *DeviceService) Update(ctx context.Context, id uuid.UUID, req UpdateDeviceRequest) (*DeviceResponse, error) {
	d, err := s.deviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.EnrolmentID != nil {
		d.EnrolmentID = req.EnrolmentID
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.ErrInvalidInput.WithMessage("name is required")
		}
		d.Name = *req.Name
	}
	if req.SerialNumber != nil {
		d.SerialNumber = *req.SerialNumber
	}
	if req.Model != nil {
		d.Model = *req.Model
	}
	if req.Brand != nil {
		d.Brand = *req.Brand
	}
	if req.ProductName != nil {
		d.ProductName = *req.ProductName
	}
	if req.State != nil {
		if err := d.SetState(device.State(*req.State)); err != nil {
			return nil, err
		}
	}
	d.Touch()

	if err := s.deviceRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	response := ToDeviceResponse(d)
	return &response, nil
}

// Delete removes a device
func (s *DeviceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deviceRepo.Delete(ctx, id)
}

// LastLocation returns the most recent position reported by a device
func (s *DeviceService) LastLocation(ctx context.Context, id uuid.UUID) (*LocationResponse, error) {
	if _, err := s.deviceRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	loc, err := s.locationRepo.FindLastByDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToLocationResponse(loc)
	return &response, nil
}

func parseOptionalID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage("invalid " + field)
	}
	return &id, nil
}
