package device

import (
	"context"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionService records commands issued to devices
type ActionService struct {
	actionRepo device.ActionRepository
	deviceRepo device.Repository
}

// NewActionService creates a new ActionService
func NewActionService(actionRepo device.ActionRepository, deviceRepo device.Repository) *ActionService {
	return &ActionService{
		actionRepo: actionRepo,
		deviceRepo: deviceRepo,
	}
}

// Create records a new action against an existing device
func (s *ActionService) Create(ctx context.Context, req CreateActionRequest) (*ActionResponse, error) {
	if _, err := s.deviceRepo.FindByID(ctx, req.DeviceID); err != nil {
		return nil, err
	}

	a, err := device.NewAction(req.DeviceID, req.AppliedByID, device.ActionType(req.Action), req.Description)
	if err != nil {
		return nil, err
	}
	if req.State != "" {
		if err := a.SetState(device.ActionState(req.State)); err != nil {
			return nil, err
		}
	}

	if err := s.actionRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	response := ToActionResponse(a)
	return &response, nil
}

// GetByID retrieves an action by ID
func (s *ActionService) GetByID(ctx context.Context, id uuid.UUID) (*ActionResponse, error) {
	a, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToActionResponse(a)
	return &response, nil
}

// List retrieves actions, optionally for one device
func (s *ActionService) List(ctx context.Context, filter ActionListFilter) ([]ActionResponse, error) {
	deviceID, err := parseOptionalID(filter.DeviceID, "device_id")
	if err != nil {
		return nil, err
	}
	actions, err := s.actionRepo.FindAll(ctx, deviceID, shared.Page{Skip: filter.Skip, Limit: filter.Limit}.Normalize())
	if err != nil {
		return nil, err
	}
	return ToActionResponses(actions), nil
}

// Update changes the state and description of an action
func (s *ActionService) Update(ctx context.Context, id uuid.UUID, req UpdateActionRequest) (*ActionResponse, error) {
	a, err := s.actionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.State != nil {
		if err := a.SetState(device.ActionState(*req.State)); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		a.Description = *req.Description
		a.Touch()
	}

	if err := s.actionRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	response := ToActionResponse(a)
	return &response, nil
}

// Delete removes an action
func (s *ActionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.actionRepo.Delete(ctx, id)
}
