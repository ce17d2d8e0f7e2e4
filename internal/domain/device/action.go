package device

import (
	"context"

	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionState tracks whether a remote command reached the device
type ActionState string

const (
	ActionStateApplied ActionState = "applied"
	ActionStatePending ActionState = "pending"
	ActionStateFailed  ActionState = "failed"
)

// IsValid reports whether s is a known action state
func (s ActionState) IsValid() bool {
	switch s {
	case ActionStateApplied, ActionStatePending, ActionStateFailed:
		return true
	}
	return false
}

// ActionType is the remote command sent to a device
type ActionType string

const (
	ActionBlock     ActionType = "block"
	ActionLocate    ActionType = "locate"
	ActionRefresh   ActionType = "refresh"
	ActionNotify    ActionType = "notify"
	ActionUnenroll  ActionType = "unenroll"
	ActionUnblock   ActionType = "unblock"
	ActionException ActionType = "exception"
)

// IsValid reports whether t is a known action type
func (t ActionType) IsValid() bool {
	switch t {
	case ActionBlock, ActionLocate, ActionRefresh, ActionNotify, ActionUnenroll, ActionUnblock, ActionException:
		return true
	}
	return false
}

// Action is a command issued against a device by an operator
type Action struct {
	shared.BaseEntity
	DeviceID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	State       ActionState `gorm:"type:varchar(20);not null;default:'pending'"`
	AppliedByID uuid.UUID   `gorm:"type:uuid;not null"`
	Action      ActionType  `gorm:"type:varchar(20);not null"`
	Description string      `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Action) TableName() string {
	return "actions"
}

// NewAction creates a pending action
func NewAction(deviceID, appliedByID uuid.UUID, action ActionType, description string) (*Action, error) {
	if deviceID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("device_id is required")
	}
	if appliedByID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("applied_by_id is required")
	}
	if !action.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("unknown action: " + string(action))
	}
	return &Action{
		BaseEntity:  shared.NewBaseEntity(),
		DeviceID:    deviceID,
		State:       ActionStatePending,
		AppliedByID: appliedByID,
		Action:      action,
		Description: description,
	}, nil
}

// SetState records the outcome of the command
func (a *Action) SetState(s ActionState) error {
	if !s.IsValid() {
		return shared.ErrInvalidInput.WithMessage("unknown action state: " + string(s))
	}
	a.State = s
	a.Touch()
	return nil
}

// ActionRepository persists actions
type ActionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Action, error)
	FindAll(ctx context.Context, deviceID *uuid.UUID, page shared.Page) ([]Action, error)
	Save(ctx context.Context, a *Action) error
	Delete(ctx context.Context, id uuid.UUID) error
}
