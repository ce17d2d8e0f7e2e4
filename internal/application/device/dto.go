package device

import (
	"time"

	"github.com/enrolment/backend/internal/domain/device"
	"github.com/google/uuid"
)

// =============================================================================
// Device DTOs
// =============================================================================

// CreateDeviceRequest represents a request to register a device
type CreateDeviceRequest struct {
	EnrolmentID  *uuid.UUID `json:"enrolment_id"`
	Name         string     `json:"name" binding:"required,min=1,max=100"`
	IMEI         string     `json:"imei" binding:"required,min=14,max=20"`
	SerialNumber string     `json:"serial_number" binding:"max=100"`
	Model        string     `json:"model" binding:"max=100"`
	Brand        string     `json:"brand" binding:"max=100"`
	ProductName  string     `json:"product_name" binding:"max=100"`
	State        string     `json:"state" binding:"omitempty,oneof=pending active blocked released"`
}

// UpdateDeviceRequest is a partial update; nil fields are left untouched
type UpdateDeviceRequest struct {
	EnrolmentID  *uuid.UUID `json:"enrolment_id"`
	Name         *string    `json:"name" binding:"omitempty,min=1,max=100"`
	SerialNumber *string    `json:"serial_number" binding:"omitempty,max=100"`
	Model        *string    `json:"model" binding:"omitempty,max=100"`
	Brand        *string    `json:"brand" binding:"omitempty,max=100"`
	ProductName  *string    `json:"product_name" binding:"omitempty,max=100"`
	State        *string    `json:"state" binding:"omitempty,oneof=pending active blocked released"`
}

// DeviceListFilter represents filter options for the device list
type DeviceListFilter struct {
	EnrolmentID string `form:"enrolment_id" binding:"omitempty,uuid"`
	UserID      string `form:"user_id" binding:"omitempty,uuid"`
	Skip        int    `form:"skip" binding:"min=0"`
	Limit       int    `form:"limit" binding:"min=0,max=1000"`
}

// DeviceResponse represents a device in API responses
type DeviceResponse struct {
	ID           uuid.UUID  `json:"id"`
	EnrolmentID  *uuid.UUID `json:"enrolment_id"`
	Name         string     `json:"name"`
	IMEI         string     `json:"imei"`
	SerialNumber string     `json:"serial_number"`
	Model        string     `json:"model"`
	Brand        string     `json:"brand"`
	ProductName  string     `json:"product_name"`
	State        string     `json:"state"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CountResponse carries a record count
type CountResponse struct {
	Count int64 `json:"count"`
}

// LocationResponse is the last reported position of a device
type LocationResponse struct {
	DeviceID  uuid.UUID `json:"device_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDeviceResponse converts a domain Device to DeviceResponse
func ToDeviceResponse(d *device.Device) DeviceResponse {
	return DeviceResponse{
		ID:           d.ID,
		EnrolmentID:  d.EnrolmentID,
		Name:         d.Name,
		IMEI:         d.IMEI,
		SerialNumber: d.SerialNumber,
		Model:        d.Model,
		Brand:        d.Brand,
		ProductName:  d.ProductName,
		State:        string(d.State),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDeviceResponses converts a slice of domain Devices
func ToDeviceResponses(devices []device.Device) []DeviceResponse {
	responses := make([]DeviceResponse, len(devices))
	for i := range devices {
		responses[i] = ToDeviceResponse(&devices[i])
	}
	return responses
}

// ToLocationResponse converts a domain Location
func ToLocationResponse(l *device.Location) LocationResponse {
	return LocationResponse{
		DeviceID:  l.DeviceID,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		CreatedAt: l.CreatedAt,
	}
}

// =============================================================================
// Action DTOs
// =============================================================================

// CreateActionRequest represents a request to issue a command to a device
type CreateActionRequest struct {
	DeviceID    uuid.UUID `json:"device_id" binding:"required"`
	AppliedByID uuid.UUID `json:"applied_by_id" binding:"required"`
	Action      string    `json:"action" binding:"required,oneof=block locate refresh notify unenroll unblock exception"`
	State       string    `json:"state" binding:"omitempty,oneof=applied pending failed"`
	Description string    `json:"description" binding:"max=1000"`
}

// UpdateActionRequest updates the outcome of an action
type UpdateActionRequest struct {
	State       *string `json:"state" binding:"omitempty,oneof=applied pending failed"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// ActionListFilter represents filter options for the action list
type ActionListFilter struct {
	DeviceID string `form:"device_id" binding:"omitempty,uuid"`
	Skip     int    `form:"skip" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=1000"`
}

// ActionResponse represents an action in API responses
type ActionResponse struct {
	ID          uuid.UUID `json:"id"`
	DeviceID    uuid.UUID `json:"device_id"`
	State       string    `json:"state"`
	AppliedByID uuid.UUID `json:"applied_by_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToActionResponse converts a domain Action to ActionResponse
func ToActionResponse(a *device.Action) ActionResponse {
	return ActionResponse{
		ID:          a.ID,
		DeviceID:    a.DeviceID,
		State:       string(a.State),
		AppliedByID: a.AppliedByID,
		Action:      string(a.Action),
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToActionResponses converts a slice of domain Actions
func ToActionResponses(actions []device.Action) []ActionResponse {
	responses := make([]ActionResponse, len(actions))
	for i := range actions {
		responses[i] = ToActionResponse(&actions[i])
	}
	return responses
}
