package payment

import (
	"time"

	devicedomain "github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	PlanID    uuid.UUID       `json:"plan_id" binding:"required"`
	DeviceID  *uuid.UUID      `json:"device_id"`
	Value     decimal.Decimal `json:"value" binding:"required"`
	Method    string          `json:"method" binding:"required,max=50"`
	State     string          `json:"state" binding:"omitempty,oneof=pending approved rejected refunded"`
	Date      *time.Time      `json:"date"`
	Reference string          `json:"reference" binding:"max=100"`
}

// UpdatePaymentRequest is a partial update; nil fields are left untouched
type UpdatePaymentRequest struct {
	DeviceID  *uuid.UUID       `json:"device_id"`
	Value     *decimal.Decimal `json:"value"`
	Method    *string          `json:"method" binding:"omitempty,min=1,max=50"`
	State     *string          `json:"state" binding:"omitempty,oneof=pending approved rejected refunded"`
	Date      *time.Time       `json:"date"`
	Reference *string          `json:"reference" binding:"omitempty,max=100"`
}

// IsEmpty reports whether the request changes nothing
func (r UpdatePaymentRequest) IsEmpty() bool {
	return r.DeviceID == nil && r.Value == nil && r.Method == nil &&
		r.State == nil && r.Date == nil && r.Reference == nil
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	PlanID   string `form:"plan_id" binding:"omitempty,uuid"`
	DeviceID string `form:"device_id" binding:"omitempty,uuid"`
	StoreID  string `form:"store_id" binding:"omitempty,uuid"`
	Skip     int    `form:"skip" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=1000"`
}

// PartyResponse is the buyer or vendor of a plan
type PartyResponse struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	StoreID   *uuid.UUID `json:"store_id"`
}

// PlanResponse is the plan embedded in a payment
type PlanResponse struct {
	ID     uuid.UUID       `json:"id"`
	Value  decimal.Decimal `json:"value"`
	Quotas int             `json:"quotas"`
	User   *PartyResponse  `json:"user"`
	Vendor *PartyResponse  `json:"vendor"`
}

// DeviceSummary is the device embedded in a payment
type DeviceSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	IMEI  string    `json:"imei"`
	State string    `json:"state"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	PlanID    uuid.UUID       `json:"plan_id"`
	DeviceID  *uuid.UUID      `json:"device_id"`
	Value     decimal.Decimal `json:"value"`
	Method    string          `json:"method"`
	State     string          `json:"state"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
	Plan      *PlanResponse   `json:"plan,omitempty"`
	Device    *DeviceSummary  `json:"device,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toParty(u *identity.User) *PartyResponse {
	if u == nil {
		return nil
	}
	return &PartyResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.RoleName(),
		StoreID:   u.StoreID,
	}
}

func toDeviceSummary(d *devicedomain.Device) *DeviceSummary {
	if d == nil {
		return nil
	}
	return &DeviceSummary{ID: d.ID, Name: d.Name, IMEI: d.IMEI, State: string(d.State)}
}

// ToPaymentResponse converts a domain Payment, embedding whatever associations were loaded
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:        p.ID,
		PlanID:    p.PlanID,
		DeviceID:  p.DeviceID,
		Value:     p.Value,
		Method:    p.Method,
		State:     string(p.State),
		Date:      p.Date,
		Reference: p.Reference,
		Device:    toDeviceSummary(p.Device),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Plan != nil {
		resp.Plan = &PlanResponse{
			ID:     p.Plan.ID,
			Value:  p.Plan.Value,
			Quotas: p.Plan.Quotas,
			User:   toParty(p.Plan.User),
			Vendor: toParty(p.Plan.Vendor),
		}
	}
	return resp
}

// ToPaymentResponses converts a slice of domain Payments
func ToPaymentResponses(payments []payment.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
