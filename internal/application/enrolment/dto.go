package enrolment

import (
	"time"

	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/google/uuid"
)

// CreateEnrolmentRequest links a customer to the vendor that enrolled them
type CreateEnrolmentRequest struct {
	UserID   uuid.UUID `json:"user_id" binding:"required"`
	VendorID uuid.UUID `json:"vendor_id" binding:"required"`
}

// UpdateEnrolmentRequest is a partial update
type UpdateEnrolmentRequest struct {
	UserID   *uuid.UUID `json:"user_id"`
	VendorID *uuid.UUID `json:"vendor_id"`
}

// EnrolmentListFilter represents filter options for the enrolment list
type EnrolmentListFilter struct {
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	VendorID string `form:"vendor_id" binding:"omitempty,uuid"`
	Skip     int    `form:"skip" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=1000"`
}

// EnrolmentResponse represents an enrolment in API responses
type EnrolmentResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToEnrolmentResponse converts a domain Enrolment to EnrolmentResponse
func ToEnrolmentResponse(e *enrolment.Enrolment) EnrolmentResponse {
	return EnrolmentResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		VendorID:  e.VendorID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
