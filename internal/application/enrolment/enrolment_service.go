package enrolment

import (
	"context"

	"github.com/enrolment/backend/internal/domain/enrolment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EnrolmentService handles enrolments
type EnrolmentService struct {
	repo enrolment.Repository
}

// NewEnrolmentService creates a new EnrolmentService
func NewEnrolmentService(repo enrolment.Repository) *EnrolmentService {
	return &EnrolmentService{repo: repo}
}

// Create creates a new enrolment
func (s *EnrolmentService) Create(ctx context.Context, req CreateEnrolmentRequest) (*EnrolmentResponse, error) {
	e, err := enrolment.NewEnrolment(req.UserID, req.VendorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	response := ToEnrolmentResponse(e)
	return &response, nil
}

// GetByID retrieves an enrolment by ID
func (s *EnrolmentService) GetByID(ctx context.Context, id uuid.UUID) (*EnrolmentResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToEnrolmentResponse(e)
	return &response, nil
}

// List retrieves enrolments matching filter
func (s *EnrolmentService) List(ctx context.Context, filter EnrolmentListFilter) ([]EnrolmentResponse, error) {
	domainFilter := enrolment.Filter{Page: shared.Page{Skip: filter.Skip, Limit: filter.Limit}.Normalize()}
	var err error
	if domainFilter.UserID, err = parseOptionalID(filter.UserID, "user_id"); err != nil {
		return nil, err
	}
	if domainFilter.VendorID, err = parseOptionalID(filter.VendorID, "vendor_id"); err != nil {
		return nil, err
	}

	enrolments, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]EnrolmentResponse, len(enrolments))
	for i := range enrolments {
		responses[i] = ToEnrolmentResponse(&enrolments[i])
	}
	return responses, nil
}

// Update re-assigns the customer or vendor of an enrolment
func (s *EnrolmentService) Update(ctx context.Context, id uuid.UUID, req UpdateEnrolmentRequest) (*EnrolmentResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if *req.UserID == uuid.Nil {
			return nil, shared.ErrInvalidInput.WithMessage("user_id is required")
		}
		e.UserID = *req.UserID
		e.User = nil
	}
	if req.VendorID != nil {
		if *req.VendorID == uuid.Nil {
			return nil, shared.ErrInvalidInput.WithMessage("vendor_id is required")
		}
		e.VendorID = *req.VendorID
		e.Vendor = nil
	}
	e.Touch()

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	response := ToEnrolmentResponse(e)
	return &response, nil
}

// Delete removes an enrolment
func (s *EnrolmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
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
