package payment

import (
	"context"
	"time"

	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentService handles payment records
type PaymentService struct {
	repo payment.Repository
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo payment.Repository) *PaymentService {
	return &PaymentService{repo: repo}
}

// Create records a payment and returns it with its plan and device loaded
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	p, err := payment.NewPayment(req.PlanID, req.Value, req.Method, date)
	if err != nil {
		return nil, err
	}
	p.DeviceID = req.DeviceID
	p.Reference = req.Reference
	if req.State != "" {
		if err := p.SetState(payment.State(req.State)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

// GetByID retrieves a payment with its device and plan
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// List retrieves a page of payments, newest first
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, error) {
	domainFilter := payment.Filter{Page: shared.Page{Skip: filter.Skip, Limit: filter.Limit}.Normalize()}
	var err error
	if domainFilter.PlanID, err = parseOptionalID(filter.PlanID, "plan_id"); err != nil {
		return nil, err
	}
	if domainFilter.DeviceID, err = parseOptionalID(filter.DeviceID, "device_id"); err != nil {
		return nil, err
	}
	if domainFilter.StoreID, err = parseOptionalID(filter.StoreID, "store_id"); err != nil {
		return nil, err
	}

	payments, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// Update applies the non-nil fields of req. An empty request returns the
// stored payment without writing.
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		response := ToPaymentResponse(p)
		return &response, nil
	}

	if req.DeviceID != nil {
		p.DeviceID = req.DeviceID
		p.Device = nil
	}
	if req.Value != nil {
		if err := p.SetValue(*req.Value); err != nil {
			return nil, err
		}
	}
	if req.Method != nil {
		p.Method = *req.Method
	}
	if req.State != nil {
		if err := p.SetState(payment.State(*req.State)); err != nil {
			return nil, err
		}
	}
	if req.Date != nil {
		p.Date = *req.Date
	}
	if req.Reference != nil {
		p.Reference = *req.Reference
	}
	p.Touch()

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
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
