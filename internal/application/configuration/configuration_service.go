package configuration

import (
	"context"
	"strings"

	"github.com/enrolment/backend/internal/domain/configuration"
	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConfigurationService handles configuration entries
type ConfigurationService struct {
	repo configuration.Repository
}

// NewConfigurationService creates a new ConfigurationService
func NewConfigurationService(repo configuration.Repository) *ConfigurationService {
	return &ConfigurationService{repo: repo}
}

// Create creates a new configuration
func (s *ConfigurationService) Create(ctx context.Context, req CreateConfigurationRequest) (*ConfigurationResponse, error) {
	c, err := configuration.NewConfiguration(req.Key, req.Value, req.StoreID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToConfigurationResponse(c)
	return &response, nil
}

// GetByID retrieves a configuration by ID
func (s *ConfigurationService) GetByID(ctx context.Context, id uuid.UUID) (*ConfigurationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToConfigurationResponse(c)
	return &response, nil
}

// List retrieves configurations matching filter
func (s *ConfigurationService) List(ctx context.Context, filter ConfigurationListFilter) ([]ConfigurationResponse, error) {
	domainFilter := configuration.Filter{Key: strings.TrimSpace(filter.Key)}
	if filter.StoreID != "" {
		storeID, err := uuid.Parse(filter.StoreID)
		if err != nil {
			return nil, shared.ErrInvalidInput.WithMessage("invalid store_id")
		}
		domainFilter.StoreID = &storeID
	}

	configs, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToConfigurationResponses(configs), nil
}

// Update applies the non-nil fields of req
func (s *ConfigurationService) Update(ctx context.Context, id uuid.UUID, req UpdateConfigurationRequest) (*ConfigurationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Key != nil {
		key := strings.TrimSpace(*req.Key)
		if key == "" {
			return nil, shared.ErrInvalidInput.WithMessage("key is required")
		}
		c.Key = key
	}
	if req.Value != nil {
		c.Value = *req.Value
	}
	if req.StoreID != nil {
		c.StoreID = req.StoreID
	}
	c.Touch()

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToConfigurationResponse(c)
	return &response, nil
}

// Delete removes a configuration
func (s *ConfigurationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
