package configuration

import (
	"time"

	"github.com/enrolment/backend/internal/domain/configuration"
	"github.com/google/uuid"
)

// CreateConfigurationRequest represents a request to create a configuration
type CreateConfigurationRequest struct {
	Key     string     `json:"key" binding:"required,min=1,max=100"`
	Value   string     `json:"value" binding:"required"`
	StoreID *uuid.UUID `json:"store_id"`
}

// UpdateConfigurationRequest is a partial update; nil fields are left untouched
type UpdateConfigurationRequest struct {
	Key     *string    `json:"key" binding:"omitempty,min=1,max=100"`
	Value   *string    `json:"value"`
	StoreID *uuid.UUID `json:"store_id"`
}

// ConfigurationListFilter represents filter options for the configuration list
type ConfigurationListFilter struct {
	Key     string `form:"key"`
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
}

// ConfigurationResponse represents a configuration in API responses
type ConfigurationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	StoreID   *uuid.UUID `json:"store_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToConfigurationResponse converts a domain Configuration to ConfigurationResponse
func ToConfigurationResponse(c *configuration.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:        c.ID,
		Key:       c.Key,
		Value:     c.Value,
		StoreID:   c.StoreID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToConfigurationResponses converts a slice of domain Configurations
func ToConfigurationResponses(configs []configuration.Configuration) []ConfigurationResponse {
	responses := make([]ConfigurationResponse, len(configs))
	for i := range configs {
		responses[i] = ToConfigurationResponse(&configs[i])
	}
	return responses
}
