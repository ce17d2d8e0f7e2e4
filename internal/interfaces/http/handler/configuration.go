package handler

import (
	configapp "github.com/enrolment/backend/internal/application/configuration"
	"github.com/gin-gonic/gin"
)

// ConfigurationHandler handles configuration endpoints
type ConfigurationHandler struct {
	BaseHandler
	service *configapp.ConfigurationService
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(service *configapp.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{service: service}
}

// List godoc
// @Summary      List configurations
// @Tags         configurations
// @Produce      json
// @Param        key      query string false "Exact key"
// @Param        store_id query string false "Store ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]configapp.ConfigurationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /configurations [get]
func (h *ConfigurationHandler) List(c *gin.Context) {
	var filter configapp.ConfigurationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	configs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, configs)
}

// Create godoc
// @Summary      Create a configuration
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        request body configapp.CreateConfigurationRequest true "Configuration"
// @Success      201 {object} dto.Response{data=configapp.ConfigurationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /configurations [post]
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req configapp.CreateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, created)
}

// GetByID godoc
// @Summary      Get configuration by ID
// @Tags         configurations
// @Produce      json
// @Param        id path string true "Configuration ID" format(uuid)
// @Success      200 {object} dto.Response{data=configapp.ConfigurationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /configurations/{id} [get]
func (h *ConfigurationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "configuration")
	if !ok {
		return
	}

	cfg, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cfg)
}

// Update godoc
// @Summary      Update a configuration
// @Description  Applies the supplied fields and answers without a body
// @Tags         configurations
// @Accept       json
// @Param        id      path string true "Configuration ID" format(uuid)
// @Param        request body configapp.UpdateConfigurationRequest true "Fields to change"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /configurations/{id} [patch]
func (h *ConfigurationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "configuration")
	if !ok {
		return
	}

	var req configapp.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if _, err := h.service.Update(c.Request.Context(), id, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete a configuration
// @Tags         configurations
// @Param        id path string true "Configuration ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /configurations/{id} [delete]
func (h *ConfigurationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "configuration")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
