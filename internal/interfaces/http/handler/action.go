package handler

import (
	deviceapp "github.com/enrolment/backend/internal/application/device"
	"github.com/gin-gonic/gin"
)

// ActionHandler handles device action endpoints
type ActionHandler struct {
	BaseHandler
	service *deviceapp.ActionService
}

// NewActionHandler creates a new ActionHandler
func NewActionHandler(service *deviceapp.ActionService) *ActionHandler {
	return &ActionHandler{service: service}
}

// List godoc
// @Summary      List actions
// @Tags         actions
// @Produce      json
// @Param        device_id query string false "Device ID" format(uuid)
// @Param        skip      query int    false "Offset" default(0)
// @Param        limit     query int    false "Page size" default(100)
// @Success      200 {object} dto.Response{data=[]deviceapp.ActionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /actions [get]
func (h *ActionHandler) List(c *gin.Context) {
	var filter deviceapp.ActionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	actions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.listMeta(c, actions, filter.Skip, filter.Limit, len(actions))
}

// Create godoc
// @Summary      Issue an action to a device
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        request body deviceapp.CreateActionRequest true "Action"
// @Success      201 {object} dto.Response{data=deviceapp.ActionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actions [post]
func (h *ActionHandler) Create(c *gin.Context) {
	var req deviceapp.CreateActionRequest
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
// @Summary      Get action by ID
// @Tags         actions
// @Produce      json
// @Param        id path string true "Action ID" format(uuid)
// @Success      200 {object} dto.Response{data=deviceapp.ActionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actions/{id} [get]
func (h *ActionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "action")
	if !ok {
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, a)
}

// Update godoc
// @Summary      Record the outcome of an action
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        id      path string true "Action ID" format(uuid)
// @Param        request body deviceapp.UpdateActionRequest true "State and description"
// @Success      200 {object} dto.Response{data=deviceapp.ActionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actions/{id} [patch]
func (h *ActionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "action")
	if !ok {
		return
	}

	var req deviceapp.UpdateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete godoc
// @Summary      Delete an action
// @Tags         actions
// @Param        id path string true "Action ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /actions/{id} [delete]
func (h *ActionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "action")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
