package handler

import (
	deviceapp "github.com/enrolment/backend/internal/application/device"
	"github.com/gin-gonic/gin"
)

// DeviceHandler handles device endpoints
type DeviceHandler struct {
	BaseHandler
	service *deviceapp.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(service *deviceapp.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// List godoc
// @Summary      List devices
// @Description  Newest first; filter by enrolment or by the enrolled user
// @Tags         devices
// @Produce      json
// @Param        enrolment_id query string false "Enrolment ID" format(uuid)
// @Param        user_id      query string false "Enrolled user ID" format(uuid)
// @Param        skip         query int    false "Offset" default(0)
// @Param        limit        query int    false "Page size" default(100)
// @Success      200 {object} dto.Response{data=[]deviceapp.DeviceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	var filter deviceapp.DeviceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	devices, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.listMeta(c, devices, filter.Skip, filter.Limit, len(devices))
}

// Count godoc
// @Summary      Count devices
// @Tags         devices
// @Produce      json
// @Success      200 {object} dto.Response{data=deviceapp.CountResponse}
// @Security     BearerAuth
// @Router       /devices/count [get]
func (h *DeviceHandler) Count(c *gin.Context) {
	count, err := h.service.Count(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, count)
}

// Create godoc
// @Summary      Register a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        request body deviceapp.CreateDeviceRequest true "Device"
// @Success      201 {object} dto.Response{data=deviceapp.DeviceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices [post]
func (h *DeviceHandler) Create(c *gin.Context) {
	var req deviceapp.CreateDeviceRequest
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
// @Summary      Get device by ID
// @Tags         devices
// @Produce      json
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} dto.Response{data=deviceapp.DeviceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices/{id} [get]
func (h *DeviceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "device")
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, d)
}

// Update godoc
// @Summary      Update a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id      path string true "Device ID" format(uuid)
// @Param        request body deviceapp.UpdateDeviceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=deviceapp.DeviceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices/{id} [patch]
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "device")
	if !ok {
		return
	}

	var req deviceapp.UpdateDeviceRequest
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
// @Summary      Delete a device
// @Tags         devices
// @Param        id path string true "Device ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices/{id} [delete]
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "device")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// LastLocation godoc
// @Summary      Last reported location of a device
// @Tags         devices
// @Produce      json
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} dto.Response{data=deviceapp.LocationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /devices/{id}/location [get]
func (h *DeviceHandler) LastLocation(c *gin.Context) {
	id, ok := h.parseID(c, "device")
	if !ok {
		return
	}

	loc, err := h.service.LastLocation(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, loc)
}
