package handler

import (
	enrolmentapp "github.com/enrolment/backend/internal/application/enrolment"
	"github.com/gin-gonic/gin"
)

// EnrolmentHandler handles enrolment endpoints
type EnrolmentHandler struct {
	BaseHandler
	service *enrolmentapp.EnrolmentService
}

// NewEnrolmentHandler creates a new EnrolmentHandler
func NewEnrolmentHandler(service *enrolmentapp.EnrolmentService) *EnrolmentHandler {
	return &EnrolmentHandler{service: service}
}

// List godoc
// @Summary      List enrolments
// @Tags         enrolments
// @Produce      json
// @Param        user_id   query string false "Customer ID" format(uuid)
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        skip      query int    false "Offset" default(0)
// @Param        limit     query int    false "Page size" default(100)
// @Success      200 {object} dto.Response{data=[]enrolmentapp.EnrolmentResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /enrolments [get]
func (h *EnrolmentHandler) List(c *gin.Context) {
	var filter enrolmentapp.EnrolmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	enrolments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.listMeta(c, enrolments, filter.Skip, filter.Limit, len(enrolments))
}

// Create godoc
// @Summary      Enrol a customer with a vendor
// @Tags         enrolments
// @Accept       json
// @Produce      json
// @Param        request body enrolmentapp.CreateEnrolmentRequest true "Enrolment"
// @Success      201 {object} dto.Response{data=enrolmentapp.EnrolmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /enrolments [post]
func (h *EnrolmentHandler) Create(c *gin.Context) {
	var req enrolmentapp.CreateEnrolmentRequest
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
// @Summary      Get enrolment by ID
// @Tags         enrolments
// @Produce      json
// @Param        id path string true "Enrolment ID" format(uuid)
// @Success      200 {object} dto.Response{data=enrolmentapp.EnrolmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /enrolments/{id} [get]
func (h *EnrolmentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "enrolment")
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, e)
}

// Update godoc
// @Summary      Update an enrolment
// @Tags         enrolments
// @Accept       json
// @Produce      json
// @Param        id      path string true "Enrolment ID" format(uuid)
// @Param        request body enrolmentapp.UpdateEnrolmentRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=enrolmentapp.EnrolmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /enrolments/{id} [patch]
func (h *EnrolmentHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "enrolment")
	if !ok {
		return
	}

	var req enrolmentapp.UpdateEnrolmentRequest
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
// @Summary      Delete an enrolment
// @Tags         enrolments
// @Param        id path string true "Enrolment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /enrolments/{id} [delete]
func (h *EnrolmentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "enrolment")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
