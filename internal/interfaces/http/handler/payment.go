package handler

import (
	paymentapp "github.com/enrolment/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	service *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// List godoc
// @Summary      List payments
// @Description  Payments embed their device and plan. store_id matches the buyer's or the vendor's store.
// @Tags         payments
// @Produce      json
// @Param        plan_id   query string false "Plan ID" format(uuid)
// @Param        device_id query string false "Device ID" format(uuid)
// @Param        store_id  query string false "Store ID" format(uuid)
// @Param        skip      query int    false "Offset" default(0)
// @Param        limit     query int    false "Page size" default(100)
// @Success      200 {object} dto.Response{data=[]paymentapp.PaymentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter paymentapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	payments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.listMeta(c, payments, filter.Skip, filter.Limit, len(payments))
}

// Create godoc
// @Summary      Record a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body paymentapp.CreatePaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req paymentapp.CreatePaymentRequest
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
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "payment")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Update godoc
// @Summary      Update a payment
// @Description  An empty body leaves the payment unchanged
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path string true "Payment ID" format(uuid)
// @Param        request body paymentapp.UpdatePaymentRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [patch]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "payment")
	if !ok {
		return
	}

	var req paymentapp.UpdatePaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete godoc
// @Summary      Delete a payment
// @Tags         payments
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "payment")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
