package handler

import (
	"net/http"
	"time"

	analyticsapp "github.com/enrolment/backend/internal/application/analytics"
	domain "github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsQuery is the query string shared by the analytics endpoints
type AnalyticsQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date"`
	StoreID   string `form:"store_id"`
}

// AnalyticsHandler serves range summaries and spreadsheet exports
type AnalyticsHandler struct {
	BaseHandler
	aggregator *analyticsapp.Aggregator
	renderer   *analyticsapp.Renderer
	archiver   *analyticsapp.Archiver
}

// NewAnalyticsHandler creates a new AnalyticsHandler. archiver may be nil
// when object storage is disabled.
func NewAnalyticsHandler(aggregator *analyticsapp.Aggregator, renderer *analyticsapp.Renderer, archiver *analyticsapp.Archiver) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
		renderer:   renderer,
		archiver:   archiver,
	}
}

// ArchiveEnabled reports whether reports can be archived
func (h *AnalyticsHandler) ArchiveEnabled() bool {
	return h.archiver != nil
}

// Summary godoc
// @Summary      Aggregate figures for a date range
// @Description  Daily customers, vendors, devices and payment totals. A missing end_date means today; a reversed range is swapped.
// @Tags         analytics
// @Produce      json
// @Param        start_date query string true  "First day" format(date)
// @Param        end_date   query string false "Last day" format(date)
// @Param        store_id   query string false "Store ID" format(uuid)
// @Success      200 {object} dto.Response{data=analyticsapp.AnalyticsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	req, ok := h.bindRange(c)
	if !ok {
		return
	}

	resp, err := h.aggregator.Aggregate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export godoc
// @Summary      Download the range as a spreadsheet
// @Tags         analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start_date query string true  "First day" format(date)
// @Param        end_date   query string false "Last day" format(date)
// @Param        store_id   query string false "Store ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	req, ok := h.bindRange(c)
	if !ok {
		return
	}

	report, err := h.renderer.Render(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, analyticsapp.ContentType, report.Content.Bytes())
}

// Archive godoc
// @Summary      Store the spreadsheet and return a download link
// @Tags         analytics
// @Produce      json
// @Param        start_date query string true  "First day" format(date)
// @Param        end_date   query string false "Last day" format(date)
// @Param        store_id   query string false "Store ID" format(uuid)
// @Success      201 {object} dto.Response{data=analyticsapp.ArchiveResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/export/archive [post]
func (h *AnalyticsHandler) Archive(c *gin.Context) {
	if h.archiver == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Report storage is not configured")
		return
	}

	req, ok := h.bindRange(c)
	if !ok {
		return
	}

	resp, err := h.archiver.Archive(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// bindRange parses the analytics query string. Malformed dates or store IDs
// answer 400 INVALID_INPUT.
func (h *AnalyticsHandler) bindRange(c *gin.Context) (analyticsapp.RangeRequest, bool) {
	var q AnalyticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return analyticsapp.RangeRequest{}, false
	}

	var req analyticsapp.RangeRequest
	start, err := time.Parse(domain.DayLayout, q.StartDate)
	if err != nil {
		h.InvalidInput(c, "start_date must be a date in YYYY-MM-DD format")
		return req, false
	}
	req.StartDate = start

	if q.EndDate != "" {
		end, err := time.Parse(domain.DayLayout, q.EndDate)
		if err != nil {
			h.InvalidInput(c, "end_date must be a date in YYYY-MM-DD format")
			return req, false
		}
		req.EndDate = &end
	}

	if q.StoreID != "" {
		storeID, err := uuid.Parse(q.StoreID)
		if err != nil {
			h.InvalidInput(c, "store_id must be a valid UUID")
			return req, false
		}
		req.StoreID = &storeID
	}
	return req, true
}
