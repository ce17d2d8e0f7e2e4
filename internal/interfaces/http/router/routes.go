package router

import (
	"slices"

	"github.com/enrolment/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers mounted under the versioned API
type Handlers struct {
	Configurations *handler.ConfigurationHandler
	Devices        *handler.DeviceHandler
	Actions        *handler.ActionHandler
	Enrolments     *handler.EnrolmentHandler
	Payments       *handler.PaymentHandler
	Analytics      *handler.AnalyticsHandler
	System         *handler.SystemHandler

	// ArchiveGuards run before the archive handler
	ArchiveGuards []gin.HandlerFunc
}

// APIGroups builds the route groups of the enrolment API. The archive
// endpoint is only declared when report storage is configured.
func APIGroups(h Handlers) []*DomainGroup {
	configurations := NewDomainGroup("configurations", "/configurations").
		GET("", h.Configurations.List).
		POST("", h.Configurations.Create).
		GET("/:id", h.Configurations.GetByID).
		PATCH("/:id", h.Configurations.Update).
		DELETE("/:id", h.Configurations.Delete)

	devices := NewDomainGroup("devices", "/devices").
		GET("", h.Devices.List).
		POST("", h.Devices.Create).
		GET("/count", h.Devices.Count).
		GET("/:id", h.Devices.GetByID).
		PATCH("/:id", h.Devices.Update).
		DELETE("/:id", h.Devices.Delete).
		GET("/:id/location", h.Devices.LastLocation)

	actions := NewDomainGroup("actions", "/actions").
		GET("", h.Actions.List).
		POST("", h.Actions.Create).
		GET("/:id", h.Actions.GetByID).
		PATCH("/:id", h.Actions.Update).
		DELETE("/:id", h.Actions.Delete)

	enrolments := NewDomainGroup("enrolments", "/enrolments").
		GET("", h.Enrolments.List).
		POST("", h.Enrolments.Create).
		GET("/:id", h.Enrolments.GetByID).
		PATCH("/:id", h.Enrolments.Update).
		DELETE("/:id", h.Enrolments.Delete)

	payments := NewDomainGroup("payments", "/payments").
		GET("", h.Payments.List).
		POST("", h.Payments.Create).
		GET("/:id", h.Payments.GetByID).
		PATCH("/:id", h.Payments.Update).
		DELETE("/:id", h.Payments.Delete)

	analytics := NewDomainGroup("analytics", "/analytics").
		GET("", h.Analytics.Summary).
		GET("/export", h.Analytics.Export)
	if h.Analytics.ArchiveEnabled() {
		analytics.POST("/export/archive", append(slices.Clone(h.ArchiveGuards), h.Analytics.Archive)...)
	}

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	return []*DomainGroup{configurations, devices, actions, enrolments, payments, analytics, system}
}
