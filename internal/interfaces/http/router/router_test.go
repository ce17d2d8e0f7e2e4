package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	analyticsapp "github.com/enrolment/backend/internal/application/analytics"
	"github.com/enrolment/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"), WithMiddleware(func(c *gin.Context) {
		c.Header("X-API", "yes")
	}))
	assert.Equal(t, "/api/v2", r.BasePath())

	group := NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-API"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-API"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("methods and subgroups", func(t *testing.T) {
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method+" "+c.FullPath()) }
		g := NewDomainGroup("items", "/items").
			GET("", ok).
			POST("", ok).
			PATCH("/:id", ok).
			DELETE("/:id", ok)
		g.Group("export", "/export").GET("/:id", ok)

		engine := gin.New()
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method, path, want string
		}{
			{http.MethodGet, "/api/v1/items", "GET /api/v1/items"},
			{http.MethodPost, "/api/v1/items", "POST /api/v1/items"},
			{http.MethodPatch, "/api/v1/items/1", "PATCH /api/v1/items/:id"},
			{http.MethodDelete, "/api/v1/items/1", "DELETE /api/v1/items/:id"},
			{http.MethodGet, "/api/v1/items/export/1", "GET /api/v1/items/export/:id"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tt.path)
			assert.Equal(t, tt.want, w.Body.String())
		}
	})

	t.Run("group middleware", func(t *testing.T) {
		g := NewDomainGroup("secure", "/secure").
			Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }).
			GET("/data", func(c *gin.Context) { c.Status(http.StatusOK) })

		engine := gin.New()
		g.RegisterRoutes(engine.Group(""))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure/data", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("routes listing", func(t *testing.T) {
		g := NewDomainGroup("items", "/items").GET("", nil).GET("/:id", nil)
		g.Group("export", "/export").POST("", nil)

		assert.Equal(t, "items", g.Name())
		assert.Equal(t, "/items", g.Prefix())
		assert.Equal(t, []RouteInfo{
			{Method: http.MethodGet, Path: "/items"},
			{Method: http.MethodGet, Path: "/items/:id"},
			{Method: http.MethodPost, Path: "/items/export"},
		}, g.Routes())
	})
}

func apiHandlers(archiver *analyticsapp.Archiver) Handlers {
	return Handlers{
		Configurations: handler.NewConfigurationHandler(nil),
		Devices:        handler.NewDeviceHandler(nil),
		Actions:        handler.NewActionHandler(nil),
		Enrolments:     handler.NewEnrolmentHandler(nil),
		Payments:       handler.NewPaymentHandler(nil),
		Analytics:      handler.NewAnalyticsHandler(nil, nil, archiver),
		System:         handler.NewSystemHandler("test", "0.0.0", nil),
	}
}

func declared(groups []*DomainGroup) []string {
	var out []string
	for _, g := range groups {
		for _, r := range g.Routes() {
			out = append(out, r.Method+" "+r.Path)
		}
	}
	sort.Strings(out)
	return out
}

func TestAPIGroups(t *testing.T) {
	routes := declared(APIGroups(apiHandlers(nil)))

	for _, want := range []string{
		"GET /configurations",
		"PATCH /configurations/:id",
		"GET /devices/count",
		"GET /devices/:id/location",
		"DELETE /payments/:id",
		"POST /enrolments",
		"PATCH /actions/:id",
		"GET /analytics",
		"GET /analytics/export",
		"GET /system/info",
	} {
		assert.Contains(t, routes, want)
	}
	assert.NotContains(t, routes, "POST /analytics/export/archive")

	withArchive := declared(APIGroups(apiHandlers(&analyticsapp.Archiver{})))
	assert.Contains(t, withArchive, "POST /analytics/export/archive")
}

func TestAPIGroups_MountWithoutConflicts(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range APIGroups(apiHandlers(nil)) {
		r.Register(g)
	}
	require.NotPanics(t, r.Setup)

	paths := map[string]bool{}
	for _, info := range engine.Routes() {
		paths[info.Method+" "+info.Path] = true
	}
	assert.True(t, paths["GET /api/v1/devices/count"])
	assert.True(t, paths["GET /api/v1/devices/:id"])
}

func TestAPIGroups_ArchiveGuardsRunFirst(t *testing.T) {
	h := apiHandlers(&analyticsapp.Archiver{})
	h.ArchiveGuards = []gin.HandlerFunc{func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	}}

	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range APIGroups(h) {
		r.Register(g)
	}
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analytics/export/archive?start_date=2024-01-01", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
