package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	analyticsapp "github.com/enrolment/backend/internal/application/analytics"
	configapp "github.com/enrolment/backend/internal/application/configuration"
	deviceapp "github.com/enrolment/backend/internal/application/device"
	enrolmentapp "github.com/enrolment/backend/internal/application/enrolment"
	paymentapp "github.com/enrolment/backend/internal/application/payment"
	"github.com/enrolment/backend/internal/infrastructure/auth"
	"github.com/enrolment/backend/internal/infrastructure/cache"
	"github.com/enrolment/backend/internal/infrastructure/config"
	"github.com/enrolment/backend/internal/infrastructure/logger"
	"github.com/enrolment/backend/internal/infrastructure/persistence"
	"github.com/enrolment/backend/internal/infrastructure/storage"
	"github.com/enrolment/backend/internal/infrastructure/telemetry"
	"github.com/enrolment/backend/internal/interfaces/http/handler"
	"github.com/enrolment/backend/internal/interfaces/http/middleware"
	"github.com/enrolment/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			Enrolment Backend API
//	@version		1.0
//	@description	Device enrolment, payment tracking and store analytics

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The OTel log bridge must exist before the logger so zap can tee into it
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}, loggerProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Enrolment Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Redis backs the distributed rate limiter and the token blacklist
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	deviceRepo := persistence.NewGormDeviceRepository(db.DB)
	recordStore := persistence.NewGormRecordStore(db.DB)

	// Services
	configurationService := configapp.NewConfigurationService(persistence.NewGormConfigurationRepository(db.DB))
	deviceService := deviceapp.NewDeviceService(deviceRepo, persistence.NewGormLocationRepository(db.DB))
	actionService := deviceapp.NewActionService(persistence.NewGormActionRepository(db.DB), deviceRepo)
	enrolmentService := enrolmentapp.NewEnrolmentService(persistence.NewGormEnrolmentRepository(db.DB))
	paymentService := paymentapp.NewPaymentService(persistence.NewGormPaymentRepository(db.DB))

	reportMetrics, err := telemetry.NewReportMetrics(meterProvider.Meter("enrolment/analytics"))
	if err != nil {
		log.Fatal("Failed to create report metrics", zap.Error(err))
	}
	analyticsOpts := []analyticsapp.Option{
		analyticsapp.WithRoles(cfg.Analytics.CustomerRole, cfg.Analytics.VendorRole),
		analyticsapp.WithLocation(cfg.Analytics.Location()),
		analyticsapp.WithMaxConcurrency(cfg.Analytics.MaxConcurrency),
		analyticsapp.WithLogger(log.Named("analytics")),
		analyticsapp.WithMetrics(reportMetrics),
	}
	aggregator := analyticsapp.NewAggregator(recordStore, analyticsOpts...)
	renderer := analyticsapp.NewRenderer(recordStore, analyticsOpts...)

	var archiver *analyticsapp.Archiver
	if cfg.Storage.Enabled {
		reportStorage, err := storage.NewS3ReportStorage(ctx, &cfg.Storage,
			storage.WithLogger(log.Named("storage")),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize report storage", zap.Error(err))
		}
		if err := reportStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err), zap.String("bucket", reportStorage.Bucket()))
		}
		archiver = analyticsapp.NewArchiver(renderer, reportStorage, cfg.Storage.ReportPrefix, cfg.Storage.PresignExpiration)
		log.Info("Report archive enabled", zap.String("bucket", reportStorage.Bucket()))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("enrolment/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.CORS(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.SpanAttributes(),
		httpMetrics,
		middleware.Profiling("/health"),
	)

	closeLimiter := func() {}
	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		limiter, closeLimiter = newRateLimiter(cfg, redisClient, log)
		engine.Use(middleware.RateLimit(limiter, middleware.ClientIPKey, log))
		log.Info("Rate limiting enabled",
			zap.String("backend", cfg.HTTP.RateLimitBackend),
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)

	var apiMiddleware, archiveGuards []gin.HandlerFunc
	if cfg.JWT.Enabled {
		var blacklist auth.TokenBlacklist
		if redisClient != nil {
			blacklist = auth.NewRedisTokenBlacklist(redisClient)
		}
		apiMiddleware = append(apiMiddleware, middleware.JWTAuth(middleware.JWTConfig{
			Validator: auth.NewJWTService(cfg.JWT),
			Blacklist: blacklist,
			SkipPaths: []string{"/api/v1/system/ping", "/api/v1/system/info"},
			Logger:    log,
		}))
		if cfg.JWT.ArchiveRole != "" {
			archiveGuards = append(archiveGuards, middleware.RequireRole(cfg.JWT.ArchiveRole))
		}
		log.Info("JWT authentication enabled",
			zap.Bool("blacklist", blacklist != nil),
			zap.String("archive_role", cfg.JWT.ArchiveRole),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	groups := router.APIGroups(router.Handlers{
		Configurations: handler.NewConfigurationHandler(configurationService),
		Devices:        handler.NewDeviceHandler(deviceService),
		Actions:        handler.NewActionHandler(actionService),
		Enrolments:     handler.NewEnrolmentHandler(enrolmentService),
		Payments:       handler.NewPaymentHandler(paymentService),
		Analytics:      handler.NewAnalyticsHandler(aggregator, renderer, archiver),
		System:         systemHandler,
		ArchiveGuards:  archiveGuards,
	})
	for _, g := range groups {
		r.Register(g)
		log.Debug("Route group registered", zap.String("group", g.Name()), zap.Int("routes", len(g.Routes())))
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	closeLimiter()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx, log); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
