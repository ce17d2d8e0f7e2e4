package main

import (
	"github.com/enrolment/backend/internal/infrastructure/config"
	"github.com/enrolment/backend/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// newRateLimiter picks the limiter backend. A redis backend without a
// configured Redis falls back to the in-process limiter.
func newRateLimiter(cfg *config.Config, client *redis.Client, log *zap.Logger) (middleware.Limiter, func()) {
	if cfg.HTTP.RateLimitBackend == "redis" {
		if client != nil {
			return middleware.NewRedisLimiter(client, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow), func() {}
		}
		log.Warn("Redis rate limit backend requested without Redis, using memory backend")
	}
	limiter := middleware.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	return limiter, limiter.Close
}
