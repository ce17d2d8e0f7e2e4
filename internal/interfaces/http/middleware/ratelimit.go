package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/enrolment/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a per-process fixed-window limiter
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count int
	start time.Time
}

// NewMemoryLimiter creates a limiter allowing limit requests per period.
// Idle keys are swept every two periods until Close is called.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(2 * l.period)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.Sub(w.start) >= l.period {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the sweeper
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// Allow records one request for key
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return decide(l.limit, w.count, l.period-now.Sub(w.start)), nil
}

// RedisLimiter shares fixed windows between instances through INCR/PEXPIRE
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	period time.Duration
	prefix string
}

// NewRedisLimiter creates a distributed limiter
func NewRedisLimiter(client redis.UniversalClient, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, period: period, prefix: "enrolment:ratelimit:"}
}

// Allow records one request for key. The window starts with the first request.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		// PEXPIRE NX keeps the window anchored at the first request
		p.Do(ctx, "PEXPIRE", k, l.period.Milliseconds(), "NX")
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn < 0 {
		resetIn = l.period
	}
	return decide(l.limit, int(incr.Val()), resetIn), nil
}

func decide(limit, count int, resetIn time.Duration) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= limit, Limit: limit, Remaining: remaining, ResetIn: resetIn}
}

// KeyFunc extracts the rate limit key from a request
type KeyFunc func(*gin.Context) string

// ClientIPKey limits by client IP, honouring the engine's trusted proxies
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit rejects requests over the limit with 429. Limiter failures are
// logged and let through so a Redis outage does not take the API down.
func RateLimit(limiter Limiter, keyFunc KeyFunc, log *zap.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			h.Set("Retry-After", strconv.Itoa(int(d.ResetIn.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited, "Too many requests. Please try again later.", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
