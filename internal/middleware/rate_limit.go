package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	rateLimitKeyPrefix    = "rl"
	rateLimitHeaderLimit  = "X-RateLimit-Limit"
	rateLimitRedisTimeout = 500 * time.Millisecond
)

// RateLimitMiddleware caps how many requests one client IP may send to a
// resource per window.
//
// Counters live in Redis (fixed window, INCR + EXPIRE NX in one transaction) so every instance
// shares them. Without Redis, or when a Redis call fails, each process falls
// back to an in-memory token bucket per client with the same rate.
type RateLimitMiddleware struct {
	server   *server.Server
	redis    *redis.Client
	enabled  bool
	requests int
	window   time.Duration

	mu        sync.Mutex
	local     map[string]*localEntry
	lastSweep time.Time
	now       func() time.Time
}

// localEntry is one client's token bucket. A bucket left idle for a whole
// window is full again, so dropping it loses nothing.
type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit
	return &RateLimitMiddleware{
		server:   s,
		redis:    s.Redis,
		enabled:  cfg.Enabled && cfg.Requests > 0 && cfg.Window > 0,
		requests: cfg.Requests,
		window:   cfg.Window,
		local:    make(map[string]*localEntry),
		now:      time.Now,
	}
}

// Limit returns the middleware for resource, a stable name used in keys and
// telemetry (e.g. "casos:create").
func (r *RateLimitMiddleware) Limit(resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !r.enabled {
			return next
		}

		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s:ip:%s", rateLimitKeyPrefix, resource, c.RealIP())

			if !r.allow(c.Request().Context(), key) {
				GetLogger(c).Warn().
					Str("resource", resource).
					Str("ip", c.RealIP()).
					Msg("rate limit exceeded")
				r.RecordRateLimitHit(resource)
				return errs.NewTooManyRequestsError("Demasiadas solicitudes, intente nuevamente más tarde")
			}

			c.Response().Header().Set(rateLimitHeaderLimit, strconv.Itoa(r.requests))
			return next(c)
		}
	}
}

func (r *RateLimitMiddleware) allow(ctx context.Context, key string) bool {
	if r.redis != nil {
		allowed, err := r.allowRedis(ctx, key)
		if err == nil {
			return allowed
		}
		r.server.Logger.Warn().Err(err).Msg("rate limit store unavailable, using local limiter")
	}
	return r.localLimiter(key).Allow()
}

func (r *RateLimitMiddleware) allowRedis(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, rateLimitRedisTimeout)
	defer cancel()

	// INCR and EXPIRE NX run in one MULTI, so a counter can never be left
	// without a TTL; NX keeps the window fixed instead of sliding it.
	var incr *redis.IntCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(r.requests), nil
}

func (r *RateLimitMiddleware) localLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.window {
		for k, e := range r.local {
			if now.Sub(e.lastSeen) >= r.window {
				delete(r.local, k)
			}
		}
		r.lastSweep = now
	}

	e, ok := r.local[key]
	if !ok {
		e = &localEntry{
			limiter: rate.NewLimiter(rate.Every(r.window/time.Duration(r.requests)), r.requests),
		}
		r.local[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic, if enabled.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
			"limit":    r.requests,
			"window_s": r.window.Seconds(),
		})
	}
}
