// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/HSouheill/branchstock_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles clients per IP and blocks an IP for a while once
// it exceeds its budget.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		mu:            &sync.Mutex{},
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// Profile creation runs once per sign-in.
			"/api/users/me": {limit: rate.Every(500 * time.Millisecond), burst: 5},
			// Checkout bursts happen at the counter.
			"/api/branches/:branchId/categories/:category/items/:itemId/sales": {limit: rate.Every(50 * time.Millisecond), burst: 30},
			"/api/messages": {limit: rate.Every(2 * time.Second), burst: 5},
		},
		now: time.Now,
	}
}

// Start runs the blocked-IP cleanup until stop is closed.
func (r *RateLimiter) Start(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.cleanupBlockedIPs()
			}
		}
	}()
}

func (r *RateLimiter) cleanupBlockedIPs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			delete(r.ips, ip)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
				return next(c)
			}
			ip := c.RealIP()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}
			r.mu.Unlock()

			limit, burst := r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[c.Path()]; ok {
				limit, burst = el.limit, el.burst
			}

			if !r.getLimiter(ip, c.Path(), limit, burst).Allow() {
				until := r.now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = until
				r.mu.Unlock()
				log.Warn().Str("ip", ip).Str("path", c.Path()).Msg("rate limit exceeded")
				return tooManyRequests(c, until)
			}
			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, until time.Time) error {
	c.Response().Header().Set("Retry-After", until.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data:    map[string]string{"retryAfter": until.Format(time.RFC3339)},
	})
}

func (r *RateLimiter) getLimiter(ip, path string, limit rate.Limit, burst int) *rate.Limiter {
	key := ip
	if _, ok := r.endpointLimits[path]; ok {
		key = ip + " " + path
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, exists := r.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.ips[key] = limiter
	}
	return limiter
}
