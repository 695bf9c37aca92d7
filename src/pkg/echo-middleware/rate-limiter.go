package echomw

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// idle limiters are dropped after this long
const limiterIdleTTL = time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
RateLimiter keeps one token bucket per client IP.
Two are used by the server: a loose one for every route and a strict one for
the login endpoint.
*/
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perSecond requests per second with the given burst.
func NewRateLimiter(perSecond rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   perSecond,
		burst:   burst,
		now:     time.Now,
	}
}

// getLimiter returns the rate limiter for the given IP address.
func (r *RateLimiter) getLimiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) > limiterIdleTTL {
		for clientIP, client := range r.clients {
			if now.Sub(client.lastSeen) > limiterIdleTTL {
				delete(r.clients, clientIP)
			}
		}
		r.lastSweep = now
	}

	client, exists := r.clients[ip]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// Allow reports whether ip may make a request now.
func (r *RateLimiter) Allow(ip string) bool {
	return r.getLimiter(ip).Allow()
}

// Custom rate limiting middleware based on client IP address
func (r *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP() // Get the client's IP address

		// Check if the request is allowed by the rate limiter
		if !r.Allow(ip) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		}
		return next(c)
	}
}
