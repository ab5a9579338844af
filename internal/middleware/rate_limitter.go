package middleware

import (
	"net/http"
	"sync"
	"time"

	"Attendify/pkg/response"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")

// pruneAfter is how long an idle client keeps its token bucket.
const pruneAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	bucket    map[string]*clientLimiter
	rate      rate.Limit
	burstSize int
	mutex     sync.Mutex
	lastPrune time.Time
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*clientLimiter),
		rate:      reqRate,
		burstSize: burstSize,
		lastPrune: time.Now(),
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	if now.Sub(r.lastPrune) > pruneAfter {
		for key, client := range r.bucket {
			if now.Sub(client.lastSeen) > pruneAfter {
				delete(r.bucket, key)
			}
		}
		r.lastPrune = now
	}

	client, exist := r.bucket[ip]
	if !exist {
		client = &clientLimiter{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.bucket[ip] = client
	}
	client.lastSeen = now

	return client.limiter
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	limiter := m.rateLimitter.GetLimiterFrom(clientIP)

	if !limiter.Allow() {
		m.log.Warnf("too many requests for IP %s", clientIP)
		ctx.Set("Retry-After", "1")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
		})
	}

	return ctx.Next()
}
