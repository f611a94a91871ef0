package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Token-bucket rate limiter with a hard entry cap and TTL eviction. It is
// best-effort and non-authoritative: losing its state on restart is fine, the
// real correctness guarantees live in the store's unique constraints.

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	MaxEntries        int           // hard cap on tracked keys
	TTL               time.Duration // idle entries older than this are evictable
}

// DefaultRateLimitConfig returns sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
		MaxEntries:        10000,
		TTL:               10 * time.Minute,
	}
}

type bucket struct {
	tokens   float64
	lastFill time.Time
	lastSeen time.Time
}

// RateLimiter implements per-user token buckets over a bounded map.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key, reporting whether the request may proceed
// and, if not, how long to wait.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	refillRate := float64(rl.cfg.RequestsPerMinute) / 60.0 // tokens per second

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) >= rl.cfg.MaxEntries {
			rl.evictLocked(now)
		}
		b = &bucket{tokens: float64(rl.cfg.BurstSize), lastFill: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * refillRate
	if b.tokens > float64(rl.cfg.BurstSize) {
		b.tokens = float64(rl.cfg.BurstSize)
	}
	b.lastFill = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	wait := time.Duration((1 - b.tokens) / refillRate * float64(time.Second))
	return false, wait
}

// evictLocked drops expired entries; if nothing has expired, it drops the
// least-recently-seen entry so the map can never grow past MaxEntries.
func (rl *RateLimiter) evictLocked(now time.Time) {
	var oldestKey string
	var oldestSeen time.Time
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.cfg.TTL {
			delete(rl.buckets, k)
			continue
		}
		if oldestKey == "" || b.lastSeen.Before(oldestSeen) {
			oldestKey = k
			oldestSeen = b.lastSeen
		}
	}
	if len(rl.buckets) >= rl.cfg.MaxEntries && oldestKey != "" {
		delete(rl.buckets, oldestKey)
	}
}

// Handler returns the fiber middleware, keyed by user ID when present and
// client IP otherwise.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-User-ID")
		if key == "" {
			key = c.IP()
		}

		ok, retryAfter := rl.Allow(key)
		if !ok {
			c.Set("Retry-After", retryAfter.Round(time.Second).String())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests",
			})
		}
		return c.Next()
	}
}
