package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstThenThrottle(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         3,
		MaxEntries:        100,
		TTL:               time.Minute,
	})

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("user-1")
		assert.True(t, ok, "request %d within burst should pass", i)
	}

	ok, wait := rl.Allow("user-1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// a different key has its own bucket
	ok, _ = rl.Allow("user-2")
	assert.True(t, ok)
}

func TestAllow_MapNeverExceedsMaxEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         1,
		MaxEntries:        50,
		TTL:               time.Hour, // nothing expires — forces LRU eviction
	})

	for i := 0; i < 500; i++ {
		rl.Allow(fmt.Sprintf("user-%d", i))
	}

	rl.mu.Lock()
	size := len(rl.buckets)
	rl.mu.Unlock()
	assert.LessOrEqual(t, size, 50)
}

func TestAllow_TokensRefillOverTime(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 6000, // 100 tokens/sec, so a short sleep refills
		BurstSize:         1,
		MaxEntries:        10,
		TTL:               time.Minute,
	})

	ok, _ := rl.Allow("user-1")
	assert.True(t, ok)
	ok, _ = rl.Allow("user-1")
	assert.False(t, ok)

	time.Sleep(50 * time.Millisecond)
	ok, _ = rl.Allow("user-1")
	assert.True(t, ok)
}
