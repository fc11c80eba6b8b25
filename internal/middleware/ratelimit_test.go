package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	limiter := NewInMemoryRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
	assert.False(t, limiter.Allow("10.0.0.1"))

	// Other clients keep their own budget.
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, 10*time.Millisecond)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, limiter.Allow("10.0.0.1"))
}
