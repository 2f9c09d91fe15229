package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clauderelay/proxypool/internal/config"
)

func TestLoopbackRateLimiter_DisabledByDefault_AlwaysAllows(t *testing.T) {
	l := NewLoopbackRateLimiter(config.RateLimitConfig{})

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}

func TestLoopbackRateLimiter_EnabledZeroRate_AlwaysAllows(t *testing.T) {
	l := NewLoopbackRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0})

	assert.True(t, l.Allow())
}

func TestLoopbackRateLimiter_EnabledExhaustsBurst(t *testing.T) {
	l := NewLoopbackRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLoopbackRateLimiter_BurstDefaultsToOneWhenUnset(t *testing.T) {
	l := NewLoopbackRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 0})

	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}
