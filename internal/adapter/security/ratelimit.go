// Package security holds the optional loopback rate limiter (SPEC_FULL
// supplement 3). Since every client of this proxy is the same machine's
// menu-bar UI and its local processes, there is no per-IP bucket to
// maintain here, unlike the teacher's RateLimitValidator — just one global
// token bucket, off by default.
package security

import (
	"golang.org/x/time/rate"

	"github.com/clauderelay/proxypool/internal/config"
)

// LoopbackRateLimiter gates accepted connections with a single token bucket,
// following the teacher's rate.NewLimiter/Reserve usage pattern.
type LoopbackRateLimiter struct {
	limiter *rate.Limiter
	enabled bool
}

// NewLoopbackRateLimiter builds a limiter from proxy_pool.rate_limit. A
// disabled or zero-rate config returns a limiter that always allows.
func NewLoopbackRateLimiter(cfg config.RateLimitConfig) *LoopbackRateLimiter {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return &LoopbackRateLimiter{enabled: false}
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &LoopbackRateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		enabled: true,
	}
}

// Allow reports whether the caller may proceed immediately.
func (l *LoopbackRateLimiter) Allow() bool {
	if !l.enabled {
		return true
	}
	return l.limiter.Allow()
}
