package guard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles tool calls globally and per tool name.
type RateLimiter struct {
	globalLimiter *rate.Limiter
	toolLimiters  map[string]*rate.Limiter
	mu            sync.RWMutex

	requestsPerSecond float64
	burst             int
}

// NewRateLimiter creates a limiter sharing one configuration across the
// global bucket and every per-tool bucket.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		globalLimiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		toolLimiters:      make(map[string]*rate.Limiter),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
	}
}

// Allow checks if a tool call should be allowed right now.
func (rl *RateLimiter) Allow(tool string) bool {
	if !rl.globalLimiter.Allow() {
		return false
	}
	return rl.getToolLimiter(tool).Allow()
}

// Wait blocks until a tool call can proceed or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context, tool string) error {
	if err := rl.globalLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("global rate limit: %w", err)
	}
	if err := rl.getToolLimiter(tool).Wait(ctx); err != nil {
		return fmt.Errorf("tool rate limit: %w", err)
	}
	return nil
}

func (rl *RateLimiter) getToolLimiter(tool string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.toolLimiters[tool]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists := rl.toolLimiters[tool]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(rl.requestsPerSecond), rl.burst)
	rl.toolLimiters[tool] = limiter
	return limiter
}
