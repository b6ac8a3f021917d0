package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Budget is a fixed-window request allowance for one endpoint.
type Budget struct {
	Limit  int
	Period time.Duration
}

// RateLimiter tracks request counts per endpoint in fixed time
// windows. The window key is floor(now / period), so a burst split
// across a window boundary can see up to twice the limit; this is a
// deliberate property of the fixed-window scheme. Old window buckets
// are never reclaimed.
type RateLimiter struct {
	mu      sync.Mutex
	budgets map[string]Budget
	windows map[string]int
	clk     clock.Clock
}

// New creates a rate limiter with the given per-endpoint budgets.
// Endpoints without a budget are unlimited.
func New(budgets map[string]Budget) *RateLimiter {
	return NewWithClock(budgets, clock.New())
}

// NewWithClock creates a rate limiter driven by the supplied clock.
func NewWithClock(budgets map[string]Budget, clk clock.Clock) *RateLimiter {
	if budgets == nil {
		budgets = make(map[string]Budget)
	}
	return &RateLimiter{
		budgets: budgets,
		windows: make(map[string]int),
		clk:     clk,
	}
}

// SetBudget installs or replaces the budget for an endpoint.
func (rl *RateLimiter) SetBudget(endpoint string, limit int, period time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.budgets[endpoint] = Budget{Limit: limit, Period: period}
}

// CanMakeRequest reports whether the endpoint still has budget in the
// current window. Unconfigured endpoints always pass.
func (rl *RateLimiter) CanMakeRequest(endpoint string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	budget, ok := rl.budgets[endpoint]
	if !ok {
		return true
	}

	return rl.windows[rl.windowKey(endpoint, budget)] < budget.Limit
}

// RecordRequest counts one request against the endpoint's current
// window. Unconfigured endpoints are not tracked.
func (rl *RateLimiter) RecordRequest(endpoint string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	budget, ok := rl.budgets[endpoint]
	if !ok {
		return
	}

	rl.windows[rl.windowKey(endpoint, budget)]++
}

// Remaining returns the unused budget in the current window, or -1
// for unconfigured endpoints.
func (rl *RateLimiter) Remaining(endpoint string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	budget, ok := rl.budgets[endpoint]
	if !ok {
		return -1
	}

	remaining := budget.Limit - rl.windows[rl.windowKey(endpoint, budget)]
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// windowKey buckets now into the endpoint's current fixed window.
// Caller must hold the lock.
func (rl *RateLimiter) windowKey(endpoint string, budget Budget) string {
	bucket := rl.clk.Now().UnixMilli() / budget.Period.Milliseconds()
	return fmt.Sprintf("%s:%d", endpoint, bucket)
}
