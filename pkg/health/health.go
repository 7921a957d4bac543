// Package health provides liveness and readiness checks with HTTP handlers.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// Check represents a single health check that can succeed or fail.
type Check interface {
	// Name returns the human-readable name of this check
	Name() string

	// Check performs the health check.
	// Returns nil if healthy, error if unhealthy.
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function into a Check.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheckFunc creates a new CheckFunc with the given name and function.
func NewCheckFunc(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the name of this check.
func (c *CheckFunc) Name() string { return c.name }

// Check executes the check function.
func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckResult represents the result of a single health check execution.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// Status represents the aggregate health status.
type Status struct {
	Healthy bool
	Checks  []CheckResult
}

// Checker manages and executes health checks for liveness and readiness probes.
type Checker struct {
	livenessChecks  []Check
	readinessChecks []Check
	timeout         time.Duration
	logger          logger.Logger
	mu              sync.RWMutex
}

// Option is a functional option for configuring Checker.
type Option func(*Checker)

// WithTimeout sets the timeout for individual health checks. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(h *Checker) { h.timeout = d }
}

// WithLogger sets the logger for health check operations.
func WithLogger(l logger.Logger) Option {
	return func(h *Checker) { h.logger = l }
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	h := &Checker{timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddLivenessCheck adds a liveness check.
// Liveness checks determine if the process should be restarted.
func (h *Checker) AddLivenessCheck(check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.livenessChecks = append(h.livenessChecks, check)
}

// AddReadinessCheck adds a readiness check.
// Readiness checks determine if the service can handle requests.
func (h *Checker) AddReadinessCheck(check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessChecks = append(h.readinessChecks, check)
}

// CheckLiveness executes all liveness checks.
func (h *Checker) CheckLiveness(ctx context.Context) *Status {
	h.mu.RLock()
	checks := h.livenessChecks
	h.mu.RUnlock()

	return h.executeChecks(ctx, checks)
}

// CheckReadiness executes all readiness checks.
func (h *Checker) CheckReadiness(ctx context.Context) *Status {
	h.mu.RLock()
	checks := h.readinessChecks
	h.mu.RUnlock()

	return h.executeChecks(ctx, checks)
}

// executeChecks runs all checks concurrently and aggregates the results.
// No checks configured means healthy.
func (h *Checker) executeChecks(ctx context.Context, checks []Check) *Status {
	if len(checks) == 0 {
		return &Status{Healthy: true, Checks: []CheckResult{}}
	}

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, chk Check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			start := time.Now()
			err := runCheck(checkCtx, chk)
			latency := time.Since(start)

			result := CheckResult{
				Name:    chk.Name(),
				Healthy: err == nil,
				Latency: latency,
			}
			if err != nil {
				result.Error = err.Error()
				if h.logger != nil {
					h.logger.Warn("Health check failed",
						logger.StringField("check", chk.Name()),
						logger.ErrorField(err))
				}
			}
			results[idx] = result
		}(i, check)
	}

	wg.Wait()

	status := &Status{Healthy: true, Checks: results}
	for _, r := range results {
		if !r.Healthy {
			status.Healthy = false
			break
		}
	}
	return status
}

// runCheck executes a check, converting a panic into an error so a broken
// check never takes down the probe endpoint.
func runCheck(ctx context.Context, chk Check) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("health check panicked: %v", rec)
		}
	}()
	return chk.Check(ctx)
}
