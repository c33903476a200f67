// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters for operational metrics:
//   - invocations/successes: Top-level tool invocations
//   - attempts/failures:     Provider attempts, per provider
//   - rate_limited:          429s from any provider
//   - mock_fallbacks:        Invocations answered by the mock responder
//   - exhausted:             Invocations where every provider failed
//   - degraded:              Results returned from a parse fallback
package monitoring

import (
	"sync"
	"sync/atomic"
)

// ProviderStats is a snapshot of one provider's counters.
type ProviderStats struct {
	Attempts    int64 `json:"attempts"`
	Successes   int64 `json:"successes"`
	Failures    int64 `json:"failures"`
	RateLimited int64 `json:"rate_limited"`
}

type providerCounters struct {
	attempts    atomic.Int64
	successes   atomic.Int64
	failures    atomic.Int64
	rateLimited atomic.Int64
}

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	invocations   atomic.Int64
	successes     atomic.Int64
	mockFallbacks atomic.Int64
	exhausted     atomic.Int64
	degraded      atomic.Int64
	auditFailures atomic.Int64

	mu        sync.RWMutex
	providers map[string]*providerCounters
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{providers: make(map[string]*providerCounters)}
}

func (mc *MetricsCollector) provider(name string) *providerCounters {
	mc.mu.RLock()
	pc, ok := mc.providers[name]
	mc.mu.RUnlock()
	if ok {
		return pc
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if pc, ok = mc.providers[name]; !ok {
		pc = &providerCounters{}
		mc.providers[name] = pc
	}
	return pc
}

// RecordInvocation records a top-level tool invocation.
func (mc *MetricsCollector) RecordInvocation(success, degraded bool) {
	mc.invocations.Add(1)
	if success {
		mc.successes.Add(1)
	}
	if degraded {
		mc.degraded.Add(1)
	}
}

// RecordAttempt records one provider attempt.
func (mc *MetricsCollector) RecordAttempt(provider string, success, rateLimited bool) {
	pc := mc.provider(provider)
	pc.attempts.Add(1)
	if success {
		pc.successes.Add(1)
		return
	}
	pc.failures.Add(1)
	if rateLimited {
		pc.rateLimited.Add(1)
	}
}

// RecordMockFallback records a mock response.
func (mc *MetricsCollector) RecordMockFallback() { mc.mockFallbacks.Add(1) }

// RecordExhausted records a dispatch where every provider failed.
func (mc *MetricsCollector) RecordExhausted() { mc.exhausted.Add(1) }

// RecordAuditFailure records a failed audit write.
func (mc *MetricsCollector) RecordAuditFailure() { mc.auditFailures.Add(1) }

// Stats returns current totals.
func (mc *MetricsCollector) Stats() map[string]int64 {
	var attempts, failures, rateLimited int64
	for _, ps := range mc.ProviderStats() {
		attempts += ps.Attempts
		failures += ps.Failures
		rateLimited += ps.RateLimited
	}
	return map[string]int64{
		"invocations":    mc.invocations.Load(),
		"successes":      mc.successes.Load(),
		"attempts":       attempts,
		"failures":       failures,
		"rate_limited":   rateLimited,
		"mock_fallbacks": mc.mockFallbacks.Load(),
		"exhausted":      mc.exhausted.Load(),
		"degraded":       mc.degraded.Load(),
		"audit_failures": mc.auditFailures.Load(),
	}
}

// ProviderStats returns a snapshot of per-provider counters.
func (mc *MetricsCollector) ProviderStats() map[string]ProviderStats {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make(map[string]ProviderStats, len(mc.providers))
	for name, pc := range mc.providers {
		out[name] = ProviderStats{
			Attempts:    pc.attempts.Load(),
			Successes:   pc.successes.Load(),
			Failures:    pc.failures.Load(),
			RateLimited: pc.rateLimited.Load(),
		}
	}
	return out
}
