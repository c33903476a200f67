// Package monitoring - alerts.go flags anomalies and errors.
//
// DESIGN: AlertManager logs notable events at appropriate levels:
//   - FlagQuotaExceeded:     Warn when a provider answers 429
//   - FlagProviderError:     Warn on any other failed provider attempt
//   - FlagContentBlocked:    Warn when a provider returns no usable content
//   - FlagUpstreamTimeout:   Error when a provider attempt times out
//   - FlagMockFallback:      Warn when the mock responder answered
//   - FlagExhausted:         Error when every provider failed
//   - FlagAuditWriteFailure: Error when the audit record could not be stored
//   - FlagHighLatency:       Warn when an invocation exceeds threshold
//   - FlagPanic:             Error on recovered panics
//
// Messages never include API keys.
package monitoring

import "time"

// AlertManager flags anomalies and errors.
type AlertManager struct {
	logger               *Logger
	highLatencyThreshold time.Duration
}

// NewAlertManager creates a new alert manager.
func NewAlertManager(logger *Logger, cfg AlertConfig) *AlertManager {
	threshold := cfg.HighLatencyThreshold
	if threshold == 0 {
		threshold = 30 * time.Second
	}
	return &AlertManager{logger: logger, highLatencyThreshold: threshold}
}

// FlagQuotaExceeded logs a rate-limited provider attempt.
func (am *AlertManager) FlagQuotaExceeded(requestID, provider string, keyIndex int) {
	am.logger.Warn().
		Str("request_id", requestID).
		Str("provider", provider).
		Int("key_index", keyIndex).
		Msg("Quota Exceeded")
}

// FlagProviderError logs a failed provider attempt.
func (am *AlertManager) FlagProviderError(requestID, provider string, statusCode int, errorMsg string) {
	event := am.logger.Warn().
		Str("request_id", requestID).
		Str("provider", provider).
		Str("error", errorMsg)
	if statusCode != 0 {
		event = event.Int("status", statusCode)
	}
	event.Msg("provider_error")
}

// FlagContentBlocked logs a 2xx provider response without content.
func (am *AlertManager) FlagContentBlocked(requestID, provider, reason string) {
	am.logger.Warn().
		Str("request_id", requestID).
		Str("provider", provider).
		Str("reason", reason).
		Msg("content_blocked")
}

// FlagUpstreamTimeout logs upstream timeout.
func (am *AlertManager) FlagUpstreamTimeout(requestID, provider string, timeout time.Duration) {
	am.logger.Error().
		Str("request_id", requestID).
		Str("provider", provider).
		Dur("timeout", timeout).
		Msg("upstream_timeout")
}

// FlagMockFallback logs a mock response standing in for the providers.
func (am *AlertManager) FlagMockFallback(requestID, tool string, attempts int) {
	am.logger.Warn().
		Str("request_id", requestID).
		Str("tool", tool).
		Int("attempts", attempts).
		Msg("mock_fallback")
}

// FlagExhausted logs a dispatch in which every provider failed.
func (am *AlertManager) FlagExhausted(requestID, tool string, attempts int, err error) {
	am.logger.Error().
		Str("request_id", requestID).
		Str("tool", tool).
		Int("attempts", attempts).
		Err(err).
		Msg("providers_exhausted")
}

// FlagAuditWriteFailure logs a failed audit write.
func (am *AlertManager) FlagAuditWriteFailure(requestID, tool string, err error) {
	am.logger.Error().
		Str("request_id", requestID).
		Str("tool", tool).
		Err(err).
		Msg("audit_write_failed")
}

// FlagHighLatency logs when invocation latency exceeds threshold.
func (am *AlertManager) FlagHighLatency(requestID string, latency time.Duration, provider, tool string) {
	if latency < am.highLatencyThreshold {
		return
	}
	am.logger.Warn().
		Str("request_id", requestID).
		Dur("latency", latency).
		Str("provider", provider).
		Str("tool", tool).
		Msg("high_latency")
}

// FlagInvalidRequest logs invalid request.
func (am *AlertManager) FlagInvalidRequest(requestID, reason string) {
	am.logger.Debug().
		Str("request_id", requestID).
		Str("reason", reason).
		Msg("invalid_request")
}

// FlagPanic logs recovered panic.
func (am *AlertManager) FlagPanic(requestID string, panicValue interface{}, stack string) {
	am.logger.Error().
		Str("request_id", requestID).
		Interface("panic", panicValue).
		Str("stack", stack).
		Msg("panic_recovered")
}
