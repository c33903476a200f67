// Package monitoring - types.go defines shared types.
//
// DESIGN: These types are used by gateway/, dispatch/ and monitoring/.
// Defined here ONCE to avoid duplication and circular imports.
//
// TYPES:
//   - AttemptEvent:  Telemetry data for each provider attempt
//   - RequestEvent:  Telemetry data for each tool invocation
//   - Config types:  TelemetryConfig, LoggerConfig, AlertConfig
package monitoring

import "time"

// =============================================================================
// EVENT TYPES - Structured data for telemetry recording
// =============================================================================

// AttemptEvent captures one provider attempt inside a dispatch.
type AttemptEvent struct {
	Type            string    `json:"type"`
	RequestID       string    `json:"request_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Tool            string    `json:"tool"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model,omitempty"`
	Attempt         int       `json:"attempt"`
	KeyIndex        int       `json:"key_index"`
	PromptTokensEst int       `json:"prompt_tokens_est,omitempty"`
	TokensUsed      int       `json:"tokens_used,omitempty"`
	Success         bool      `json:"success"`
	ErrorKind       string    `json:"error_kind,omitempty"`
	Error           string    `json:"error,omitempty"`
	LatencyMs       int64     `json:"latency_ms"`
}

// RequestEvent captures one tool invocation through the gateway.
type RequestEvent struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	Tool       string    `json:"tool"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Provider   string    `json:"provider"`
	Attempts   int       `json:"attempts"`
	StatusCode int       `json:"status_code"`
	TokensUsed int       `json:"tokens_used"`
	Degraded   bool      `json:"degraded,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
}

// =============================================================================
// CONFIG TYPES
// =============================================================================

// TelemetryConfig contains telemetry configuration.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	LogPath     string `yaml:"log_path"`
	LogToStdout bool   `yaml:"log_to_stdout"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// AlertConfig contains alert thresholds.
type AlertConfig struct {
	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"`
}
