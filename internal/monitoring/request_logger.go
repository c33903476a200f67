// Package monitoring - request_logger.go logs invocation lifecycle.
//
// DESIGN: Structured logging for request tracing at DEBUG level:
//   - LogIncoming:  Request received from client
//   - LogAttempt:   Request sent to a provider
//   - LogResponse:  Response sent to client
package monitoring

import (
	"net/http"
	"time"
)

// RequestLogger logs HTTP request lifecycle events.
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger creates a new request logger.
func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// RequestInfo contains incoming request information.
type RequestInfo struct {
	RequestID  string
	Method     string
	Path       string
	RemoteAddr string
	BodySize   int
	StartTime  time.Time
}

// NewRequestInfo creates RequestInfo from an HTTP request.
func NewRequestInfo(r *http.Request, requestID string, bodySize int) *RequestInfo {
	return &RequestInfo{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		BodySize:   bodySize,
		StartTime:  time.Now(),
	}
}

// LogIncoming logs an incoming request.
func (rl *RequestLogger) LogIncoming(info *RequestInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("method", info.Method).
		Str("path", info.Path).
		Int("body_size", info.BodySize).
		Msg("incoming")
}

// AttemptInfo describes one outgoing provider attempt.
type AttemptInfo struct {
	RequestID       string
	Tool            string
	Provider        string
	Model           string
	Attempt         int
	KeyIndex        int
	PromptTokensEst int
	HasAttachment   bool
}

// LogAttempt logs an outgoing provider attempt. The key itself is never logged.
func (rl *RequestLogger) LogAttempt(info *AttemptInfo) {
	event := rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("tool", info.Tool).
		Str("provider", info.Provider).
		Str("model", info.Model).
		Int("attempt", info.Attempt).
		Int("key_index", info.KeyIndex).
		Int("prompt_tokens_est", info.PromptTokensEst)
	if info.HasAttachment {
		event = event.Bool("attachment", true)
	}
	event.Msg("attempt")
}

// ResponseInfo contains response information.
type ResponseInfo struct {
	RequestID  string
	Tool       string
	Provider   string
	StatusCode int
	Degraded   bool
	Latency    time.Duration
}

// LogResponse logs a response.
func (rl *RequestLogger) LogResponse(info *ResponseInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("tool", info.Tool).
		Str("provider", info.Provider).
		Int("status", info.StatusCode).
		Bool("degraded", info.Degraded).
		Dur("latency", info.Latency).
		Msg("response")
}
