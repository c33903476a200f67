// Package gateway types - request/response shapes for the HTTP layer.
//
// DESIGN: Types used by the gateway for:
//   - Tool responses (success and error envelopes)
//   - Admin views (providers, stats, health)
//   - Audit input serialization
//
// Field names are camelCase to match the web client.
package gateway

import (
	"github.com/compresr/edu-ai-gateway/internal/monitoring"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// Header names.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
)

// DefaultMaxBodyBytes caps request bodies when server.max_body_bytes is 0.
const DefaultMaxBodyBytes = 20 << 20

// MaxRateLimitBuckets bounds the number of tracked client IPs.
const MaxRateLimitBuckets = 10000

// =============================================================================
// TOOL RESPONSES
// =============================================================================

// ToolResponse is the success envelope for POST /api/ai/{tool}.
type ToolResponse struct {
	Success        bool          `json:"success"`
	Data           tools.Payload `json:"data"`
	Provider       string        `json:"provider"`
	TokensUsed     int           `json:"tokensUsed"`
	ProcessingTime int64         `json:"processingTime"` // milliseconds
	Degraded       bool          `json:"degraded"`
}

// ErrorResponse is the failure envelope for every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// =============================================================================
// ADMIN VIEWS
// =============================================================================

// ProviderView describes one configured provider. Keys are never exposed.
type ProviderView struct {
	Order    int    `json:"order"`
	Name     string `json:"name"`
	Family   string `json:"family"`
	Model    string `json:"model"`
	Enabled  bool   `json:"enabled"`
	KeyCount int    `json:"keyCount"`
	Cursor   int    `json:"cursor"`
}

// StatsResponse is the body of GET /api/ai/stats.
type StatsResponse struct {
	Totals    map[string]int64                    `json:"totals"`
	Providers map[string]monitoring.ProviderStats `json:"providers"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	ActiveProviders int    `json:"activeProviders"`
	MockAllowed     bool   `json:"mockAllowed"`
}

// =============================================================================
// AUDIT
// =============================================================================

// auditInput is the serialized input stored with each audit record.
// Attachment bytes are summarized, never stored.
type auditInput struct {
	tools.Params
	File *auditFile `json:"file,omitempty"`
}

type auditFile struct {
	MIMEType         string `json:"mimeType"`
	Size             int    `json:"size"`
	HasExtractedText bool   `json:"hasExtractedText"`
}
