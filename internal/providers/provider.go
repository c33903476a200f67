// Package providers holds the configured upstream LLM providers and their
// key rotation state.
//
// DESIGN: Registry is built once at startup from a static list of
// ProviderConfig. Order is fallback priority and never changes.
//   - ProviderConfig: immutable (name, endpoint, model, keys, family, timeout)
//   - ProviderState:  one rotation cursor per provider, owned by the Registry
//   - KeyRotator:     round-robin over a provider's keys through its state
//
// Each provider is bound to an Adapter for its family when the registry is
// built, so the dispatcher never branches on provider names.
package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// ErrConfiguration is returned when a provider has no usable keys.
var ErrConfiguration = errors.New("provider has no configured API keys")

// ErrUnknownProvider is returned for a name not present in the registry.
var ErrUnknownProvider = errors.New("unknown provider")

// Family identifies a request/response shape shared by several providers.
type Family string

const (
	// FamilyChatCompletion is the OpenAI-compatible chat completions shape.
	FamilyChatCompletion Family = "chat_completion"
	// FamilyGenerateContent is the Gemini generateContent shape.
	FamilyGenerateContent Family = "generate_content"
)

// DefaultFamily returns the family of a well-known provider name.
// Unknown names default to the chat completion shape.
func DefaultFamily(name string) Family {
	switch strings.ToLower(name) {
	case "gemini", "google":
		return FamilyGenerateContent
	default:
		return FamilyChatCompletion
	}
}

// ProviderConfig describes one upstream provider. Immutable after startup.
type ProviderConfig struct {
	Name    string
	Family  Family
	BaseURL string
	Model   string
	Keys    []string
	Timeout time.Duration

	// Headers are sent with every request (e.g. attribution headers).
	Headers map[string]string
}

// Enabled reports whether the provider has at least one key.
func (c ProviderConfig) Enabled() bool {
	return len(c.Keys) > 0
}

// ParseKeys splits a comma-separated credential value, trimming whitespace
// and discarding empty entries.
func ParseKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Completion is the raw output of one provider call.
type Completion struct {
	RawText    string
	TokensUsed int
}

// Adapter translates a prompt into one provider family's HTTP call.
// Implementations are stateless and safe for concurrent use.
type Adapter interface {
	// Family returns the shape this adapter speaks.
	Family() Family

	// Invoke calls the provider with the given key. The attachment is optional
	// and may be ignored by families that cannot carry it.
	Invoke(ctx context.Context, cfg ProviderConfig, apiKey, prompt string, attachment *tools.Attachment) (*Completion, error)
}

// AdapterLookup resolves the adapter for a family.
type AdapterLookup interface {
	Get(family Family) (Adapter, bool)
}
