// Package adapters provides provider-family-specific request handling.
//
// DESIGN: Upstream LLM APIs differ in request shape, auth and response
// envelope. One adapter per family hides those differences behind
// providers.Adapter:
//
//   - ChatCompletion:  OpenAI-compatible /chat/completions (OpenRouter, Groq, ...)
//   - GenerateContent: Gemini :generateContent with inline binary parts
//
// FLOW:
//  1. Registry is built with one adapter per family
//  2. providers.Registry binds each configured provider to its family adapter
//  3. Dispatcher calls Invoke(cfg, key, prompt, attachment)
//  4. Adapter builds the body, sends it, classifies the status, reads the envelope
//
// Envelope problems (missing choices/candidates) surface as UpstreamError,
// never as parse degradation, which only applies to the model's text.
//
// To add a new family: implement providers.Adapter and register it in NewRegistry.
package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/compresr/edu-ai-gateway/internal/providers"
)

const (
	// DefaultChatTimeout applies to chat completion providers without a timeout.
	DefaultChatTimeout = 60 * time.Second

	// DefaultGenerateTimeout applies to generateContent providers without a timeout.
	DefaultGenerateTimeout = 45 * time.Second

	// maxResponseSize prevents OOM on unexpectedly large API responses (10MB).
	maxResponseSize = 10 * 1024 * 1024

	// maxErrorBodyLen limits error body in error messages to avoid log bloat.
	maxErrorBodyLen = 500
)

// DefaultTimeout returns the network timeout for a family.
func DefaultTimeout(family providers.Family) time.Duration {
	if family == providers.FamilyGenerateContent {
		return DefaultGenerateTimeout
	}
	return DefaultChatTimeout
}

// TimeoutFor returns the configured timeout of a provider, or its family default.
func TimeoutFor(cfg providers.ProviderConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout(cfg.Family)
}

// BaseAdapter provides common functionality for all adapters.
type BaseAdapter struct {
	family providers.Family
	client *http.Client
}

// Family returns the provider family.
func (a *BaseAdapter) Family() providers.Family {
	return a.family
}

// post sends body to endpoint and returns the response body of a 2xx reply.
// Non-2xx responses, timeouts and network failures are returned as *UpstreamError.
func (a *BaseAdapter) post(ctx context.Context, cfg providers.ProviderConfig, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", cfg.Name, redactURL(err))
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		err = redactURL(err)
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &UpstreamError{Kind: KindTimeout, Provider: cfg.Name, Err: err}
		}
		return nil, &UpstreamError{Kind: KindTransport, Provider: cfg.Name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &UpstreamError{Kind: KindTransport, Provider: cfg.Name, Err: fmt.Errorf("failed to read response: %w", redactURL(err))}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(cfg.Name, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// redactURL strips the request URL from net/http errors. The generateContent
// family carries the API key in the query string.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "... (truncated)"
	}
	return s
}
