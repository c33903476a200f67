// Package dispatch runs a tool invocation against the configured providers.
//
// DESIGN: Providers are tried sequentially in configuration order. There is
// no parallel fan-out, no health-based reordering and no backoff between
// providers: a failure moves immediately to the next one.
//
// FLOW:
//  1. Build the prompt (provider-independent, built once)
//  2. For each active provider: take one key from the rotator, invoke the
//     family adapter under the provider's timeout, parse the raw text
//  3. Any adapter failure is classified, logged and recorded, then the next
//     provider is tried
//  4. On exhaustion: mock result when permitted, else *ExhaustedError
//
// Parse problems never count as provider failures; they set Result.Degraded.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compresr/edu-ai-gateway/internal/adapters"
	"github.com/compresr/edu-ai-gateway/internal/mock"
	"github.com/compresr/edu-ai-gateway/internal/monitoring"
	"github.com/compresr/edu-ai-gateway/internal/parser"
	"github.com/compresr/edu-ai-gateway/internal/prompts"
	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/tokens"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// Options configures a Dispatcher. Registry is required; everything else
// has a usable zero value.
type Options struct {
	Registry *providers.Registry
	Rotator  *providers.KeyRotator

	// MockAllowed permits the mock responder when no provider succeeded.
	MockAllowed bool

	Logger    *monitoring.Logger
	Alerts    *monitoring.AlertManager
	Metrics   *monitoring.MetricsCollector
	Tracker   *monitoring.Tracker
	Estimator *tokens.Estimator
}

// Dispatcher is the fallback loop over active providers.
type Dispatcher struct {
	registry    *providers.Registry
	rotator     *providers.KeyRotator
	mockAllowed bool

	logger    *monitoring.Logger
	reqLogger *monitoring.RequestLogger
	alerts    *monitoring.AlertManager
	metrics   *monitoring.MetricsCollector
	tracker   *monitoring.Tracker
	estimator *tokens.Estimator
}

// Attempt records one provider try within a dispatch.
type Attempt struct {
	Provider string
	KeyIndex int
	Duration time.Duration
	Err      error
}

// Outcome is a successful dispatch.
type Outcome struct {
	Result       *tools.Result
	ProviderName string
	Attempts     []Attempt
}

// New creates a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, errors.New("dispatch: registry is required")
	}

	d := &Dispatcher{
		registry:    opts.Registry,
		rotator:     opts.Rotator,
		mockAllowed: opts.MockAllowed,
		logger:      opts.Logger,
		alerts:      opts.Alerts,
		metrics:     opts.Metrics,
		tracker:     opts.Tracker,
		estimator:   opts.Estimator,
	}
	if d.rotator == nil {
		d.rotator = providers.NewKeyRotator(opts.Registry)
	}
	if d.logger == nil {
		d.logger = monitoring.Nop()
	}
	if d.alerts == nil {
		d.alerts = monitoring.NewAlertManager(d.logger, monitoring.AlertConfig{})
	}
	if d.metrics == nil {
		d.metrics = monitoring.NewMetricsCollector()
	}
	d.reqLogger = monitoring.NewRequestLogger(d.logger)

	return d, nil
}

// MockAllowed reports whether mock fallback is permitted.
func (d *Dispatcher) MockAllowed() bool { return d.mockAllowed }

// Dispatch runs inv against the providers in order and returns the first
// successful result.
//
// Errors: tools.ErrUnsupportedTool for unknown tools, ErrNoProvidersConfigured
// when nothing is enabled and mock is not permitted, *ExhaustedError when
// every provider failed, or the context error if ctx ended mid-dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *tools.Invocation) (*Outcome, error) {
	prompt, err := prompts.Build(inv)
	if err != nil {
		return nil, err
	}

	requestID := monitoring.RequestIDFromContext(ctx)
	active := d.registry.ActiveProviders()

	if len(active) == 0 {
		if d.mockAllowed {
			return d.mockOutcome(requestID, inv, nil)
		}
		d.logger.Error().
			Str("request_id", requestID).
			Str("tool", inv.Tool.String()).
			Msg("no providers configured")
		return nil, ErrNoProvidersConfigured
	}

	promptTokens := d.estimator.Count(prompt)
	attempts := make([]Attempt, 0, len(active))
	var lastErr error

	for i, cfg := range active {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dispatch %s: %w", inv.Tool, err)
		}

		result, attempt := d.try(ctx, requestID, inv, cfg, i+1, prompt, promptTokens)
		attempts = append(attempts, attempt)
		if attempt.Err == nil {
			d.logger.Info().
				Str("request_id", requestID).
				Str("tool", inv.Tool.String()).
				Str("provider", cfg.Name).
				Int("attempts", len(attempts)).
				Int("tokens_used", result.TokensUsed).
				Bool("degraded", result.Degraded).
				Msg("dispatch succeeded")
			return &Outcome{Result: result, ProviderName: cfg.Name, Attempts: attempts}, nil
		}
		lastErr = attempt.Err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dispatch %s: %w", inv.Tool, ctxErr)
		}
	}

	if d.mockAllowed {
		return d.mockOutcome(requestID, inv, attempts)
	}

	d.metrics.RecordExhausted()
	exhausted := &ExhaustedError{Tool: inv.Tool, Attempts: attempts, Last: lastErr}
	d.alerts.FlagExhausted(requestID, inv.Tool.String(), len(attempts), lastErr)
	return nil, exhausted
}

// try performs one provider attempt. Exactly one key is taken per call.
func (d *Dispatcher) try(ctx context.Context, requestID string, inv *tools.Invocation, cfg providers.ProviderConfig, n int, prompt string, promptTokens int) (*tools.Result, Attempt) {
	attempt := Attempt{Provider: cfg.Name, KeyIndex: -1}

	adapter, err := d.registry.Adapter(cfg.Name)
	if err != nil {
		attempt.Err = err
		d.recordFailure(requestID, inv, cfg, n, promptTokens, &attempt)
		return nil, attempt
	}

	key, keyIndex, err := d.rotator.NextKey(cfg.Name)
	if err != nil {
		attempt.Err = err
		d.recordFailure(requestID, inv, cfg, n, promptTokens, &attempt)
		return nil, attempt
	}
	attempt.KeyIndex = keyIndex

	attachment := inv.ForwardedAttachment()
	d.reqLogger.LogAttempt(&monitoring.AttemptInfo{
		RequestID:       requestID,
		Tool:            inv.Tool.String(),
		Provider:        cfg.Name,
		Model:           cfg.Model,
		Attempt:         n,
		KeyIndex:        keyIndex,
		PromptTokensEst: promptTokens,
		HasAttachment:   attachment != nil,
	})

	timeout := adapters.TimeoutFor(cfg)
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	completion, err := adapter.Invoke(attemptCtx, cfg, key, prompt, attachment)
	attempt.Duration = time.Since(start)

	if err == nil && completion == nil {
		err = &adapters.UpstreamError{Kind: adapters.KindMalformed, Provider: cfg.Name, Err: errors.New("adapter returned no completion")}
	}
	if err != nil {
		attempt.Err = err
		d.recordFailure(requestID, inv, cfg, n, promptTokens, &attempt)
		if adapters.KindOf(err) == adapters.KindTimeout {
			d.alerts.FlagUpstreamTimeout(requestID, cfg.Name, timeout)
		}
		return nil, attempt
	}

	parsed := parser.Parse(inv.Tool, completion.RawText)
	if parsed.Degraded {
		d.logger.Warn().
			Str("request_id", requestID).
			Str("tool", inv.Tool.String()).
			Str("provider", cfg.Name).
			Msg("model output was not valid structured data, returning degraded result")
	}

	d.metrics.RecordAttempt(cfg.Name, true, false)
	d.tracker.RecordAttempt(&monitoring.AttemptEvent{
		RequestID:       requestID,
		Timestamp:       start,
		Tool:            inv.Tool.String(),
		Provider:        cfg.Name,
		Model:           cfg.Model,
		Attempt:         n,
		KeyIndex:        keyIndex,
		PromptTokensEst: promptTokens,
		TokensUsed:      completion.TokensUsed,
		Success:         true,
		LatencyMs:       attempt.Duration.Milliseconds(),
	})

	return &tools.Result{
		Payload:        parsed.Payload,
		TokensUsed:     completion.TokensUsed,
		ProcessingTime: attempt.Duration,
		Provider:       cfg.Name,
		Degraded:       parsed.Degraded,
	}, attempt
}

// recordFailure logs, alerts, counts and traces a failed attempt.
func (d *Dispatcher) recordFailure(requestID string, inv *tools.Invocation, cfg providers.ProviderConfig, n, promptTokens int, attempt *Attempt) {
	kind := classify(attempt.Err)
	rateLimited := kind == adapters.KindRateLimited

	switch kind {
	case adapters.KindRateLimited:
		d.alerts.FlagQuotaExceeded(requestID, cfg.Name, attempt.KeyIndex)
	case adapters.KindContentBlocked:
		d.alerts.FlagContentBlocked(requestID, cfg.Name, attempt.Err.Error())
	default:
		d.alerts.FlagProviderError(requestID, cfg.Name, statusCode(attempt.Err), attempt.Err.Error())
	}

	d.logger.Warn().
		Str("request_id", requestID).
		Str("tool", inv.Tool.String()).
		Str("provider", cfg.Name).
		Int("attempt", n).
		Str("kind", string(kind)).
		Dur("latency", attempt.Duration).
		Err(attempt.Err).
		Msg("provider attempt failed, trying next")

	d.metrics.RecordAttempt(cfg.Name, false, rateLimited)
	d.tracker.RecordAttempt(&monitoring.AttemptEvent{
		RequestID:       requestID,
		Timestamp:       time.Now(),
		Tool:            inv.Tool.String(),
		Provider:        cfg.Name,
		Model:           cfg.Model,
		Attempt:         n,
		KeyIndex:        attempt.KeyIndex,
		PromptTokensEst: promptTokens,
		Success:         false,
		ErrorKind:       string(kind),
		Error:           attempt.Err.Error(),
		LatencyMs:       attempt.Duration.Milliseconds(),
	})
}

func (d *Dispatcher) mockOutcome(requestID string, inv *tools.Invocation, attempts []Attempt) (*Outcome, error) {
	result, err := mock.Respond(inv)
	if err != nil {
		return nil, err
	}
	d.metrics.RecordMockFallback()
	d.alerts.FlagMockFallback(requestID, inv.Tool.String(), len(attempts))
	return &Outcome{Result: result, ProviderName: mock.ProviderName, Attempts: attempts}, nil
}

// classify maps an attempt error to a taxonomy kind for logs and telemetry.
func classify(err error) adapters.ErrorKind {
	if kind := adapters.KindOf(err); kind != "" {
		return kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return adapters.KindTimeout
	}
	if errors.Is(err, providers.ErrConfiguration) {
		return "configuration"
	}
	return adapters.KindTransport
}

func statusCode(err error) int {
	var ue *adapters.UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
