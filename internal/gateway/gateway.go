// Package gateway is the HTTP layer in front of the dispatcher.
//
// DESIGN: One handler per concern:
//   - POST /api/ai/{tool}:                  decode, validate, dispatch, audit, respond
//   - GET  /api/ai/providers:               provider order, key counts, cursors
//   - POST /api/ai/providers/{name}/rotate: advance a provider's key cursor
//   - GET  /api/ai/stats:                   metrics snapshot
//   - GET  /api/ai/requests:                recent audit records
//   - GET  /health:                         liveness
//
// The dispatcher returns a result or a typed error; this package maps it to
// a status code and writes exactly one audit record per invocation. An audit
// failure is alerted and never changes the response.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/compresr/edu-ai-gateway/internal/adapters"
	"github.com/compresr/edu-ai-gateway/internal/config"
	"github.com/compresr/edu-ai-gateway/internal/dispatch"
	"github.com/compresr/edu-ai-gateway/internal/monitoring"
	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/store"
	"github.com/compresr/edu-ai-gateway/internal/tokens"
)

// Gateway serves the AI tool endpoints.
type Gateway struct {
	config     *config.Config
	registry   *providers.Registry
	rotator    *providers.KeyRotator
	dispatcher *dispatch.Dispatcher
	audit      store.Store

	logger        *monitoring.Logger
	requestLogger *monitoring.RequestLogger
	alerts        *monitoring.AlertManager
	metrics       *monitoring.MetricsCollector
	tracker       *monitoring.Tracker

	limiter *ipLimiter
	server  *http.Server
}

// Option customizes a Gateway.
type Option func(*options)

type options struct {
	logger     *monitoring.Logger
	httpClient *http.Client
	store      store.Store
	estimator  *tokens.Estimator
}

// WithLogger sets the logger (default: monitoring.New from config).
func WithLogger(l *monitoring.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithStore sets the audit store instead of building one from config.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithEstimator sets the prompt token estimator (default: chars/4).
func WithEstimator(e *tokens.Estimator) Option {
	return func(o *options) { o.estimator = e }
}

// New creates a gateway from configuration.
func New(cfg *config.Config, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = monitoring.New(cfg.Monitoring.LoggerConfig())
	}
	if o.estimator == nil {
		o.estimator = tokens.Fallback()
	}

	registry, err := providers.NewRegistry(cfg.ProviderConfigs(), adapters.NewRegistry(o.httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}
	rotator := providers.NewKeyRotator(registry)

	tracker, err := monitoring.NewTracker(cfg.Monitoring.TelemetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry tracker: %w", err)
	}

	audit := o.store
	if audit == nil {
		audit, err = store.New(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
	}

	alerts := monitoring.NewAlertManager(o.logger, cfg.Monitoring.AlertConfig())
	metrics := monitoring.NewMetricsCollector()

	dispatcher, err := dispatch.New(dispatch.Options{
		Registry:    registry,
		Rotator:     rotator,
		MockAllowed: cfg.MockAllowed(),
		Logger:      o.logger,
		Alerts:      alerts,
		Metrics:     metrics,
		Tracker:     tracker,
		Estimator:   o.estimator,
	})
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		config:        cfg,
		registry:      registry,
		rotator:       rotator,
		dispatcher:    dispatcher,
		audit:         audit,
		logger:        o.logger,
		requestLogger: monitoring.NewRequestLogger(o.logger),
		alerts:        alerts,
		metrics:       metrics,
		tracker:       tracker,
		limiter:       newIPLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}

	g.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      g.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	active := registry.ActiveProviders()
	names := make([]string, 0, len(active))
	for _, p := range active {
		names = append(names, p.Name)
	}
	g.logger.Info().
		Strs("providers", names).
		Bool("mock_allowed", cfg.MockAllowed()).
		Str("audit", auditType(cfg.Audit.Type)).
		Msg("gateway configured")
	if len(active) == 0 && !cfg.MockAllowed() {
		g.logger.Warn().Msg("no AI provider has API keys; tool requests will fail with 503")
	}

	return g, nil
}

// Handler returns the HTTP handler with the middleware chain applied.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(g.panicRecovery, g.loggingMiddleware, g.rateLimit, g.security)

	r.Get("/health", g.handleHealth)

	r.Route("/api/ai", func(r chi.Router) {
		r.Get("/providers", g.handleProviders)
		r.Post("/providers/{name}/rotate", g.handleRotate)
		r.Get("/stats", g.handleStats)
		r.Get("/requests", g.handleRecent)
		r.Post("/{tool}", g.handleTool)
	})

	return r
}

// Start starts the HTTP server. It blocks until the server stops.
func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	err := g.server.Shutdown(ctx)
	g.limiter.close()
	if closeErr := g.tracker.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if closeErr := g.audit.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close releases resources without a running server.
func (g *Gateway) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

func auditType(t string) string {
	if t == "" {
		return "memory"
	}
	return t
}
