package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/compresr/edu-ai-gateway/internal/dispatch"
	"github.com/compresr/edu-ai-gateway/internal/monitoring"
	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/store"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// auditWriteTimeout bounds the audit write after the response is decided.
const auditWriteTimeout = 5 * time.Second

// =============================================================================
// TOOL HANDLER
// =============================================================================

// handleTool serves POST /api/ai/{tool}.
func (g *Gateway) handleTool(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := monitoring.RequestIDFromContext(r.Context())

	tool, err := tools.ParseTool(chi.URLParam(r, "tool"))
	if err != nil {
		g.alerts.FlagInvalidRequest(requestID, err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := g.decodeInvocation(w, r, tool)
	if err != nil {
		g.alerts.FlagInvalidRequest(requestID, err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := inv.Validate(); err != nil {
		g.alerts.FlagInvalidRequest(requestID, err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, dispatchErr := g.dispatcher.Dispatch(r.Context(), inv)

	rec := &store.Record{
		UserID: inv.UserID,
		Tool:   tool.String(),
		Input:  serializeInput(inv),
	}
	event := &monitoring.RequestEvent{
		RequestID: requestID,
		Timestamp: start,
		Tool:      tool.String(),
		ClientIP:  getClientIP(r),
	}

	if dispatchErr != nil {
		status, message := errorStatus(tool, dispatchErr)
		rec.Provider = store.UnknownProvider
		rec.Success = false
		rec.Error = dispatchErr.Error()
		rec.ProcessingMs = time.Since(start).Milliseconds()

		g.writeAudit(r.Context(), requestID, rec)
		g.metrics.RecordInvocation(false, false)

		event.Provider = store.UnknownProvider
		event.StatusCode = status
		event.Error = dispatchErr.Error()
		event.Attempts = attemptCount(dispatchErr)
		event.LatencyMs = rec.ProcessingMs
		g.tracker.RecordRequest(event)

		g.requestLogger.LogResponse(&monitoring.ResponseInfo{
			RequestID:  requestID,
			Tool:       tool.String(),
			Provider:   store.UnknownProvider,
			StatusCode: status,
			Latency:    time.Since(start),
		})

		writeError(w, status, message)
		return
	}

	res := outcome.Result
	rec.Provider = outcome.ProviderName
	rec.TokensUsed = res.TokensUsed
	rec.ProcessingMs = res.ProcessingMs()
	rec.Success = true
	rec.Degraded = res.Degraded
	if out, err := json.Marshal(res.Payload); err == nil {
		rec.Output = string(out)
	}

	g.writeAudit(r.Context(), requestID, rec)
	g.metrics.RecordInvocation(true, res.Degraded)
	g.alerts.FlagHighLatency(requestID, time.Since(start), outcome.ProviderName, tool.String())

	event.Provider = outcome.ProviderName
	event.Attempts = len(outcome.Attempts)
	event.StatusCode = http.StatusOK
	event.TokensUsed = res.TokensUsed
	event.Degraded = res.Degraded
	event.Success = true
	event.LatencyMs = time.Since(start).Milliseconds()
	g.tracker.RecordRequest(event)

	g.requestLogger.LogResponse(&monitoring.ResponseInfo{
		RequestID:  requestID,
		Tool:       tool.String(),
		Provider:   outcome.ProviderName,
		StatusCode: http.StatusOK,
		Degraded:   res.Degraded,
		Latency:    time.Since(start),
	})

	writeJSON(w, http.StatusOK, ToolResponse{
		Success:        true,
		Data:           res.Payload,
		Provider:       outcome.ProviderName,
		TokensUsed:     res.TokensUsed,
		ProcessingTime: res.ProcessingMs(),
		Degraded:       res.Degraded,
	})
}

// writeAudit stores rec. Failures are alerted and swallowed; the caller
// still returns the dispatch result or the original error.
func (g *Gateway) writeAudit(ctx context.Context, requestID string, rec *store.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := g.audit.Write(ctx, rec); err != nil {
		g.metrics.RecordAuditFailure()
		g.alerts.FlagAuditWriteFailure(requestID, rec.Tool, err)
	}
}

// errorStatus maps a dispatch error to the status and the message shown to
// the caller. Only the configuration error is surfaced verbatim.
func errorStatus(tool tools.Tool, err error) (int, string) {
	switch {
	case errors.Is(err, tools.ErrUnsupportedTool), errors.Is(err, tools.ErrInvalidParams):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, dispatch.ErrNoProvidersConfigured):
		return http.StatusServiceUnavailable, dispatch.ErrNoProvidersConfigured.Error()
	default:
		return http.StatusInternalServerError, fmt.Sprintf("server error performing %s", tool)
	}
}

func attemptCount(err error) int {
	var exhausted *dispatch.ExhaustedError
	if errors.As(err, &exhausted) {
		return len(exhausted.Attempts)
	}
	return 0
}

// =============================================================================
// REQUEST DECODING
// =============================================================================

// decodeInvocation reads the JSON body into an Invocation. Numeric fields
// accept numbers or numeric strings; subjects accept an array or a
// comma-separated string.
func (g *Gateway) decodeInvocation(w http.ResponseWriter, r *http.Request, tool tools.Tool) (*tools.Invocation, error) {
	limit := g.config.Server.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read request body: %v", tools.ErrInvalidParams, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: request body is not valid JSON", tools.ErrInvalidParams)
	}

	doc := gjson.ParseBytes(body)
	inv := &tools.Invocation{
		Tool:   tool,
		UserID: monitoring.UserIDFromContext(r.Context()),
		Params: tools.Params{
			Text:          doc.Get("text").String(),
			Type:          doc.Get("type").String(),
			Length:        doc.Get("length").String(),
			NumQuestions:  int(doc.Get("numQuestions").Int()),
			Difficulty:    doc.Get("difficulty").String(),
			Question:      doc.Get("question").String(),
			Context:       doc.Get("context").String(),
			Subjects:      subjects(doc.Get("subjects")),
			TimeAvailable: doc.Get("timeAvailable").String(),
			Goals:         doc.Get("goals").String(),
			NumCards:      int(doc.Get("numCards").Int()),
		},
	}

	if file := doc.Get("file"); file.IsObject() {
		inv.ExtractedText = file.Get("extractedText").String()
		if raw := file.Get("data").String(); raw != "" {
			data, mimeType, err := decodeFileData(raw, file.Get("mimeType").String())
			if err != nil {
				return nil, err
			}
			inv.Attachment = &tools.Attachment{Data: data, MIMEType: mimeType}
		}
	}

	return inv, nil
}

func subjects(v gjson.Result) []string {
	var raw []string
	if v.IsArray() {
		for _, s := range v.Array() {
			raw = append(raw, s.String())
		}
	} else if v.Exists() {
		raw = strings.Split(v.String(), ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeFileData decodes standard base64, optionally wrapped in a data URI
// which then also supplies the MIME type.
func decodeFileData(raw, mimeType string) ([]byte, string, error) {
	if strings.HasPrefix(raw, "data:") {
		header, payload, ok := strings.Cut(raw, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("%w: file.data is not a base64 data URI", tools.ErrInvalidParams)
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		raw = payload
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: file.data is not valid base64", tools.ErrInvalidParams)
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return data, mimeType, nil
}

func serializeInput(inv *tools.Invocation) string {
	in := auditInput{Params: inv.Params}
	if inv.Attachment != nil || inv.ExtractedText != "" {
		in.File = &auditFile{HasExtractedText: inv.ExtractedText != ""}
		if inv.Attachment != nil {
			in.File.MIMEType = inv.Attachment.MIMEType
			in.File.Size = len(inv.Attachment.Data)
		}
	}
	data, err := json.Marshal(in)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// handleProviders serves GET /api/ai/providers.
func (g *Gateway) handleProviders(w http.ResponseWriter, r *http.Request) {
	all := g.registry.AllProviders()
	views := make([]ProviderView, 0, len(all))
	for i, p := range all {
		view := ProviderView{
			Order:    i + 1,
			Name:     p.Name,
			Family:   string(p.Family),
			Model:    p.Model,
			Enabled:  p.Enabled(),
			KeyCount: len(p.Keys),
		}
		if cursor, err := g.rotator.Cursor(p.Name); err == nil {
			view.Cursor = cursor
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleRotate serves POST /api/ai/providers/{name}/rotate.
func (g *Gateway) handleRotate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := g.rotator.ForceRotate(name); err != nil {
		switch {
		case errors.Is(err, providers.ErrUnknownProvider):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, providers.ErrConfiguration):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	cursor, _ := g.rotator.Cursor(name)
	g.logger.ForRequest(r.Context()).Info().
		Str("provider", name).
		Int("cursor", cursor).
		Msg("key rotated")
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "cursor": cursor})
}

// handleStats serves GET /api/ai/stats.
func (g *Gateway) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Totals:    g.metrics.Stats(),
		Providers: g.metrics.ProviderStats(),
	})
}

// handleRecent serves GET /api/ai/requests?limit=N.
func (g *Gateway) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := g.audit.Recent(r.Context(), limit)
	if err != nil {
		g.logger.ForRequest(r.Context()).Error().Err(err).Msg("failed to read audit records")
		writeError(w, http.StatusInternalServerError, "failed to read audit records")
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleHealth serves GET /health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		ActiveProviders: len(g.registry.ActiveProviders()),
		MockAllowed:     g.dispatcher.MockAllowed(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}
