// Package monitoring - telemetry.go records events to JSONL files.
//
// DESIGN: Tracker writes structured events as JSONL (one JSON object per line):
//   - AttemptEvent: Every provider attempt inside a dispatch
//   - RequestEvent: Every tool invocation through the gateway
//
// Events are appended to the file immediately for real-time logging.
// A nil or disabled Tracker ignores all calls.
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Tracker handles telemetry event recording to file and stdout.
type Tracker struct {
	config       TelemetryConfig
	logPath      string
	eventCount   int
	attemptCount int
	mu           sync.Mutex
}

// NewTracker creates a new telemetry tracker.
func NewTracker(cfg TelemetryConfig) (*Tracker, error) {
	t := &Tracker{
		config: cfg,
	}

	if !cfg.Enabled || cfg.LogPath == "" {
		return t, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0750); err != nil {
		return nil, err
	}
	t.logPath = cfg.LogPath
	if _, err := os.Stat(cfg.LogPath); os.IsNotExist(err) {
		if f, err := os.Create(cfg.LogPath); err == nil {
			f.Close()
		}
	}

	return t, nil
}

// appendJSONL appends a single JSON object as a line to the file.
func appendJSONL(path string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func (t *Tracker) enabled() bool {
	return t != nil && t.config.Enabled
}

// RecordAttempt records a provider attempt event.
func (t *Tracker) RecordAttempt(event *AttemptEvent) {
	if !t.enabled() {
		return
	}
	event.Type = "attempt"

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logPath != "" {
		if err := appendJSONL(t.logPath, event); err != nil {
			log.Error().Err(err).Str("path", t.logPath).Msg("telemetry: failed to write attempt event")
		} else {
			t.attemptCount++
		}
	}
}

// RecordRequest records a tool invocation event.
func (t *Tracker) RecordRequest(event *RequestEvent) {
	if !t.enabled() {
		return
	}
	event.Type = "request"

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.LogToStdout {
		reqID := event.RequestID
		if len(reqID) > 8 {
			reqID = reqID[:8]
		}
		log.Info().
			Str("request_id", reqID).
			Str("tool", event.Tool).
			Str("provider", event.Provider).
			Int("attempts", event.Attempts).
			Bool("success", event.Success).
			Msg("telemetry")
	}

	if t.logPath != "" {
		if err := appendJSONL(t.logPath, event); err != nil {
			log.Error().Err(err).Str("path", t.logPath).Msg("telemetry: failed to write request event")
		} else {
			t.eventCount++
		}
	}
}

// Close logs a session summary.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logPath != "" && (t.eventCount > 0 || t.attemptCount > 0) {
		log.Info().
			Str("path", t.logPath).
			Int("requests", t.eventCount).
			Int("attempts", t.attemptCount).
			Msg("telemetry: session complete")
	}

	return nil
}
