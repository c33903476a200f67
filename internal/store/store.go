// Package store persists one audit record per tool invocation.
//
// DESIGN: The gateway writes a Record after every top-level dispatch,
// successful or not. Backends:
//   - MemoryStore: bounded ring, newest first (default, tests)
//   - SQLiteStore: table ai_requests via modernc.org/sqlite (pure Go)
//   - NopStore:    audit disabled
//
// Write fills in ID and CreatedAt when they are empty.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UnknownProvider is recorded when no provider produced the result.
const UnknownProvider = "unknown"

// DefaultMemoryCapacity bounds the in-memory store.
const DefaultMemoryCapacity = 1000

// Record is one audited tool invocation.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"` // empty for anonymous
	Tool         string    `json:"tool"`
	Input        string    `json:"input"`
	Output       string    `json:"output,omitempty"` // empty on failure
	Provider     string    `json:"provider"`
	TokensUsed   int       `json:"tokensUsed"`
	ProcessingMs int64     `json:"processingTime"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	Degraded     bool      `json:"degraded,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store defines the interface for audit persistence.
type Store interface {
	// Write persists one record.
	Write(ctx context.Context, rec *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Type     string `yaml:"type"` // memory, sqlite, none
	Path     string `yaml:"path"`
	Capacity int    `yaml:"capacity"`
}

// New creates the store selected by cfg.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(cfg.Capacity), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown audit store type %q", cfg.Type)
	}
}

// prepare fills defaults on rec before it is stored.
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Provider == "" {
		rec.Provider = UnknownProvider
	}
}

// =============================================================================
// MEMORY
// =============================================================================

// MemoryStore keeps the most recent records in memory.
type MemoryStore struct {
	records  []Record
	capacity int
	mu       sync.RWMutex
}

// NewMemoryStore creates an in-memory store holding at most capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Write stores a record, evicting the oldest when full.
func (s *MemoryStore) Write(_ context.Context, rec *Record) error {
	prepare(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *rec)
	if over := len(s.records) - s.capacity; over > 0 {
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// =============================================================================
// NOP
// =============================================================================

// NopStore discards all records.
type NopStore struct{}

func (NopStore) Write(context.Context, *Record) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Record, error) { return nil, nil }

func (NopStore) Close() error { return nil }
