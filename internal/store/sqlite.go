package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to the ai_requests table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite audit store requires a path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ai_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		tool TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT,
		provider TEXT NOT NULL,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		processing_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error TEXT,
		degraded INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ai_requests_created ON ai_requests(created_at);
	CREATE INDEX IF NOT EXISTS idx_ai_requests_user ON ai_requests(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write inserts one record.
func (s *SQLiteStore) Write(ctx context.Context, rec *Record) error {
	prepare(rec)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_requests
			(id, user_id, tool, input, output, provider, tokens_used, processing_ms, success, error, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		nullString(rec.UserID),
		rec.Tool,
		rec.Input,
		nullString(rec.Output),
		rec.Provider,
		rec.TokensUsed,
		rec.ProcessingMs,
		rec.Success,
		nullString(rec.Error),
		rec.Degraded,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tool, input, output, provider, tokens_used, processing_ms, success, error, degraded, created_at
		FROM ai_requests
		ORDER BY rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                    Record
			userID, output, errMsg sql.NullString
			createdAt              time.Time
		)
		if err := rows.Scan(&rec.ID, &userID, &rec.Tool, &rec.Input, &output, &rec.Provider,
			&rec.TokensUsed, &rec.ProcessingMs, &rec.Success, &errMsg, &rec.Degraded, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.UserID = userID.String
		rec.Output = output.String
		rec.Error = errMsg.String
		rec.CreatedAt = createdAt
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
