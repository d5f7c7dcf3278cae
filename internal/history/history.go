// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records completed generations in a local SQLite log so
// users can review what they asked for and regenerate past prompts.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrClosed indicates the log has been closed.
var ErrClosed = errors.New("history log closed")

// schema creates the generation log table.
const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	prompt      TEXT NOT NULL,
	category    TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generations_user ON generations(user_id, created_at DESC);
`

// =============================================================================
// GENERATION LOG
// =============================================================================

// Record is one logged generation.
type Record struct {
	ID         int64
	UserID     string
	Prompt     string
	Category   string
	ChunkCount int
	Duration   time.Duration
	CreatedAt  time.Time
}

// Log is the SQLite-backed generation history.
type Log struct {
	db *sql.DB
}

// DefaultPath returns the default history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".reelcraft", "history.db"), nil
}

// Open opens (and if necessary creates) the history database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite supports one writer at a time; keep the pool at one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Append records a completed generation.
func (l *Log) Append(rec Record) error {
	if l.db == nil {
		return ErrClosed
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := l.db.Exec(
		`INSERT INTO generations (user_id, prompt, category, chunk_count, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Prompt, rec.Category, rec.ChunkCount, rec.Duration.Milliseconds(), createdAt.Unix(),
	)
	return err
}

// Recent returns the latest generations for userID, newest first, up to
// limit entries.
func (l *Log) Recent(userID string, limit int) ([]Record, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		`SELECT id, user_id, prompt, category, chunk_count, duration_ms, created_at
		 FROM generations WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var durationMs, createdAt int64
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Prompt, &rec.Category, &rec.ChunkCount, &durationMs, &createdAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByCategory returns how many generations each category has for userID.
func (l *Log) CountByCategory(userID string) (map[string]int, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	rows, err := l.db.Query(
		`SELECT category, COUNT(*) FROM generations WHERE user_id = ? GROUP BY category`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// Prune deletes log entries older than the cutoff.
func (l *Log) Prune(before time.Time) (int64, error) {
	if l.db == nil {
		return 0, ErrClosed
	}
	res, err := l.db.Exec(`DELETE FROM generations WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
