package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out the global event sequence. Answer and
// engagement events live in separate tables, so only a shared counter can
// order them against each other. The row update with RETURNING is atomic
// in both SQLite and Postgres; the mutex keeps one process from racing
// itself.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

const (
	createSequenceTable = `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val BIGINT NOT NULL DEFAULT 1
	)`
	seedSequence  = `INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`
	nextSequence  = `UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`
	resetSequence = `UPDATE global_sequence SET next_val = 1 WHERE id = 1`
)

func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	for _, stmt := range []string{createSequenceTable, seedSequence} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("init sequence: %w", err)
		}
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number, starting at 1.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	if err := sc.db.QueryRowContext(ctx, nextSequence).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

func (sc *sequenceCounter) Reset(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, err := sc.db.ExecContext(ctx, resetSequence); err != nil {
		return fmt.Errorf("reset sequence: %w", err)
	}
	return nil
}
