// Package store is the relational+vector persistence layer for
// ArchItem rows, backed by PostgreSQL with the pgvector extension.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Store wraps a *sql.DB connection to the arch_items table.
type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn. It does not migrate the
// schema; see internal/schema for validation and migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for internal/schema, which
// needs raw catalog access the Store's narrow API does not expose.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
