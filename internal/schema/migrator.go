package schema

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// The optional 0002_ann_index migration is left out of the baseline;
// EnsureANNIndex creates that index best-effort instead.
//
//go:embed migrations/0001_*.sql migrations/0003_*.sql
var migrationFiles embed.FS

// Migrator applies the versioned baseline schema and then corrects any
// remaining drift — chiefly the vector column's dimension, which the
// static migration files cannot parameterize per run.
type Migrator struct {
	db  *sql.DB
	val *Validator
}

// NewMigrator wraps a *sql.DB for baseline migration and differential
// correction.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db, val: NewValidator(db)}
}

// ApplyBaseline runs the embedded versioned migrations (extension,
// table, indexes) up to the latest version. It is a no-op if the
// schema is already current.
func (m *Migrator) ApplyBaseline() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("schema: load embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("schema: wrap postgres driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("schema: construct migrator: %w", err)
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("schema: apply baseline migrations: %w", err)
	}
	return nil
}

// Reconcile applies the minimal corrective DDL for every mismatch
// reported by the Validator at the given dimension. It never drops
// data implicitly: a vector-dimension change invalidates existing
// embeddings in place, which the caller must restore with Backfill.
func (m *Migrator) Reconcile(dimension int) ([]Mismatch, error) {
	mismatches, err := m.val.Validate(dimension)
	if err != nil {
		return nil, err
	}

	for _, mm := range mismatches {
		if err := m.fixColumn(mm); err != nil {
			return nil, fmt.Errorf("schema: fix column %s: %w", mm.Column, err)
		}
	}
	return mismatches, nil
}

func (m *Migrator) fixColumn(mm Mismatch) error {
	if mm.Actual == "" {
		_, err := m.db.Exec(fmt.Sprintf(
			`ALTER TABLE arch_items ADD COLUMN %s %s`, mm.Column, mm.Expected,
		))
		return err
	}

	if strings.HasPrefix(mm.Expected, "vector") {
		_, err := m.db.Exec(fmt.Sprintf(
			`ALTER TABLE arch_items ALTER COLUMN %s TYPE %s`, mm.Column, mm.Expected,
		))
		return err
	}

	_, err := m.db.Exec(fmt.Sprintf(
		`ALTER TABLE arch_items ALTER COLUMN %s TYPE %s USING %s::%s`,
		mm.Column, mm.Expected, mm.Column, mm.Expected,
	))
	return err
}

// EnsureANNIndex applies the optional approximate-nearest-neighbor
// index migration. Failure is logged by the caller and otherwise
// tolerated: the index is a retrieval optimization, not a correctness
// requirement the Validator checks for.
func (m *Migrator) EnsureANNIndex() error {
	_, err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_arch_items_embedding ON arch_items
		USING ivfflat (embedding vector_l2_ops) WITH (lists = 100)
	`)
	return err
}
