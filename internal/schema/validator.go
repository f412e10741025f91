// Package schema validates and migrates the arch_items table against
// the declared column types and vector dimension.
package schema

import (
	"database/sql"
	"fmt"
)

// Column describes one column of the declared schema.
type Column struct {
	Name string
	Type string // e.g. "text", "integer", "jsonb", "vector(768)"
}

// Mismatch is one column whose live type diverges from the declared one.
type Mismatch struct {
	Column   string
	Expected string
	Actual   string
}

// Expected returns the declared arch_items schema for the given vector
// dimension.
func Expected(dimension int) []Column {
	return []Column{
		{"repo", "text"},
		{"pr", "integer"},
		{"filepath", "text"},
		{"comment", "text"},
		{"diff", "text"},
		{"concerns", "jsonb"},
		{"arch_summary", "text"},
		{"evidence", "text"},
		{"embedding", fmt.Sprintf("vector(%d)", dimension)},
	}
}

// Validator compares the live arch_items schema against the declared one.
type Validator struct {
	db *sql.DB
}

// NewValidator wraps a *sql.DB for schema introspection.
func NewValidator(db *sql.DB) *Validator {
	return &Validator{db: db}
}

// actualTypes introspects pg_attribute/pg_type via format_type, which
// renders a vector column as "vector(768)" rather than the bare
// "vector" information_schema.columns reports — information_schema
// has no width for USER-DEFINED types, so it cannot be used to detect
// a vector-dimension mismatch at all.
func (v *Validator) actualTypes() (map[string]string, error) {
	rows, err := v.db.Query(`
		SELECT a.attname, format_type(a.atttypid, a.atttypmod)
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		WHERE c.relname = 'arch_items'
		  AND a.attnum > 0
		  AND NOT a.attisdropped
	`)
	if err != nil {
		return nil, fmt.Errorf("schema: introspect arch_items: %w", err)
	}
	defer rows.Close()

	actual := make(map[string]string)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("schema: scan column: %w", err)
		}
		actual[name] = typ
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: iterate columns: %w", err)
	}
	return actual, nil
}

// TableExists reports whether arch_items has been created yet.
func (v *Validator) TableExists() (bool, error) {
	var exists bool
	err := v.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM pg_class WHERE relname = 'arch_items')
	`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("schema: check table existence: %w", err)
	}
	return exists, nil
}

// Validate reports every column whose live type diverges from the
// declared schema at the given vector dimension. An empty result means
// the schema is valid.
func (v *Validator) Validate(dimension int) ([]Mismatch, error) {
	actual, err := v.actualTypes()
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, col := range Expected(dimension) {
		got, ok := actual[col.Name]
		if !ok || got != col.Type {
			mismatches = append(mismatches, Mismatch{
				Column:   col.Name,
				Expected: col.Type,
				Actual:   got,
			})
		}
	}
	return mismatches, nil
}
