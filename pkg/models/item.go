package models

import "github.com/pgvector/pgvector-go"

// ArchItem is a store record promoted from a ReviewRecord by Enrich.
// Identity is the surrogate key ID; uniqueness of
// (Repo, PR, FilePath, Comment) (I1) is maintained by Enrich's
// anti-join dedup (store.FilterNew); the table itself declares no
// unique constraint on that tuple.
type ArchItem struct {
	ID         int64
	Repo       string
	PR         int
	FilePath   string
	Comment    string
	Diff       string
	Concerns   []string
	ArchSummary string
	Evidence   string
	Embedding  *pgvector.Vector
}

// HasEmbedding reports whether the row has been assigned a vector.
// Backfill uses this to decide whether a row needs repair (I5: never
// overwrite a non-null embedding).
func (a *ArchItem) HasEmbedding() bool {
	return a.Embedding != nil
}
