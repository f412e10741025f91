package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/reviewrag/review-rag/pkg/models"
)

type recordKey struct {
	Repo     string
	PR       int
	FilePath string
	Comment  string
}

// FilterNew returns the subset of records whose (repo, pr, file_path,
// comment_body) tuple is not already present in arch_items, using a
// TEMP TABLE anti-join so the existence check is one round trip rather
// than one query per record.
func (s *Store) FilterNew(ctx context.Context, records []models.ReviewRecord) ([]models.ReviewRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin filter-new tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TEMP TABLE tmp_incoming (
			repo TEXT,
			pr INTEGER,
			filepath TEXT,
			comment TEXT
		) ON COMMIT DROP
	`); err != nil {
		return nil, fmt.Errorf("store: create temp table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tmp_incoming (repo, pr, filepath, comment) VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare temp insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Repo, r.PR, r.FilePath, r.CommentBody); err != nil {
			return nil, fmt.Errorf("store: insert into temp table: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT t.repo, t.pr, t.filepath, t.comment
		FROM tmp_incoming t
		JOIN arch_items a
		  ON a.repo = t.repo
		 AND a.pr = t.pr
		 AND a.filepath = t.filepath
		 AND a.comment = t.comment
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query existing rows: %w", err)
	}

	existing := make(map[recordKey]bool)
	for rows.Next() {
		var k recordKey
		if err := rows.Scan(&k.Repo, &k.PR, &k.FilePath, &k.Comment); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan existing row: %w", err)
		}
		existing[k] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: iterate existing rows: %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit filter-new tx: %w", err)
	}

	var fresh []models.ReviewRecord
	for _, r := range records {
		k := recordKey{Repo: r.Repo, PR: r.PR, FilePath: r.FilePath, Comment: r.CommentBody}
		if !existing[k] {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

// InsertItem commits a single enriched ArchItem in its own
// transaction, so a partial Enrich run leaves the store consistent.
func (s *Store) InsertItem(ctx context.Context, item models.ArchItem) error {
	concernsJSON, err := json.Marshal(item.Concerns)
	if err != nil {
		return fmt.Errorf("store: marshal concerns: %w", err)
	}

	var embeddingArg interface{}
	if item.Embedding != nil {
		embeddingArg = *item.Embedding
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin insert tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO arch_items (repo, pr, filepath, comment, diff, concerns, arch_summary, evidence, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.Repo, item.PR, item.FilePath, item.Comment, item.Diff, concernsJSON, item.ArchSummary, item.Evidence, embeddingArg)
	if err != nil {
		return fmt.Errorf("store: insert arch_item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit insert tx: %w", err)
	}
	return nil
}

// BackfillCandidates returns every ArchItem with a null embedding,
// for Backfill to repair.
func (s *Store) BackfillCandidates(ctx context.Context) ([]models.ArchItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo, pr, filepath, comment, diff, concerns, arch_summary, evidence
		FROM arch_items
		WHERE embedding IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query backfill candidates: %w", err)
	}
	defer rows.Close()

	var items []models.ArchItem
	for rows.Next() {
		var item models.ArchItem
		var concernsJSON []byte
		if err := rows.Scan(&item.ID, &item.Repo, &item.PR, &item.FilePath, &item.Comment, &item.Diff, &concernsJSON, &item.ArchSummary, &item.Evidence); err != nil {
			return nil, fmt.Errorf("store: scan backfill candidate: %w", err)
		}
		_ = json.Unmarshal(concernsJSON, &item.Concerns)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate backfill candidates: %w", err)
	}
	return items, nil
}

// UpdateEmbedding sets the embedding for a row, but only if it is
// currently null (I5: Backfill never overwrites a non-null
// embedding), so a concurrent or repeated Backfill run is idempotent.
func (s *Store) UpdateEmbedding(ctx context.Context, id int64, vec pgvector.Vector) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE arch_items SET embedding = $1 WHERE id = $2 AND embedding IS NULL
	`, vec, id)
	if err != nil {
		return fmt.Errorf("store: update embedding for id %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return nil
}

// DistillRow is the narrow projection chunked distillation reads.
type DistillRow struct {
	Concerns    []string
	ArchSummary string
	Evidence    string
}

// LoadForChunkedDistill returns (concerns, arch_summary, evidence) for
// every row, regardless of embedding state.
func (s *Store) LoadForChunkedDistill(ctx context.Context) ([]DistillRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT concerns, arch_summary, evidence FROM arch_items`)
	if err != nil {
		return nil, fmt.Errorf("store: query chunked distill rows: %w", err)
	}
	defer rows.Close()

	var out []DistillRow
	for rows.Next() {
		var r DistillRow
		var concernsJSON []byte
		if err := rows.Scan(&concernsJSON, &r.ArchSummary, &r.Evidence); err != nil {
			return nil, fmt.Errorf("store: scan chunked distill row: %w", err)
		}
		_ = json.Unmarshal(concernsJSON, &r.Concerns)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate chunked distill rows: %w", err)
	}
	return out, nil
}

// ClusterRow is the projection clustered distillation reads: every
// row that has a non-null embedding.
type ClusterRow struct {
	ID          int64
	Concerns    []string
	ArchSummary string
	Evidence    string
	Embedding   []float32
}

// LoadForClusteredDistill returns every row with a non-null
// embedding.
func (s *Store) LoadForClusteredDistill(ctx context.Context) ([]ClusterRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, concerns, arch_summary, evidence, embedding
		FROM arch_items
		WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query clustered distill rows: %w", err)
	}
	defer rows.Close()

	var out []ClusterRow
	for rows.Next() {
		var r ClusterRow
		var concernsJSON []byte
		var vec pgvector.Vector
		if err := rows.Scan(&r.ID, &concernsJSON, &r.ArchSummary, &r.Evidence, &vec); err != nil {
			return nil, fmt.Errorf("store: scan clustered distill row: %w", err)
		}
		_ = json.Unmarshal(concernsJSON, &r.Concerns)
		r.Embedding = vec.Slice()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate clustered distill rows: %w", err)
	}
	return out, nil
}

// ErrNotFound is an alias of sql.ErrNoRows. No Store method in this
// package returns it.
var ErrNotFound = sql.ErrNoRows
