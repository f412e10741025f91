package models

import "encoding/json"

// ReviewRecord is a single append-only staging entry collected from a
// code-host review thread. Identity is the tuple (Repo, PR, FilePath,
// CommentBody); duplicates are collapsed at enrichment time, not here.
type ReviewRecord struct {
	Repo        string          `json:"repo"`
	PR          int             `json:"pr"`
	FilePath    string          `json:"file_path,omitempty"`
	LineStart   *int            `json:"line_start,omitempty"`
	LineEnd     *int            `json:"line_end,omitempty"`
	DiffContext string          `json:"diff_context,omitempty"`
	CommentBody string          `json:"comment_body"`
	ThreadJSON  json.RawMessage `json:"thread_json,omitempty"`
}
