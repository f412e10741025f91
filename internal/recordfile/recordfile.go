// Package recordfile reads and appends the newline-delimited JSON
// ReviewRecord file that Collect produces and Enrich consumes.
package recordfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/reviewrag/review-rag/pkg/models"
)

// Writer appends ReviewRecords to a file, one JSON object per line.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// OpenWriter opens path for appending, creating it if necessary.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("recordfile: open %s: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes a single ReviewRecord as one line.
func (w *Writer) Append(rec models.ReviewRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("recordfile: marshal record: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("recordfile: write record: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("recordfile: write newline: %w", err)
	}
	return nil
}

// Close flushes buffered output and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("recordfile: flush: %w", err)
	}
	return w.f.Close()
}

// ReadAll reads every well-formed ReviewRecord line from path. A
// truncated or malformed final line is ignored rather than fatal, per
// the record file format's append-only, crash-tolerant contract.
func ReadAll(path string) ([]models.ReviewRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recordfile: open %s: %w", path, err)
	}
	defer f.Close()

	var records []models.ReviewRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.ReviewRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("recordfile: scan %s: %w", path, err)
	}
	return records, nil
}
