// Package importer reads topic lists from JSON exports, CSV files and Excel
// workbooks and applies them to the store as a replace or a merge.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"revise/internal/storage"
)

// ErrNotArray is returned when a JSON import's top level is not an array.
var ErrNotArray = errors.New("invalid file format: expected a JSON array of topics")

// Result contains statistics about an import operation.
type Result struct {
	Imported int      // topics stored
	Skipped  int      // duplicates (merge) or rows without name/subject
	Errors   []string // per-row problems that did not abort the import
}

// Parser turns a file into topics without touching the store.
type Parser interface {
	Parse(r io.Reader) ([]storage.Topic, []string, error)
	Name() string
}

// GetParser returns the parser for format, or nil when unsupported. now
// seeds fresh schedules for rows that carry no review dates.
func GetParser(format string, now func() time.Time) Parser {
	if now == nil {
		now = time.Now
	}
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{Now: now}
	case "xlsx":
		return &XLSXParser{Now: now}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"json", "csv", "xlsx"}
}

// DetectFormat guesses the format from a file extension, defaulting to json.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return "json"
	}
}

// Apply stores parsed topics, replacing the list or merging into it.
func Apply(store *storage.Storage, topics []storage.Topic, merge bool) (*Result, error) {
	cmd := &storage.ImportCmd{Topics: topics, Merge: merge}
	if err := cmd.Apply(store); err != nil {
		return nil, err
	}
	return &Result{Imported: cmd.Added, Skipped: len(topics) - cmd.Added}, nil
}

// Loaded is the single result of an asynchronous load.
type Loaded struct {
	Path   string
	Format string
	Topics []storage.Topic
	Notes  []string // row-level warnings from the parser
	Err    error
}

// ParseFile opens and parses path with the given format ("" to detect).
func ParseFile(path, format string, now func() time.Time) Loaded {
	if format == "" {
		format = DetectFormat(path)
	}
	res := Loaded{Path: path, Format: format}

	p := GetParser(format, now)
	if p == nil {
		res.Err = fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(SupportedFormats(), ", "))
		return res
	}

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("open %s: %w", path, err)
		return res
	}
	defer f.Close()

	res.Topics, res.Notes, res.Err = p.Parse(f)
	return res
}

// Load reads and parses path on its own goroutine and delivers exactly one
// Loaded value. The store is never touched; callers apply the result.
func Load(ctx context.Context, path, format string, now func() time.Time) <-chan Loaded {
	out := make(chan Loaded, 1)
	go func() {
		defer close(out)
		done := make(chan Loaded, 1)
		go func() { done <- ParseFile(path, format, now) }()
		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- Loaded{Path: path, Format: format, Err: ctx.Err()}
		}
	}()
	return out
}
