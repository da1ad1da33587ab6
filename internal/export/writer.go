// Package export composes the export document from extraction results,
// writes it to the backups directory, and loads previous exports back.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/sqlite-export/internal/paths"
	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// maxNameAttempts bounds the suffixes tried when an export file name is taken.
const maxNameAttempts = 1000

// indent is the per-level indentation of the written document.
const indent = "  "

// Compose wraps extraction results into a document stamped with the export
// start time and the source path as given by the caller.
func Compose(start time.Time, source string, results []types.TableResult) *types.Document {
	if results == nil {
		results = []types.TableResult{}
	}
	return &types.Document{
		ExportDate: start,
		SourceFile: source,
		Tables:     results,
	}
}

// Encode serializes doc as indented JSON. HTML characters and non-ASCII
// text are written as-is.
func Encode(doc *types.Document) ([]byte, error) {
	var compact bytes.Buffer
	enc := json.NewEncoder(&compact)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(compact.Bytes()), "", indent); err != nil {
		return nil, fmt.Errorf("indenting document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Written describes a finished export file.
type Written struct {
	Path string
	Size int64
}

// SizeKB returns the file size in kilobytes.
func (w Written) SizeKB() float64 { return float64(w.Size) / 1024 }

// FormatKB returns the size in kilobytes rounded to two decimals.
func (w Written) FormatKB() string { return fmt.Sprintf("%.2f KB", w.SizeKB()) }

// Write encodes doc in full and writes it to a new file in dir, creating dir
// and its parents as needed. The file name embeds the export date; an
// existing file is never overwritten. A failed write may leave a partial file.
func Write(doc *types.Document, dir string) (Written, error) {
	data, err := Encode(doc)
	if err != nil {
		return Written{}, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("creating backups directory %s: %w", dir, err)
	}

	f, path, err := createUnique(dir, doc.ExportDate)
	if err != nil {
		return Written{}, err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return Written{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return Written{}, fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Written{}, fmt.Errorf("closing %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Written{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Written{Path: path, Size: info.Size()}, nil
}

// createUnique creates the export file exclusively, adding a numeric suffix
// when the timestamped name already exists.
func createUnique(dir string, ts time.Time) (*os.File, string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		path := filepath.Join(dir, paths.FileName(ts, attempt))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free export file name in %s for %s", dir, paths.Timestamp(ts))
}
