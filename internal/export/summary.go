package export

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// Load reads and decodes an export file, keeping table and column order.
func Load(path string) (*types.Document, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, int64(len(data)), nil
}

// TableSummary describes one table of an export.
type TableSummary struct {
	Name    string    `json:"name" yaml:"name"`
	Rows    int       `json:"rows" yaml:"rows"`
	Columns []string  `json:"columns" yaml:"columns"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
	Sample  types.Row `json:"sample,omitempty" yaml:"sample,omitempty"`
}

// Summary describes a whole export.
type Summary struct {
	SourceFile string         `json:"sourceFile" yaml:"source_file"`
	ExportDate time.Time      `json:"exportDate" yaml:"export_date"`
	SizeBytes  int64          `json:"sizeBytes" yaml:"size_bytes"`
	TotalRows  int            `json:"totalRows" yaml:"total_rows"`
	Failed     int            `json:"failed" yaml:"failed"`
	Tables     []TableSummary `json:"tables" yaml:"tables"`
}

// Summarize counts rows per table. Columns come from the first row, so an
// empty table reports none. With sample set, the first row is included.
func Summarize(doc *types.Document, size int64, sample bool) Summary {
	s := Summary{
		SourceFile: doc.SourceFile,
		ExportDate: doc.ExportDate,
		SizeBytes:  size,
		Tables:     make([]TableSummary, 0, len(doc.Tables)),
	}
	for _, t := range doc.Tables {
		ts := TableSummary{
			Name:    t.Name,
			Rows:    len(t.Rows),
			Columns: []string{},
		}
		if t.Failed() {
			ts.Error = t.Err.Error()
			s.Failed++
		}
		if len(t.Rows) > 0 {
			ts.Columns = t.Rows[0].Columns()
			if sample {
				ts.Sample = t.Rows[0]
			}
		}
		s.TotalRows += ts.Rows
		s.Tables = append(s.Tables, ts)
	}
	return s
}
