package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ExportDateFormat is the layout of the exportDate field: ISO-8601 in UTC
// with millisecond precision.
const ExportDateFormat = "2006-01-02T15:04:05.000Z07:00"

// legacyExportDateFormat matches exports written without a zone offset.
const legacyExportDateFormat = "2006-01-02T15:04:05.999999999"

// TableResult is the outcome of reading one table. A table either succeeded
// with all of its rows or failed with Err set and no rows.
type TableResult struct {
	Name string
	Rows []Row
	Err  error
}

// Failed reports whether the table could not be read.
func (t TableResult) Failed() bool { return t.Err != nil }

// Document is the single artifact produced by an export run.
type Document struct {
	ExportDate time.Time
	SourceFile string
	// Tables holds one result per discovered table, in discovery order.
	Tables []TableResult
}

// TableNames returns the table names in document order.
func (d *Document) TableNames() []string {
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}

// Table returns the result for the named table.
func (d *Document) Table(name string) (TableResult, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableResult{}, false
}

// Failed returns the tables that could not be read, in document order.
func (d *Document) Failed() []TableResult {
	var failed []TableResult
	for _, t := range d.Tables {
		if t.Failed() {
			failed = append(failed, t)
		}
	}
	return failed
}

// MarshalJSON encodes the document. Every table appears under "tables"; a
// failed table maps to an empty list and its message is recorded under
// "errors", which is left out when nothing failed.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"exportDate":`)
	date, err := marshalString(d.ExportDate.UTC().Format(ExportDateFormat))
	if err != nil {
		return nil, err
	}
	buf.Write(date)

	buf.WriteString(`,"sourceFile":`)
	src, err := marshalString(d.SourceFile)
	if err != nil {
		return nil, err
	}
	buf.Write(src)

	buf.WriteString(`,"tables":{`)
	for i, t := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeTable(&buf, t); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	if failed := d.Failed(); len(failed) > 0 {
		buf.WriteString(`,"errors":{`)
		for i, t := range failed {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalString(t.Name)
			if err != nil {
				return nil, err
			}
			msg, err := marshalString(t.Err.Error())
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(msg)
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeTable(buf *bytes.Buffer, t TableResult) error {
	key, err := marshalString(t.Name)
	if err != nil {
		return fmt.Errorf("encoding table name %q: %w", t.Name, err)
	}
	buf.Write(key)
	buf.WriteString(":[")
	if !t.Failed() {
		for i, row := range t.Rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := row.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encoding table %q row %d: %w", t.Name, i, err)
			}
			buf.Write(b)
		}
	}
	buf.WriteByte(']')
	return nil
}

// UnmarshalJSON decodes a document written by MarshalJSON, keeping table and
// column order. Unknown top-level keys are ignored.
func (d *Document) UnmarshalJSON(data []byte) error {
	var (
		out      Document
		failures = map[string]string{}
	)
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "exportDate":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("exportDate: %w", err)
			}
			ts, err := parseExportDate(s)
			if err != nil {
				return err
			}
			out.ExportDate = ts
		case "sourceFile":
			if err := json.Unmarshal(raw, &out.SourceFile); err != nil {
				return fmt.Errorf("sourceFile: %w", err)
			}
		case "tables":
			return decodeObject(raw, func(name string, raw json.RawMessage) error {
				var rows []Row
				if err := json.Unmarshal(raw, &rows); err != nil {
					return fmt.Errorf("table %q: %w", name, err)
				}
				if rows == nil {
					rows = []Row{}
				}
				out.Tables = append(out.Tables, TableResult{Name: name, Rows: rows})
				return nil
			})
		case "errors":
			if err := json.Unmarshal(raw, &failures); err != nil {
				return fmt.Errorf("errors: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range out.Tables {
		if msg, ok := failures[out.Tables[i].Name]; ok {
			out.Tables[i].Err = errors.New(msg)
		}
	}
	*d = out
	return nil
}

func parseExportDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(legacyExportDateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: exportDate %q", ErrMalformedDocument, s)
	}
	return ts, nil
}
