package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sqlite-export/internal/export"
	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// Summary output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type summaryFlags struct {
	format string
	sample bool
	table  string
}

func (a *app) summaryCmd() *cobra.Command {
	var f summaryFlags
	cmd := &cobra.Command{
		Use:   "summary <export.json>",
		Short: "Summarize a previous export file",
		Long:  "Load an export file and print each table's row count and columns.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(cmd.OutOrStdout(), args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&f.sample, "sample", false, "include the first row of each table")
	cmd.Flags().StringVarP(&f.table, "table", "t", "", "summarize only the named table")
	return cmd
}

func (a *app) runSummary(w io.Writer, path string, f summaryFlags) error {
	doc, size, err := export.Load(path)
	if err != nil {
		return err
	}
	a.log.WithField("path", path).WithField("tables", len(doc.Tables)).Debug("loaded export")

	if f.table != "" {
		t, ok := doc.Table(f.table)
		if !ok {
			return fmt.Errorf("no table %q in %s", f.table, path)
		}
		doc.Tables = []types.TableResult{t}
	}

	s := export.Summarize(doc, size, f.sample)
	switch strings.ToLower(f.format) {
	case formatText:
		return writeSummaryText(w, s)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", f.format, formatText, formatJSON, formatYAML)
	}
}

func writeSummaryText(w io.Writer, s export.Summary) error {
	fmt.Fprintf(w, "📄 Source: %s\n", s.SourceFile)
	fmt.Fprintf(w, "🕒 Exported: %s\n", s.ExportDate.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "💾 Size: %s\n\n", humanize.Bytes(uint64(s.SizeBytes)))

	fmt.Fprintln(w, "📊 Tables Summary:")
	fmt.Fprint(w, "==================\n\n")
	for _, t := range s.Tables {
		if t.Error != "" {
			fmt.Fprintf(w, "%s: error - %s\n", t.Name, t.Error)
			continue
		}
		fmt.Fprintf(w, "%s: %s rows\n", t.Name, humanize.Comma(int64(t.Rows)))
		if len(t.Sample) > 0 {
			b, err := json.MarshalIndent(t.Sample, "  ", "  ")
			if err != nil {
				return fmt.Errorf("encoding sample of %s: %w", t.Name, err)
			}
			fmt.Fprintf(w, "  Sample row: %s\n", b)
		}
	}

	fmt.Fprintf(w, "\n%s rows in %d tables", humanize.Comma(int64(s.TotalRows)), len(s.Tables))
	if s.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", s.Failed)
	}
	fmt.Fprintln(w)
	return nil
}
