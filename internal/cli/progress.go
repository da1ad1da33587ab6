package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/mesh-intelligence/sqlite-export/internal/export"
	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// consoleReporter prints human-readable export progress.
type consoleReporter struct {
	w io.Writer
}

func newConsoleReporter(w io.Writer) *consoleReporter {
	return &consoleReporter{w: w}
}

func (r *consoleReporter) Opened(path string) {
	fmt.Fprintf(r.w, "🔍 Opening database: %s\n\n", path)
}

func (r *consoleReporter) TablesFound(names []string) {
	fmt.Fprintf(r.w, "📊 Found %d tables:\n\n", len(names))
	for _, name := range names {
		fmt.Fprintf(r.w, "  - %s\n", name)
	}
	fmt.Fprint(r.w, "\n📦 Extracting data...\n\n")
}

func (r *consoleReporter) TableDone(res types.TableResult) {
	if res.Failed() {
		color.New(color.FgYellow).Fprintf(r.w, "  %s: Error - %s\n", res.Name, res.Err)
		return
	}
	fmt.Fprintf(r.w, "  %s: %s rows\n", res.Name, humanize.Comma(int64(len(res.Rows))))
}

func (r *consoleReporter) Written(w export.Written) {
	color.New(color.FgGreen).Fprint(r.w, "\n✅ Data exported successfully!\n")
	fmt.Fprintf(r.w, "📁 Location: %s\n", w.Path)
	fmt.Fprintf(r.w, "📊 Size: %s (%s)\n\n", w.FormatKB(), humanize.Bytes(uint64(w.Size)))
}
