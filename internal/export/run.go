package export

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/sqlite-export/internal/sqlite"
	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// Reporter receives progress events from a run. Progress is advisory and
// never affects the result.
type Reporter interface {
	Opened(path string)
	TablesFound(names []string)
	TableDone(res types.TableResult)
	Written(w Written)
}

// Options configures one export run.
type Options struct {
	// Source is the database path exactly as the user gave it.
	Source string
	// OutputDir is the directory the export file is written to.
	OutputDir string

	Now      func() time.Time
	Log      logrus.FieldLogger
	Reporter Reporter
}

// Result is what a successful run produced.
type Result struct {
	Document *types.Document
	File     Written
}

// Run performs one export: open the source, discover and read its tables,
// compose the document, and write it. Only per-table read failures are
// contained; every other error ends the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := opts.Now()

	db, err := sqlite.Open(ctx, opts.Source, sqlite.WithLogger(opts.Log))
	if err != nil {
		return nil, err
	}
	defer db.Close()
	opts.Reporter.Opened(opts.Source)

	names, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	opts.Reporter.TablesFound(names)

	results := db.Extract(ctx, names, opts.Reporter.TableDone)
	if err := db.Close(); err != nil {
		return nil, err
	}

	doc := Compose(start, opts.Source, results)
	written, err := Write(doc, opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("saving export: %w", err)
	}
	opts.Log.WithFields(logrus.Fields{
		"path":  written.Path,
		"bytes": written.Size,
	}).Info("export written")
	opts.Reporter.Written(written)

	return &Result{Document: doc, File: written}, nil
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	if o.Reporter == nil {
		o.Reporter = nopReporter{}
	}
	return o
}

type nopReporter struct{}

func (nopReporter) Opened(string)               {}
func (nopReporter) TablesFound([]string)        {}
func (nopReporter) TableDone(types.TableResult) {}
func (nopReporter) Written(Written)             {}
