package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlite-export/internal/export"
	"github.com/mesh-intelligence/sqlite-export/internal/paths"
)

// runExport exports the database named by the single positional argument.
func (a *app) runExport(cmd *cobra.Command, args []string) error {
	a.source = args[0]

	outDir, err := paths.ResolveBackupsDir(a.outputDir())
	if err != nil {
		return fmt.Errorf("resolve backups dir: %w", err)
	}

	log := a.log.WithFields(logrus.Fields{
		"run_id": newRunID(),
		"source": a.source,
	})
	log.WithField("output_dir", outDir).Debug("starting export")

	_, err = export.Run(cmd.Context(), export.Options{
		Source:    a.source,
		OutputDir: outDir,
		Log:       log,
		Reporter:  newConsoleReporter(cmd.OutOrStdout()),
	})
	return err
}
