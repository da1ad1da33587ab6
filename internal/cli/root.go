// Package cli implements the sqlite-export command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// Exit codes. Every failure exits with exitFailure.
const (
	exitSuccess = 0
	exitFailure = 1
)

// rootFlags holds global flag values.
type rootFlags struct {
	configFile string
	outputDir  string
	logLevel   string
	verbose    bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	flags  rootFlags
	cfg    *viper.Viper
	log    *logrus.Logger

	// source is the database path of an export run, kept for error messages.
	source string
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    viper.New(),
		log:    logrus.New(),
	}
}

// NewRootCmd creates the top-level "sqlite-export" command with global flags
// and all subcommands registered.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return newApp(stdout, stderr).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlite-export <path-to-db>",
		Short: "Export every table of a SQLite database to one JSON file",
		Long: `sqlite-export reads every table of a SQLite database file and writes
the rows to a single timestamped JSON document in the backups directory
next to the tool's own directory.`,
		Version: Version,
		Args:    a.requireSource,
		// Errors are printed by Run; usage is printed only for a missing path.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runExport,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.flags.configFile, "config", "", "YAML config file (keys: output_dir, log_level)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", defaultLogLevel, "diagnostic log level written to stderr")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "shorthand for --log-level debug")
	root.Flags().StringVarP(&a.flags.outputDir, "output-dir", "o", "", "directory for the export file (default: <tool dir>/../backups)")

	a.bindFlags(root)

	root.AddCommand(a.summaryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// requireSource accepts exactly one database path. Anything else prints the
// usage to stdout.
func (a *app) requireSource(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "❌ Please provide the path to a SQLite database file")
	_ = cmd.Usage()
	return fmt.Errorf("%w: got %d arguments", types.ErrUsage, len(args))
}

// setup loads the config file and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}
	return a.configureLogger()
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		a.reportError(err)
		return exitFailure
	}
	return exitSuccess
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// reportError prints a failure to stderr. Usage errors were already
// explained on stdout.
func (a *app) reportError(err error) {
	red := color.New(color.FgRed)
	switch {
	case errors.Is(err, types.ErrUsage):
	case errors.Is(err, types.ErrNotFound) && a.source != "":
		red.Fprintf(a.stderr, "❌ File not found: %s\n", a.source)
	default:
		red.Fprintf(a.stderr, "❌ Error: %s\n", err)
	}
}
