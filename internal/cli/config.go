package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	configFileType = "yaml"

	// Config keys.
	cfgKeyOutputDir = "output_dir"
	cfgKeyLogLevel  = "log_level"

	defaultLogLevel = "warn"
)

// bindFlags makes flags override config file values. Only flags the user set
// take precedence; unset flags fall back to the file, then to defaults.
func (a *app) bindFlags(root *cobra.Command) {
	a.cfg.SetDefault(cfgKeyOutputDir, "")
	a.cfg.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	// Lookup cannot return nil here: both flags are defined on root.
	_ = a.cfg.BindPFlag(cfgKeyOutputDir, root.Flags().Lookup("output-dir"))
	_ = a.cfg.BindPFlag(cfgKeyLogLevel, root.PersistentFlags().Lookup("log-level"))
}

// loadConfig reads the YAML file named by --config. Without --config no file
// is read and flags plus defaults apply. Environment variables are not consulted.
func (a *app) loadConfig() error {
	if a.flags.configFile == "" {
		return nil
	}
	a.cfg.SetConfigFile(a.flags.configFile)
	a.cfg.SetConfigType(configFileType)
	if err := a.cfg.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", a.flags.configFile, err)
	}
	return nil
}

// outputDir returns the configured output directory override, if any.
func (a *app) outputDir() string {
	return a.cfg.GetString(cfgKeyOutputDir)
}
