package main

import (
	"os"

	"github.com/obentoo/pip-updater/internal/common/config"
	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/common/version"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	quiet       bool
	noColor     bool
	forceColor  bool
	showVersion bool
	configFile  string
)

var rootCmd = &cobra.Command{
	Use:   version.NameShort,
	Short: "Update outdated pip packages",
	Long: version.NameLong + ` updates all outdated pip packages.

By default, every outdated package is upgraded to its latest version without
asking for confirmation. Use --interactive to confirm each upgrade.

To exclude packages from updating, or to freeze a package at a specific
version, list them in the exceptions file (one package per line) and run
with --exceptions. Use "pkg_name==version" to freeze a package:

  numpy
  requests==2.31.0

The exceptions file defaults to ~/.config/pip-updater/exceptions.txt and
can be managed with 'pip-updater exceptions'.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		switch {
		case noColor:
			output.NoColor()
		case forceColor:
			output.ForceColor()
		case !output.IsTerminal():
			output.NoColor()
		}
	},
	Run: runUpdate,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&forceColor, "color", false, "Force colored output even when stdout is not a terminal")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default ~/.config/pip-updater/config.yaml)")

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show pip-updater version information and exit")
}

// loadConfig reads the configuration and turns on file logging.
// It returns the config path so commands can save changes back.
func loadConfig() (*config.Config, string) {
	cfg, path, err := readConfig()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config %s: %v", path, err)
		os.Exit(1)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		logger.Error("resolving log path: %v", err)
		os.Exit(1)
	}
	if err := logger.EnableFileLogging(logPath); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}

	return cfg, path
}

// readConfig loads --config when given, otherwise the first config found
func readConfig() (*config.Config, string, error) {
	if configFile == "" {
		return config.Load()
	}
	cfg, err := config.LoadFrom(configFile)
	return cfg, configFile, err
}

func main() {
	defer logger.Close()

	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		logger.Close()
		os.Exit(1)
	}
}
