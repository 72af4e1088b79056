package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/obentoo/pip-updater/internal/common/config"
	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/common/version"
	"github.com/obentoo/pip-updater/internal/exceptions"
	"github.com/obentoo/pip-updater/internal/pip"
	"github.com/obentoo/pip-updater/internal/updater"
	"github.com/spf13/cobra"
)

var (
	// listOutdated shows the outdated package table and exits
	listOutdated bool
	// interactive asks before each upgrade
	interactive bool
	// useExceptions applies the exceptions file
	useExceptions bool
	// dryRun prints decisions without installing
	dryRun bool
)

const noOutdatedMessage = "There aren't outdated packages."

func init() {
	rootCmd.Flags().BoolVarP(&listOutdated, "list", "l", false, "Show list of outdated packages")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Update packages interactively, confirming each one")
	rootCmd.Flags().BoolVarP(&useExceptions, "exceptions", "e", false, "Skip or freeze the packages listed in the exceptions file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without installing anything")
}

// runUpdate handles the root command
func runUpdate(cmd *cobra.Command, args []string) {
	if showVersion {
		fmt.Println(version.Short())
		return
	}

	cfg, _ := loadConfig()
	runner := pip.NewRunner(cfg.Pip.Command, cfg.Pip.Python)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listOutdated {
		runList(ctx, runner)
		return
	}

	if interactive && !dryRun && !output.IsInputTerminal() {
		logger.Error("%v", updater.ErrNotInteractive)
		os.Exit(1)
	}

	opts := []updater.Option{
		updater.WithDryRun(dryRun),
		updater.WithOutput(progressOutput()),
	}

	if useExceptions {
		store, err := loadExceptions(cfg)
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		logger.Debug("loaded %d exception(s) from %s", store.Len(), store.Path())
		opts = append(opts, updater.WithExceptions(store, filepath.Base(store.Path())))
	}

	if interactive {
		opts = append(opts, updater.WithInteractive(updater.NewLinePrompter(os.Stdin, os.Stdout)))
	}

	u, err := updater.New(runner, opts...)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	report, err := u.Run(ctx)
	if report != nil && len(report.Results) > 0 && !dryRun {
		recordHistory(report)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if len(report.Results) == 0 {
		logger.Info(noOutdatedMessage)
		return
	}

	displaySummary(report)

	if report.Count(updater.OutcomeFailed) > 0 {
		os.Exit(1)
	}
}

// progressOutput is where per-package lines go; --quiet discards them.
// The log file and the interactive prompt are unaffected.
func progressOutput() io.Writer {
	if quiet {
		return io.Discard
	}
	return os.Stdout
}

// runList handles the --list flag
func runList(ctx context.Context, runner pip.Executor) {
	table, err := runner.OutdatedTable(ctx)
	if err != nil {
		logger.Error("listing outdated packages: %v", err)
		os.Exit(1)
	}

	if strings.TrimSpace(table) == "" {
		logger.Info(noOutdatedMessage)
		return
	}
	fmt.Println(strings.TrimRight(table, "\n"))
}

// loadExceptions reads the configured exceptions file
func loadExceptions(cfg *config.Config) (*exceptions.Store, error) {
	path, err := cfg.ExceptionsPath()
	if err != nil {
		return nil, err
	}

	store, err := exceptions.Load(path)
	if errors.Is(err, exceptions.ErrExceptionsNotFound) {
		return nil, fmt.Errorf("file %s not found; create it or use 'pip-updater exceptions add'", path)
	}
	return store, err
}

// recordHistory stores the run report; failure only warns
func recordHistory(report *updater.Report) {
	stateDir, err := logger.StateDir()
	if err != nil {
		logger.Warn("run history not saved: %v", err)
		return
	}
	history, err := updater.NewHistory(stateDir)
	if err != nil {
		logger.Warn("run history not saved: %v", err)
		return
	}
	if err := history.Append(*report); err != nil {
		logger.Warn("run history not saved: %v", err)
	}
}

// displaySummary prints outcome counts after a run
func displaySummary(report *updater.Report) {
	if quiet {
		return
	}

	fmt.Println()
	if report.DryRun {
		output.PrintInfo("Dry run: nothing was installed")
		return
	}

	output.Header.Println("Summary")
	for _, o := range []updater.Outcome{
		updater.OutcomeUpgraded,
		updater.OutcomeFrozen,
		updater.OutcomeSkipped,
		updater.OutcomeDeclined,
		updater.OutcomeFailed,
	} {
		if n := report.Count(o); n > 0 {
			fmt.Printf("  %s %d\n", output.FormatOutcome(string(o)), n)
		}
	}

	if n := report.Count(updater.OutcomeFailed); n > 0 {
		output.PrintWarning("%d package(s) failed, see %s", n, logPathHint())
	}
}

// logPathHint names the log file for the user
func logPathHint() string {
	if p := logger.Default().FilePath(); p != "" {
		return p
	}
	return "the output above"
}
