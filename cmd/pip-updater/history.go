package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/updater"
	"github.com/spf13/cobra"
)

// historyAll lists every stored run instead of only the last one
var historyAll bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the results of previous runs",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&historyAll, "all", "a", false, "Show every stored run")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	stateDir, err := logger.StateDir()
	if err != nil {
		logger.Error("locating state directory: %v", err)
		os.Exit(1)
	}

	history, err := updater.NewHistory(stateDir)
	if err != nil {
		logger.Error("loading history: %v", err)
		os.Exit(1)
	}

	if historyAll {
		runs := history.Runs()
		if len(runs) == 0 {
			logger.Info("No recorded runs")
			return
		}
		for i := range runs {
			displayReport(&runs[i])
		}
		return
	}

	last, err := history.Last()
	if errors.Is(err, updater.ErrNoHistory) {
		logger.Info("No recorded runs")
		return
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	displayReport(last)
}

// displayReport formats one stored run
func displayReport(r *updater.Report) {
	fmt.Println()
	output.Header.Printf("Run at %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Println()

	for _, res := range r.Results {
		version := res.FromVersion
		if res.ToVersion != "" {
			version += " → " + res.ToVersion
		}
		fmt.Printf("  %-10s %s %s\n", output.FormatOutcome(string(res.Outcome)), output.FormatPackage(res.Package, ""), version)
		if res.Error != "" {
			output.Error.Printf("    %s\n", res.Error)
		}
	}
}
