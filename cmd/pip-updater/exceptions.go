package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/exceptions"
	"github.com/spf13/cobra"
)

// exceptionVersion freezes the added package at a version
var exceptionVersion string

var exceptionsCmd = &cobra.Command{
	Use:   "exceptions",
	Short: "Manage the exceptions file",
	Long: `List, add and remove entries of the exceptions file used by --exceptions.

A package listed without a version is never updated. A package listed as
"name==version" is frozen at that version.`,
}

var exceptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the exceptions file entries",
	Args:  cobra.NoArgs,
	Run:   runExceptionsList,
}

var exceptionsAddCmd = &cobra.Command{
	Use:   "add <package>[==version]",
	Short: "Skip a package, or freeze it at a version",
	Long: `Add or replace an exception.

Examples:
  pip-updater exceptions add numpy               Never update numpy
  pip-updater exceptions add requests==2.31.0    Freeze requests at 2.31.0
  pip-updater exceptions add requests --version 2.31.0`,
	Args: cobra.ExactArgs(1),
	Run:  runExceptionsAdd,
}

var exceptionsRemoveCmd = &cobra.Command{
	Use:     "remove <package>",
	Aliases: []string{"rm"},
	Short:   "Remove a package from the exceptions file",
	Args:    cobra.ExactArgs(1),
	Run:     runExceptionsRemove,
}

func init() {
	exceptionsAddCmd.Flags().StringVar(&exceptionVersion, "version", "", "Freeze the package at this version")

	exceptionsCmd.AddCommand(exceptionsListCmd, exceptionsAddCmd, exceptionsRemoveCmd)
	rootCmd.AddCommand(exceptionsCmd)
}

// openExceptions loads the configured exceptions file, empty if missing
func openExceptions() *exceptions.Store {
	cfg, _ := loadConfig()
	path, err := cfg.ExceptionsPath()
	if err != nil {
		logger.Error("resolving exceptions path: %v", err)
		os.Exit(1)
	}

	store, err := exceptions.LoadOrEmpty(path)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	return store
}

func runExceptionsList(cmd *cobra.Command, args []string) {
	store := openExceptions()

	entries := store.Entries()
	if len(entries) == 0 {
		logger.Info("No exceptions in %s", store.Path())
		return
	}

	output.Header.Println("Exceptions (" + store.Path() + ")")
	for _, e := range entries {
		if e.Frozen() {
			fmt.Printf("  %s  %s\n", output.FormatPackage(e.Name, e.Version), output.FormatOutcome("frozen"))
		} else {
			fmt.Printf("  %s  %s\n", output.FormatPackage(e.Name, ""), output.FormatOutcome("skipped"))
		}
	}
}

// parseExceptionArg parses "name" or "name==version"; version overrides the pin.
// Unlike lines read from the file, more than one "==" is rejected.
func parseExceptionArg(arg, version string) (exceptions.Entry, error) {
	if strings.Count(arg, "==") > 1 {
		return exceptions.Entry{}, fmt.Errorf("%w: %q", exceptions.ErrInvalidEntry, arg)
	}
	entry, err := exceptions.ParseEntry(arg)
	if err != nil {
		return exceptions.Entry{}, err
	}
	if version != "" {
		entry.Version = version
	}
	return entry, nil
}

func runExceptionsAdd(cmd *cobra.Command, args []string) {
	entry, err := parseExceptionArg(args[0], exceptionVersion)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	store := openExceptions()
	if err := store.Set(entry); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if err := store.Save(); err != nil {
		logger.Error("saving exceptions: %v", err)
		os.Exit(1)
	}

	if entry.Frozen() {
		output.PrintSuccess("%s will be frozen at %s", entry.Name, entry.Version)
	} else {
		output.PrintSuccess("%s will not be updated", entry.Name)
	}
	logger.Record(logger.LevelInfo, "exception added: %s", entry)
}

func runExceptionsRemove(cmd *cobra.Command, args []string) {
	store := openExceptions()
	if !store.Remove(args[0]) {
		logger.Error("%s is not in %s", args[0], store.Path())
		os.Exit(1)
	}
	if err := store.Save(); err != nil {
		logger.Error("saving exceptions: %v", err)
		os.Exit(1)
	}

	output.PrintSuccess("%s removed from exceptions", args[0])
	logger.Record(logger.LevelInfo, "exception removed: %s", args[0])
}
