package main

import (
	"os"

	"github.com/obentoo/pip-updater/internal/exceptions"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a shell completion script for pip-updater.

  $ source <(pip-updater completion bash)
  $ pip-updater completion zsh > "${fpath[1]}/_pip-updater"
  $ pip-updater completion fish > ~/.config/fish/completions/pip-updater.fish
  PS> pip-updater completion powershell | Out-String | Invoke-Expression

'exceptions remove' completes the package names found in the exceptions file.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	exceptionsRemoveCmd.ValidArgsFunction = completeExceptionNames
	rootCmd.AddCommand(completionCmd)
}

// completeExceptionNames offers the package names of the exceptions file.
// Errors yield no suggestions; completion never prints or exits.
func completeExceptionNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, _, err := readConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	excPath, err := cfg.ExceptionsPath()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := exceptions.LoadOrEmpty(excPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return exceptionNames(store), cobra.ShellCompDirectiveNoFileComp
}

// exceptionNames lists entries as "name" or "name\tfrozen at version"
func exceptionNames(store *exceptions.Store) []string {
	entries := store.Entries()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Frozen() {
			names = append(names, e.Name+"\tfrozen at "+e.Version)
		} else {
			names = append(names, e.Name+"\tskipped")
		}
	}
	return names
}
