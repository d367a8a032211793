package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "warren",
	Short: "Ephemeral VCS workspace management CLI",
	Long: `warren manages short-lived development workspaces over git and jj.

Each workspace is a named checkout with:
  - A dedicated git worktree or jj workspace
  - Layered directive files run at create, switch, and remove
  - A crash-consistent registry entry`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
