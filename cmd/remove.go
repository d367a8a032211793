package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a workspace",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var removeForce bool

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Remove even when teardown directives or the backend fail")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	logging.Debug("removing workspace", "name", name, "force", removeForce)
	logInfo("Removing workspace %s...", name)

	outcome, err := a.Orchestrator.Remove(context.Background(), name, removeForce)
	if err != nil {
		if outcome != nil {
			printDirectiveFailures(outcome)
		}
		return err
	}

	logSuccess("Workspace %s removed", name)
	return nil
}
