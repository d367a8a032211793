package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
)

var switchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a workspace current",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	logging.Debug("switching workspace", "name", name)

	outcome, err := a.Orchestrator.Switch(context.Background(), name)
	if err != nil {
		if outcome != nil {
			printDirectiveFailures(outcome)
		}
		return err
	}

	logSuccess("Switched to %s (%s)", name, outcome.Workspace.RootPath)
	return nil
}
