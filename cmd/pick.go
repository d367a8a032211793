package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/health"
	"github.com/warren-vcs/warren/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively pick a workspace to switch to or remove",
	RunE:  runPick,
}

var pickSimple bool

func init() {
	pickCmd.Flags().BoolVar(&pickSimple, "simple", false, "Print a plain listing instead of the interactive picker")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	ctx := context.Background()
	current := a.Registry.Current()

	var entries []tui.Entry
	for _, ws := range a.Registry.List() {
		check := health.Check(ctx, ws, backendFor(a, ws))
		entries = append(entries, tui.Entry{
			Workspace: ws,
			Status:    check.Status,
			Age:       check.Age,
		})
	}

	if pickSimple {
		fmt.Print(tui.SimplePicker(entries, current))
		return nil
	}

	result, err := tui.RunPicker(entries, current)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "picker failed", err)
	}

	switch result.Action {
	case tui.ActionSwitch:
		outcome, err := a.Orchestrator.Switch(ctx, result.Workspace.Name)
		if err != nil {
			return err
		}
		logSuccess("Switched to %s (%s)", result.Workspace.Name, outcome.Workspace.RootPath)
	case tui.ActionRemove:
		if _, err := a.Orchestrator.Remove(ctx, result.Workspace.Name, false); err != nil {
			return err
		}
		logSuccess("Workspace %s removed", result.Workspace.Name)
	}

	return nil
}
