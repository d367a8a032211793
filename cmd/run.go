package cmd

import (
	"context"
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run <name> -- <command> [args...]",
	Short: "Run a command inside a workspace",
	Long: `run executes an ad-hoc command in the workspace root, through the same
shell and timeout as a directive.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	ws, err := lookupWorkspace(a, name)
	if err != nil {
		return err
	}

	command := shellquote.Join(args[1:]...)
	logging.Debug("running command in workspace", "workspace", name, "command", command)

	res, err := a.Runner.RunCommand(context.Background(), ws, command)
	if res.Output != "" {
		fmt.Print(res.Output)
	}
	return err
}
