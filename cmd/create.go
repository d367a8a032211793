package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/lifecycle"
	"github.com/warren-vcs/warren/internal/logging"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var (
	createRepo string
	createRef  string
	createPath string
)

func init() {
	createCmd.Flags().StringVarP(&createRepo, "repo", "r", "", "Repository to branch from (default: current directory)")
	createCmd.Flags().StringVar(&createRef, "ref", "", "Source ref for the checkout (default: repository head)")
	createCmd.Flags().StringVar(&createPath, "path", "", "Checkout location (default: under the workspaces directory)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	// Validate workspace name early
	if err := config.ValidateWorkspaceName(name); err != nil {
		return errors.New(errors.ExitGeneralError, err.Error())
	}

	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	repo, err := repoOrCwd(createRepo)
	if err != nil {
		return err
	}

	logging.Debug("starting workspace creation", "name", name, "repo", repo, "ref", createRef)
	logInfo("Creating workspace %s...", name)

	outcome, err := a.Orchestrator.Create(ctx, lifecycle.CreateRequest{
		Name:      name,
		RepoPath:  repo,
		SourceRef: createRef,
		DestPath:  createPath,
	})
	if err != nil {
		if outcome != nil && outcome.Degraded {
			logWarning("Workspace %s was created but its setup did not finish", name)
			printDirectiveFailures(outcome)
		}
		return err
	}

	logSuccess("Workspace %s created at %s", name, outcome.Workspace.RootPath)
	return nil
}

func printDirectiveFailures(outcome *lifecycle.Outcome) {
	if outcome.Directives == nil {
		return
	}
	for _, res := range outcome.Directives.Results {
		if res.Err == nil {
			continue
		}
		logError("  directive %s: %v", res.Directive.ID, res.Err)
		if res.Output != "" {
			logError("    %s", res.Output)
		}
	}
}
