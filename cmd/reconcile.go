package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
)

var reconcileRepo string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-ground the registry against the VCS backends",
	Long: `reconcile compares the registry against each backend's own listing and
the filesystem, dropping records whose checkouts are gone, marking
unlisted workspaces stale, and adopting checkouts the registry missed.

The repository at --repo (default: the working directory) is always
consulted, so orphaned checkouts are found even when the registry has
no record of them.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileRepo, "repo", "r", "", "repository to scan for orphaned checkouts (default: working directory)")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	repo, err := repoOrCwd(reconcileRepo)
	if err != nil {
		return err
	}

	if err := a.Orchestrator.Reconcile(context.Background(), repo); err != nil {
		return err
	}

	logSuccess("Registry reconciled: %d workspaces", len(a.Registry.List()))
	return nil
}
