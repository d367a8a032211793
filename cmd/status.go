package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show a workspace's health and record",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	ws, err := lookupWorkspace(a, args[0])
	if err != nil {
		return err
	}

	check := health.Check(context.Background(), ws, backendFor(a, ws))

	fmt.Printf("Name:      %s\n", ws.Name)
	fmt.Printf("Backend:   %s\n", ws.BackendKind)
	fmt.Printf("Ref:       %s\n", ws.SourceRef)
	fmt.Printf("Repo:      %s\n", ws.SourceRepo)
	fmt.Printf("Root:      %s\n", ws.RootPath)
	fmt.Printf("Age:       %s\n", check.Age)
	fmt.Printf("Status:    %s\n", formatStatus(check.Status))
	if ws.Name == a.Registry.Current() {
		fmt.Printf("Current:   yes\n")
	}

	if check.Status == health.StatusMissing {
		logWarning("Checkout directory is gone; run: warren reconcile")
	}
	if check.Status == health.StatusUnlisted {
		logWarning("Backend no longer lists this workspace; run: warren reconcile")
	}

	return nil
}
