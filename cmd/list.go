package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/health"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all workspaces",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	workspaces := a.Registry.List()
	if len(workspaces) == 0 {
		logInfo("No workspaces found. Create one with: warren create <name>")
		return nil
	}

	ctx := context.Background()
	current := a.Registry.Current()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBACKEND\tREF\tAGE\tSTATUS\tROOT")
	fmt.Fprintln(w, "----\t-------\t---\t---\t------\t----")

	for _, ws := range workspaces {
		check := health.Check(ctx, ws, backendFor(a, ws))

		marker := ""
		if ws.Name == current {
			marker = " *"
		}

		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n",
			ws.Name, marker, ws.BackendKind, ws.SourceRef, check.Age,
			formatStatus(check.Status), ws.RootPath)
	}

	return w.Flush()
}

func formatStatus(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✓ healthy"
	case health.StatusMissing:
		return "✗ missing"
	case health.StatusUnlisted:
		return "⚠ unlisted"
	case health.StatusRemoving:
		return "○ removing"
	default:
		return string(status)
	}
}
