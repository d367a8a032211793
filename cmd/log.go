package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/errors"
)

var logCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Display the lifecycle event trail for a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

var logJSON bool

func init() {
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output events as JSON lines")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	events, err := a.Audit.Events(name)
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for workspace %s", name)
		return nil
	}

	for _, e := range events {
		if logJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Println(string(data))
		} else {
			ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
			if e.Details != "" {
				fmt.Printf("[%s] %-9s %s (%s)\n", ts, e.Type, e.Workspace, e.Details)
			} else {
				fmt.Printf("[%s] %-9s %s\n", ts, e.Type, e.Workspace)
			}
		}
	}

	return nil
}
