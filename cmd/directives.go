package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/directive"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/highlight"
)

var directivesCmd = &cobra.Command{
	Use:   "directives <name>",
	Short: "Show the directives resolved for a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runDirectives,
}

var (
	directivesTrigger string
	directivesRaw     bool
)

func init() {
	directivesCmd.Flags().StringVarP(&directivesTrigger, "trigger", "t", "", "Show a single trigger (on-create, on-switch, on-remove)")
	directivesCmd.Flags().BoolVar(&directivesRaw, "raw", false, "Print the layer files instead of the resolved set")
	rootCmd.AddCommand(directivesCmd)
}

func runDirectives(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return errors.ConfigError("failed to initialize", err)
	}

	ws, err := lookupWorkspace(a, args[0])
	if err != nil {
		return err
	}

	if directivesRaw {
		return printLayerFiles(a.Paths.GlobalDirectivesPath(),
			config.RepoDirectivesPath(ws.SourceRepo),
			config.WorkspaceDirectivesPath(ws.RootPath))
	}

	triggers := []directive.Trigger{
		directive.TriggerOnCreate,
		directive.TriggerOnSwitch,
		directive.TriggerOnRemove,
	}
	if directivesTrigger != "" {
		t, err := directive.ParseTrigger(directivesTrigger)
		if err != nil {
			return errors.New(errors.ExitGeneralError, err.Error())
		}
		triggers = []directive.Trigger{t}
	}

	for _, trigger := range triggers {
		set, err := a.Resolver.Resolve(ws, trigger)
		if err != nil {
			return err
		}
		for _, w := range set.Warnings {
			logWarning("%s", w)
		}
		if set.Empty() {
			continue
		}

		fmt.Printf("%s:\n", trigger)
		for _, d := range set.Directives {
			flags := ""
			if d.ContinueOnError {
				flags = " (continue-on-error)"
			}
			fmt.Printf("  %-20s [%s]%s  %s\n", d.ID, d.SourceLayer, flags, d.Command)
			if d.WorkingDir != "" {
				fmt.Printf("  %-20s in %s\n", "", d.WorkingDir)
			}
		}
	}

	return nil
}

// printLayerFiles dumps each existing layer file with syntax coloring.
func printLayerFiles(paths ...string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrap(errors.ExitGeneralError, "cannot read "+path, err)
		}
		fmt.Printf("# %s\n%s\n", path, highlight.TOML(data))
	}
	return nil
}
