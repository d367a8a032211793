// Package config provides configuration loading and path resolution for warren.
//
// # Layout
//
// Paths are resolved from XDG environment variables:
//
//	$XDG_CONFIG_HOME/warren/config.toml       global settings
//	$XDG_CONFIG_HOME/warren/directives.toml   global directive layer
//	$XDG_STATE_HOME/warren/registry.json      workspace registry snapshot
//	$XDG_STATE_HOME/warren/workspaces/        default checkout parent
//	$XDG_STATE_HOME/warren/locks/             per-workspace advisory locks
//
// The repository directive layer lives at <repo>/.warren/directives.toml and
// the workspace-local layer at <workspace>/.warren/local.toml.
//
// # Settings
//
// config.toml is decoded strictly; unknown keys are rejected:
//
//	default_timeout = "90s"
//	shell = "bash"
//	workspaces_dir = "/work/checkouts"
//
// # Validation
//
// ValidateWorkspaceName restricts names to path- and ref-safe characters.
// SafePath guards constructed paths against traversal out of a base
// directory.
package config
