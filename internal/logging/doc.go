// Package logging provides logging utilities for warren.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("creating workspace", "name", name, "backend", kind)
//	logging.Warn("registry entry dropped", "name", name)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Resolving directives for %s...", name)
//	logging.UserSuccess("Workspace %s created", name)
//	logging.UserWarning("Directive %s failed, continuing", id)
//	logging.UserError("Failed to create workspace: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
