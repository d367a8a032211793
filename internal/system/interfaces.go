// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
)

// CommandExecutor abstracts external command execution for testability.
// Backends and the directive executor run every external process through
// this interface so tests stay hermetic.
type CommandExecutor interface {
	// Execute runs a command and returns its combined output.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)

	// ExecuteShell runs a command line through the given shell with the
	// working directory set to dir, returning combined output. The context
	// bounds execution; on cancellation or deadline the process is killed.
	ExecuteShell(ctx context.Context, shell, dir, command string) ([]byte, error)

	// LookPath reports the full path of an executable, or an error if it is
	// not installed.
	LookPath(name string) (string, error)
}

// defaultExecutor is the process-wide executor using real OS operations.
var defaultExecutor CommandExecutor = &osExecutor{}

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// SetDefaultExecutor sets the default CommandExecutor (useful for testing).
func SetDefaultExecutor(exec CommandExecutor) {
	defaultExecutor = exec
}

// ResetDefaults restores the default OS implementation.
func ResetDefaults() {
	defaultExecutor = &osExecutor{}
}
