package logging

import (
	"fmt"
	"os"
)

// User-facing output with status-glyph prefixes. Unlike the structured
// debug channel, these write straight to stdout/stderr: they are the
// CLI's voice, not its diagnostics. Info and success go to stdout;
// warnings and errors go to stderr so scripted callers can separate them.

// UserInfo prints an informational line.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success line.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning line to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// UserError prints an error line to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
