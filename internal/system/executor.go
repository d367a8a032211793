package system

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// osExecutor implements CommandExecutor using real OS operations.
type osExecutor struct{}

func (e *osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func (e *osExecutor) ExecuteShell(ctx context.Context, shell, dir, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = dir
	// Don't let a child holding the pipe open stall Wait after the kill
	cmd.WaitDelay = time.Second
	return cmd.CombinedOutput()
}

func (e *osExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExitError carries an explicit exit status. Mock executors return it so
// callers can observe non-zero exits without a real process.
type ExitError struct {
	Code   int
	Output []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the process exit status carried by err.
// Returns -1 when the error does not carry one (spawn failure, kill).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	var me *ExitError
	if errors.As(err, &me) {
		return me.Code
	}
	return -1
}
