package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/directive"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// Executor runs resolved directive sets against a workspace checkout.
// Directives execute strictly in order; a failure stops the run unless the
// failing directive opted into continue_on_error.
type Executor struct {
	exec    system.CommandExecutor
	shell   string
	timeout time.Duration
}

// New creates an Executor configured from Settings, running commands
// through the default system executor.
func New(settings *config.Settings) *Executor {
	return NewWithExecutor(settings, system.DefaultExecutor())
}

// NewWithExecutor creates an Executor with an explicit CommandExecutor.
func NewWithExecutor(settings *config.Settings, exec system.CommandExecutor) *Executor {
	return &Executor{
		exec:    exec,
		shell:   settings.Shell,
		timeout: settings.DefaultTimeout.Std(),
	}
}

// DirectiveResult records the outcome of one directive.
type DirectiveResult struct {
	Directive directive.Directive
	Output    string
	Err       error
	Duration  time.Duration
	TimedOut  bool
}

// ExecutionResult records the outcome of a full run. FailedIndex is the
// position of the directive that aborted the run, or -1 when none did.
type ExecutionResult struct {
	Trigger     directive.Trigger
	Results     []DirectiveResult
	Succeeded   bool
	FailedIndex int
}

// Run executes every directive in set against ws, in set order. It returns
// the per-directive results together with an error when a directive without
// continue_on_error failed. Cancellation is honored between directives; a
// directive already running is bounded by its own timeout instead.
func (e *Executor) Run(ctx context.Context, ws *registry.Workspace, set *directive.Set) (*ExecutionResult, error) {
	result := &ExecutionResult{
		Trigger:     set.Trigger,
		Succeeded:   true,
		FailedIndex: -1,
	}
	if set.Empty() {
		return result, nil
	}

	for i, d := range set.Directives {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				result.Succeeded = false
				result.FailedIndex = i
				return result, errors.Wrap(errors.ExitDirectiveFailed,
					fmt.Sprintf("run aborted before directive %s", d.ID), err)
			}
		}

		res := e.runOne(ctx, ws, d)
		result.Results = append(result.Results, res)

		if res.Err == nil {
			continue
		}
		if d.ContinueOnError {
			logging.Warn("directive failed, continuing",
				"directive", d.ID,
				"workspace", ws.Name,
				"error", res.Err)
			continue
		}
		result.Succeeded = false
		result.FailedIndex = i
		return result, errors.Wrap(errors.ExitDirectiveFailed,
			fmt.Sprintf("directive %s failed", d.ID), res.Err)
	}

	return result, nil
}

// RunCommand executes a single ad-hoc command line in the workspace root,
// under the same shell, timeout, and output capture as a directive.
func (e *Executor) RunCommand(ctx context.Context, ws *registry.Workspace, command string) (DirectiveResult, error) {
	res := e.runOne(ctx, ws, directive.Directive{ID: "run", Command: command})
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

// runOne executes a single directive with its working directory resolved
// inside the workspace root and its runtime bounded by the timeout.
func (e *Executor) runOne(ctx context.Context, ws *registry.Workspace, d directive.Directive) DirectiveResult {
	res := DirectiveResult{Directive: d}

	workDir, err := ResolveWorkDir(ws.RootPath, d.WorkingDir)
	if err != nil {
		res.Err = err
		return res
	}

	logging.Debug("running directive",
		"directive", d.ID,
		"workspace", ws.Name,
		"trigger", d.Trigger,
		"dir", workDir)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	output, err := e.exec.ExecuteShell(runCtx, e.shell, workDir, d.Command)
	res.Duration = time.Since(start)
	res.Output = string(output)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			res.TimedOut = true
			res.Err = &errors.WarrenError{
				Code:    errors.ExitDirectiveFailed,
				Message: fmt.Sprintf("directive %s timed out after %s", d.ID, e.timeout),
				Kind:    errors.ErrTimeout,
				Cause:   err,
			}
			return res
		}
		res.Err = errors.Wrap(errors.ExitDirectiveFailed,
			fmt.Sprintf("directive %s: %s", d.ID, firstLine(res.Output)), err)
	}
	return res
}

// ResolveWorkDir resolves a directive's working_dir relative to the
// workspace root. Absolute paths, traversal outside the root, and symlinks
// pointing out of the root are rejected.
func ResolveWorkDir(root, workingDir string) (string, error) {
	if workingDir == "" || workingDir == "." {
		return root, nil
	}
	cleaned := filepath.Clean(workingDir)
	if !filepath.IsLocal(cleaned) {
		return "", errors.PathEscape(workingDir)
	}
	joined, err := securejoin.SecureJoin(root, cleaned)
	if err != nil {
		return "", errors.PathEscape(workingDir)
	}
	return joined, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
