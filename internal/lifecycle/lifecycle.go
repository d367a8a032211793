package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/warren-vcs/warren/internal/audit"
	"github.com/warren-vcs/warren/internal/backend"
	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/directive"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/executor"
	"github.com/warren-vcs/warren/internal/lock"
	"github.com/warren-vcs/warren/internal/logging"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// Lifecycle states reported in OrchestrationError.State.
const (
	StateRequested         = "requested"
	StateBackendOp         = "backend-op"
	StateDirectivesRunning = "directives-running"
	StateCommitted         = "committed"
	StateRolledBack        = "rolled-back"
)

// Orchestrator sequences backend operations, registry updates, and directive
// runs for workspace lifecycle transitions. All operations serialize per
// workspace name, both in-process and across processes.
type Orchestrator struct {
	reg      *registry.Registry
	resolver *directive.Resolver
	runner   *executor.Executor
	paths    *config.Paths
	exec     system.CommandExecutor
	audit    *audit.Logger
	locks    *lock.MutexMap
}

// Options bundles the orchestrator's collaborators. Audit may be nil.
type Options struct {
	Registry *registry.Registry
	Resolver *directive.Resolver
	Runner   *executor.Executor
	Paths    *config.Paths
	Executor system.CommandExecutor
	Audit    *audit.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		reg:      opts.Registry,
		resolver: opts.Resolver,
		runner:   opts.Runner,
		paths:    opts.Paths,
		exec:     opts.Executor,
		audit:    opts.Audit,
		locks:    lock.NewMutexMap(),
	}
}

// CreateRequest describes a workspace to create.
type CreateRequest struct {
	Name      string
	RepoPath  string
	SourceRef string
	// DestPath overrides the default checkout location under the
	// workspaces directory.
	DestPath string
}

// Outcome reports the result of a lifecycle transition.
type Outcome struct {
	Workspace  *registry.Workspace
	Directives *executor.ExecutionResult

	// Degraded is set when the checkout was created and registered but its
	// on-create directives failed. The workspace is kept.
	Degraded bool
}

// Create provisions a new workspace: backend checkout, registry record,
// then on-create directives. A backend or registry failure leaves no
// residue. A directive failure keeps the workspace and reports it as
// degraded alongside the error.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*Outcome, error) {
	if err := config.ValidateWorkspaceName(req.Name); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	destPath := req.DestPath
	if destPath == "" {
		destPath = filepath.Join(o.paths.WorkspacesDir, req.Name)
	}

	unlock, err := o.lockWorkspace(req.Name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if existing, ok := o.reg.Lookup(req.Name); ok && existing.Status == registry.StatusActive {
		return nil, errors.DuplicateName(req.Name)
	}

	b := backend.Detect(req.RepoPath, o.paths.WorkspacesDir, o.exec)
	if b == nil {
		return nil, errors.BackendUnavailable("auto-detect",
			fmt.Errorf("no git or jj repository at %s", req.RepoPath))
	}

	ws, err := b.Create(ctx, req.Name, req.SourceRef, destPath)
	if err != nil {
		o.logEvent(audit.EventError, req.Name, "create failed: "+err.Error())
		return nil, o.orchErr("create", req.Name, StateBackendOp, err)
	}
	ws.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := o.reg.Register(ws); err != nil {
		// The checkout exists but cannot be recorded. Tear it down so a
		// later retry starts clean.
		if rmErr := b.Remove(ctx, ws); rmErr != nil {
			logging.Warn("rollback of unregistered checkout failed",
				"workspace", ws.Name, "path", ws.RootPath, "error", rmErr)
		}
		return nil, o.orchErr("create", req.Name, StateRolledBack, err)
	}
	if err := o.reg.SetCurrent(ws.Name); err != nil {
		logging.Warn("failed to record current workspace", "workspace", ws.Name, "error", err)
	}
	o.logEvent(audit.EventCreate, ws.Name, "ref="+req.SourceRef)

	outcome := &Outcome{Workspace: ws}
	result, err := o.runDirectives(ctx, ws, directive.TriggerOnCreate)
	outcome.Directives = result
	if err != nil {
		// The checkout is valid even though its setup did not finish.
		outcome.Degraded = true
		o.logEvent(audit.EventError, ws.Name, "on-create directives failed: "+err.Error())
		return outcome, o.orchErr("create", ws.Name, StateDirectivesRunning, err)
	}

	return outcome, nil
}

// Switch makes the named workspace current. The backend prepares the
// checkout first; on-switch directives run only after that succeeds, and
// the registry's current pointer moves only after the directives pass.
func (o *Orchestrator) Switch(ctx context.Context, name string) (*Outcome, error) {
	unlock, err := o.lockWorkspace(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ws, ok := o.reg.Lookup(name)
	if !ok {
		return nil, errors.WorkspaceNotFound(name)
	}
	if ws.Status != registry.StatusActive {
		return nil, errors.ValidationError(
			fmt.Sprintf("workspace %s is %s; run reconcile first", name, ws.Status))
	}

	b := backend.ForKind(ws.BackendKind, ws.SourceRepo, o.paths.WorkspacesDir, o.exec)
	if b == nil {
		return nil, errors.BackendUnavailable(string(ws.BackendKind), nil)
	}

	if err := b.Switch(ctx, ws); err != nil {
		return nil, o.orchErr("switch", name, StateBackendOp, err)
	}

	outcome := &Outcome{Workspace: ws}
	result, err := o.runDirectives(ctx, ws, directive.TriggerOnSwitch)
	outcome.Directives = result
	if err != nil {
		o.logEvent(audit.EventError, name, "on-switch directives failed: "+err.Error())
		return outcome, o.orchErr("switch", name, StateDirectivesRunning, err)
	}

	if err := o.reg.SetCurrent(name); err != nil {
		return outcome, o.orchErr("switch", name, StateCommitted, err)
	}
	o.logEvent(audit.EventSwitch, name, "")

	return outcome, nil
}

// Remove tears down a workspace: on-remove directives first, then the
// backend checkout, then the registry record. A failing directive without
// continue_on_error aborts the removal unless force is set. With force,
// directive and backend failures are logged and the record is dropped
// regardless.
func (o *Orchestrator) Remove(ctx context.Context, name string, force bool) (*Outcome, error) {
	unlock, err := o.lockWorkspace(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ws, ok := o.reg.Lookup(name)
	if !ok {
		return nil, errors.WorkspaceNotFound(name)
	}

	outcome := &Outcome{Workspace: ws}

	if _, statErr := os.Stat(ws.RootPath); statErr == nil {
		result, err := o.runDirectives(ctx, ws, directive.TriggerOnRemove)
		outcome.Directives = result
		if err != nil {
			if !force {
				o.logEvent(audit.EventError, name, "on-remove directives failed: "+err.Error())
				return outcome, o.orchErr("remove", name, StateDirectivesRunning, err)
			}
			logging.Warn("ignoring on-remove directive failure", "workspace", name, "error", err)
		}
	} else {
		logging.Warn("checkout missing, skipping on-remove directives",
			"workspace", name, "path", ws.RootPath)
	}

	if err := o.reg.SetStatus(name, registry.StatusRemoving); err != nil {
		return outcome, o.orchErr("remove", name, StateRequested, err)
	}

	b := backend.ForKind(ws.BackendKind, ws.SourceRepo, o.paths.WorkspacesDir, o.exec)
	if b == nil {
		return outcome, errors.BackendUnavailable(string(ws.BackendKind), nil)
	}
	if err := b.Remove(ctx, ws); err != nil {
		if !force {
			// Status stays removing so a crash or retry has an explainable
			// record; reconcile or a forced remove can finish the job.
			o.logEvent(audit.EventError, name, "backend remove failed: "+err.Error())
			return outcome, o.orchErr("remove", name, StateBackendOp, err)
		}
		logging.Warn("ignoring backend remove failure", "workspace", name, "error", err)
	}

	if err := o.reg.Unregister(name); err != nil {
		return outcome, o.orchErr("remove", name, StateBackendOp, err)
	}
	o.logEvent(audit.EventRemove, name, "")

	return outcome, nil
}

// Reconcile re-grounds the registry against every backend that owns a
// registered workspace, plus the backend detected at repoPath (when given).
// The detected ground covers the cold-registry case: a crash between the
// first-ever backend create and the registry persist leaves an orphan no
// registered workspace points at.
func (o *Orchestrator) Reconcile(ctx context.Context, repoPath string) error {
	seen := make(map[string]bool)
	var grounds []registry.Ground
	if repoPath != "" {
		if b := backend.Detect(repoPath, o.paths.WorkspacesDir, o.exec); b != nil {
			seen[string(b.Kind())+"\x00"+repoPath] = true
			grounds = append(grounds, b)
		}
	}
	for _, ws := range o.reg.List() {
		key := string(ws.BackendKind) + "\x00" + ws.SourceRepo
		if seen[key] {
			continue
		}
		seen[key] = true
		if b := backend.ForKind(ws.BackendKind, ws.SourceRepo, o.paths.WorkspacesDir, o.exec); b != nil {
			grounds = append(grounds, b)
		}
	}

	if err := o.reg.Reconcile(ctx, grounds...); err != nil {
		return err
	}
	o.logEvent(audit.EventReconcile, "registry", fmt.Sprintf("grounds=%d", len(grounds)))
	return nil
}

// runDirectives resolves and executes the workspace's directives for a
// trigger. Resolution warnings surface in the log; resolution errors and
// fatal directive failures come back as the error.
func (o *Orchestrator) runDirectives(ctx context.Context, ws *registry.Workspace, trigger directive.Trigger) (*executor.ExecutionResult, error) {
	set, err := o.resolver.Resolve(ws, trigger)
	if err != nil {
		return nil, err
	}
	for _, w := range set.Warnings {
		logging.UserWarning("%s", w)
	}
	result, err := o.runner.Run(ctx, ws, set)
	if result != nil && !set.Empty() {
		o.logEvent(audit.EventDirective, ws.Name,
			fmt.Sprintf("trigger=%s ran=%d ok=%t", trigger, len(result.Results), result.Succeeded))
	}
	return result, err
}

// lockWorkspace serializes operations on a workspace name, in-process via
// the mutex map and across processes via a lock file.
func (o *Orchestrator) lockWorkspace(name string) (func(), error) {
	o.locks.Lock(name)

	lockPath, err := o.paths.LockPath(name)
	if err != nil {
		o.locks.Unlock(name)
		return nil, errors.ValidationError(err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		o.locks.Unlock(name)
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to create lock directory", err)
	}

	fl := lock.NewFileLock(lockPath)
	if err := fl.TryLock(); err != nil {
		o.locks.Unlock(name)
		return nil, errors.Wrap(errors.ExitGeneralError,
			fmt.Sprintf("workspace %s is locked by another warren process", name), err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			logging.Debug("failed to release lock file", "workspace", name, "error", err)
		}
		o.locks.Unlock(name)
	}, nil
}

func (o *Orchestrator) logEvent(eventType audit.EventType, name, details string) {
	if o.audit == nil {
		return
	}
	if err := o.audit.LogEvent(eventType, name, details); err != nil {
		logging.Debug("audit log write failed", "workspace", name, "error", err)
	}
}

func (o *Orchestrator) orchErr(op, name, state string, err error) error {
	return &errors.OrchestrationError{Op: op, Name: name, State: state, Err: err}
}
