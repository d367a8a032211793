package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// JJBackend implements Backend for jj (Jujutsu) repositories using named
// workspaces. jj does not report workspace roots in its listing, so the
// backend assumes the warren convention of workspacesDir/<name> when
// reconstructing paths.
type JJBackend struct {
	repoPath      string
	workspacesDir string
	exec          system.CommandExecutor
}

// NewJJ returns a jj workspace backend rooted at repoPath.
func NewJJ(repoPath, workspacesDir string, exec system.CommandExecutor) *JJBackend {
	return &JJBackend{repoPath: repoPath, workspacesDir: workspacesDir, exec: exec}
}

func (b *JJBackend) Kind() registry.BackendKind {
	return registry.KindVCSWorkspace
}

func jjRepoAt(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".jj", "repo"))
	return err == nil && info.IsDir()
}

func (b *JJBackend) Available() error {
	if _, err := b.exec.LookPath("jj"); err != nil {
		return errors.BackendUnavailable("jj", err)
	}
	if !jjRepoAt(b.repoPath) {
		return errors.BackendUnavailable("jj", errors.ValidationError(b.repoPath+" is not a jj repository"))
	}
	return nil
}

func (b *JJBackend) Create(ctx context.Context, name, sourceRef, destPath string) (*registry.Workspace, error) {
	if err := config.ValidateWorkspaceName(name); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if err := b.Available(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(destPath); err == nil {
		return nil, errors.PathCollision(destPath)
	}

	if sourceRef != "" {
		if out, err := b.jj(ctx, "log", "--no-graph", "-T", "", "-r", sourceRef); err != nil {
			logging.Debug("jj revision check failed", "ref", sourceRef, "output", string(out))
			return nil, errors.RefNotFound(sourceRef)
		}
	}

	args := []string{"workspace", "add", "--name", name}
	if sourceRef != "" {
		args = append(args, "-r", sourceRef)
	}
	args = append(args, destPath)

	out, err := b.jj(ctx, args...)
	if err != nil {
		// Forget the half-created workspace and remove any residue so a
		// failed create leaves nothing behind.
		b.jj(ctx, "workspace", "forget", name)
		if rmErr := os.RemoveAll(destPath); rmErr != nil {
			logging.Warn("failed to remove partial checkout", "path", destPath, "error", rmErr)
		}
		return nil, classifyJJ(out, err)
	}

	return &registry.Workspace{
		Name:        name,
		RootPath:    destPath,
		BackendKind: registry.KindVCSWorkspace,
		SourceRef:   sourceRef,
		SourceRepo:  b.repoPath,
		Status:      registry.StatusActive,
	}, nil
}

func (b *JJBackend) Remove(ctx context.Context, ws *registry.Workspace) error {
	if err := b.Available(); err != nil {
		return err
	}
	if !b.ownsWorkspace(ctx, ws) {
		return errors.NotOwned(ws.Name, ws.RootPath)
	}

	if out, err := b.jj(ctx, "workspace", "forget", ws.Name); err != nil {
		return errors.Wrap(errors.ExitBackendError, "jj workspace forget failed: "+strings.TrimSpace(string(out)), err)
	}

	if err := os.RemoveAll(ws.RootPath); err != nil {
		return errors.Wrap(errors.ExitBackendError, "failed to remove workspace directory", err)
	}

	return nil
}

func (b *JJBackend) Switch(ctx context.Context, ws *registry.Workspace) error {
	if err := b.Available(); err != nil {
		return err
	}
	if !b.ownsWorkspace(ctx, ws) {
		return errors.NotOwned(ws.Name, ws.RootPath)
	}
	// Refresh the working copy if other workspaces moved it forward
	out, err := b.exec.Execute(ctx, "jj", "-R", ws.RootPath, "workspace", "update-stale")
	if err != nil {
		return errors.Wrap(errors.ExitBackendError, "jj workspace update-stale failed: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (b *JJBackend) List(ctx context.Context) ([]*registry.Workspace, error) {
	if err := b.Available(); err != nil {
		return nil, err
	}
	names, err := b.workspaceNames(ctx)
	if err != nil {
		return nil, err
	}

	var workspaces []*registry.Workspace
	for _, name := range names {
		if name == "default" {
			continue
		}
		workspaces = append(workspaces, &registry.Workspace{
			Name:        name,
			RootPath:    filepath.Join(b.workspacesDir, name),
			BackendKind: registry.KindVCSWorkspace,
			SourceRepo:  b.repoPath,
			Status:      registry.StatusActive,
		})
	}
	return workspaces, nil
}

// ownsWorkspace reports whether jj lists the workspace name and its root
// carries the secondary-checkout marker. Guards against deleting a path jj
// never created.
func (b *JJBackend) ownsWorkspace(ctx context.Context, ws *registry.Workspace) bool {
	names, err := b.workspaceNames(ctx)
	if err != nil {
		return false
	}
	listed := false
	for _, name := range names {
		if name == ws.Name {
			listed = true
			break
		}
	}
	if !listed {
		return false
	}
	_, err = os.Stat(filepath.Join(ws.RootPath, ".jj"))
	return err == nil
}

func (b *JJBackend) workspaceNames(ctx context.Context) ([]string, error) {
	out, err := b.jj(ctx, "workspace", "list")
	if err != nil {
		return nil, errors.BackendFailed("list", err)
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
			names = append(names, strings.TrimSpace(parts[0]))
		}
	}
	return names, nil
}

func (b *JJBackend) jj(ctx context.Context, args ...string) ([]byte, error) {
	full := append(args, "-R", b.repoPath)
	return b.exec.Execute(ctx, "jj", full...)
}

// classifyJJ maps jj's stderr onto the adapter error taxonomy.
func classifyJJ(output []byte, err error) error {
	text := strings.ToLower(string(output))
	switch {
	case strings.Contains(text, "already exists"):
		return errors.PathCollision(strings.TrimSpace(string(output)))
	case strings.Contains(text, "doesn't exist"), strings.Contains(text, "no such revision"):
		return errors.RefNotFound(strings.TrimSpace(string(output)))
	case strings.Contains(text, "there is no jj repo"):
		return errors.BackendUnavailable("jj", err)
	default:
		return errors.Wrap(errors.ExitBackendError, "jj workspace add failed: "+strings.TrimSpace(string(output)), err)
	}
}
