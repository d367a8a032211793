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

const gitBranchPrefix = "warren/"

// GitBackend implements Backend for git repositories using linked worktrees.
// Each workspace gets a dedicated branch named warren/<name>.
type GitBackend struct {
	repoPath string
	exec     system.CommandExecutor
}

// NewGit returns a git worktree backend rooted at repoPath.
func NewGit(repoPath string, exec system.CommandExecutor) *GitBackend {
	return &GitBackend{repoPath: repoPath, exec: exec}
}

func (b *GitBackend) Kind() registry.BackendKind {
	return registry.KindLinkedTree
}

func gitRepoAt(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

func (b *GitBackend) Available() error {
	if _, err := b.exec.LookPath("git"); err != nil {
		return errors.BackendUnavailable("git", err)
	}
	if !gitRepoAt(b.repoPath) {
		return errors.BackendUnavailable("git", errors.ValidationError(b.repoPath+" is not a git repository"))
	}
	return nil
}

// BranchName returns the branch a workspace checks out.
func (b *GitBackend) BranchName(name string) string {
	return gitBranchPrefix + name
}

func (b *GitBackend) Create(ctx context.Context, name, sourceRef, destPath string) (*registry.Workspace, error) {
	if err := config.ValidateWorkspaceName(name); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if err := b.Available(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(destPath); err == nil {
		return nil, errors.PathCollision(destPath)
	}

	ref := sourceRef
	if ref == "" {
		ref = "HEAD"
	}
	out, err := b.git(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return nil, errors.RefNotFound(ref)
	}
	commit := strings.TrimSpace(string(out))

	branch := b.BranchName(name)
	branchWasNew := !b.branchExists(ctx, branch)

	var createOut []byte
	if branchWasNew {
		createOut, err = b.git(ctx, "worktree", "add", "-b", branch, destPath, commit)
	} else {
		createOut, err = b.git(ctx, "worktree", "add", destPath, branch)
	}
	if err != nil {
		// No residue on failure: a partially written checkout and the
		// branch created en route are both rolled back here.
		b.scrub(ctx, destPath, branch, branchWasNew)
		return nil, classifyGit(createOut, err)
	}

	return &registry.Workspace{
		Name:        name,
		RootPath:    destPath,
		BackendKind: registry.KindLinkedTree,
		SourceRef:   sourceRef,
		SourceRepo:  b.repoPath,
		Status:      registry.StatusActive,
	}, nil
}

func (b *GitBackend) Remove(ctx context.Context, ws *registry.Workspace) error {
	if err := b.Available(); err != nil {
		return err
	}
	if !b.ownsWorktree(ctx, ws.RootPath) {
		return errors.NotOwned(ws.Name, ws.RootPath)
	}

	if _, err := b.git(ctx, "worktree", "remove", ws.RootPath); err != nil {
		out, err := b.git(ctx, "worktree", "remove", "--force", ws.RootPath)
		if err != nil {
			return errors.Wrap(errors.ExitBackendError, "git worktree remove failed: "+strings.TrimSpace(string(out)), err)
		}
	}

	branch := b.BranchName(ws.Name)
	if _, err := b.git(ctx, "branch", "-d", branch); err != nil {
		// The worktree is already gone; the branch may have been merged or
		// deleted manually, so force deletion is best-effort.
		if _, err := b.git(ctx, "branch", "-D", branch); err != nil {
			logging.Debug("branch deletion failed after worktree removal", "branch", branch, "error", err)
		}
	}

	return nil
}

func (b *GitBackend) Switch(ctx context.Context, ws *registry.Workspace) error {
	if err := b.Available(); err != nil {
		return err
	}
	if !b.ownsWorktree(ctx, ws.RootPath) {
		return errors.NotOwned(ws.Name, ws.RootPath)
	}
	out, err := b.exec.Execute(ctx, "git", "-C", ws.RootPath, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return errors.Wrap(errors.ExitBackendError, "checkout unusable: "+strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (b *GitBackend) List(ctx context.Context) ([]*registry.Workspace, error) {
	if err := b.Available(); err != nil {
		return nil, err
	}
	out, err := b.git(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.BackendFailed("list", err)
	}

	var workspaces []*registry.Workspace
	var current *registry.Workspace
	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			current = &registry.Workspace{
				RootPath:    strings.TrimPrefix(line, "worktree "),
				BackendKind: registry.KindLinkedTree,
				SourceRepo:  b.repoPath,
				Status:      registry.StatusActive,
			}
		case strings.HasPrefix(line, "branch refs/heads/"+gitBranchPrefix):
			if current == nil {
				continue
			}
			current.Name = strings.TrimPrefix(line, "branch refs/heads/"+gitBranchPrefix)
			current.SourceRef = gitBranchPrefix + current.Name
			workspaces = append(workspaces, current)
			current = nil
		}
	}
	return workspaces, nil
}

// ownsWorktree reports whether git lists a worktree at the given path.
// Guards remove/switch against path confusion.
func (b *GitBackend) ownsWorktree(ctx context.Context, path string) bool {
	out, err := b.git(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return false
	}
	absPath, _ := filepath.Abs(path)
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "worktree ") &&
			strings.TrimPrefix(line, "worktree ") == absPath {
			return true
		}
	}
	return false
}

func (b *GitBackend) branchExists(ctx context.Context, branch string) bool {
	_, err := b.git(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// scrub removes the partial results of a failed create.
func (b *GitBackend) scrub(ctx context.Context, destPath, branch string, deleteBranch bool) {
	if err := os.RemoveAll(destPath); err != nil {
		logging.Warn("failed to remove partial checkout", "path", destPath, "error", err)
	}
	b.git(ctx, "worktree", "prune")
	if deleteBranch {
		b.git(ctx, "branch", "-D", branch)
	}
}

func (b *GitBackend) git(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", b.repoPath}, args...)
	return b.exec.Execute(ctx, "git", full...)
}

// classifyGit maps git's stderr onto the adapter error taxonomy.
func classifyGit(output []byte, err error) error {
	text := strings.ToLower(string(output))
	switch {
	case strings.Contains(text, "already exists"):
		return errors.PathCollision(strings.TrimSpace(string(output)))
	case strings.Contains(text, "unknown revision"),
		strings.Contains(text, "not a valid object name"),
		strings.Contains(text, "invalid reference"):
		return errors.RefNotFound(strings.TrimSpace(string(output)))
	case strings.Contains(text, "not a git repository"):
		return errors.BackendUnavailable("git", err)
	default:
		return errors.Wrap(errors.ExitBackendError, "git worktree add failed: "+strings.TrimSpace(string(output)), err)
	}
}
