// Package backend provides a common capability interface over VCS
// workspace backends.
package backend

import (
	"context"

	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// Backend is the capability set a VCS backend implements. Adapters are
// stateless: every call queries the underlying tool, nothing is cached.
type Backend interface {
	// Kind identifies the backend variant.
	Kind() registry.BackendKind

	// Available verifies the VCS tool is installed and the repository is
	// initialized for it. Returns a BackendUnavailable error otherwise.
	Available() error

	// Create produces a fully valid checkout at destPath based on sourceRef,
	// or leaves no residue behind. An empty sourceRef means the repository's
	// current head.
	Create(ctx context.Context, name, sourceRef, destPath string) (*registry.Workspace, error)

	// Remove deletes the workspace checkout. Refuses with NotOwned when the
	// backend does not recognize the workspace's root path as its own.
	Remove(ctx context.Context, ws *registry.Workspace) error

	// Switch prepares ws to become the current workspace. It must not
	// mutate any other workspace.
	Switch(ctx context.Context, ws *registry.Workspace) error

	// List returns the backend's ground-truth view of its workspaces.
	List(ctx context.Context) ([]*registry.Workspace, error)
}

// IsGitRepo reports whether path is a git repository root.
// .git can be a directory (normal repo) or a file (worktree).
func IsGitRepo(path string) bool {
	return gitRepoAt(path)
}

// IsJJRepo reports whether path is a jj repository root.
func IsJJRepo(path string) bool {
	return jjRepoAt(path)
}

// Detect returns the appropriate backend for the repository at repoPath, or
// nil if no backend recognizes it. Checks jj first, since jj repos also
// contain .git.
func Detect(repoPath, workspacesDir string, exec system.CommandExecutor) Backend {
	if jjRepoAt(repoPath) {
		return NewJJ(repoPath, workspacesDir, exec)
	}
	if gitRepoAt(repoPath) {
		return NewGit(repoPath, exec)
	}
	return nil
}

// ForKind returns the backend implementation for a registered kind, or nil
// for an unknown kind.
func ForKind(kind registry.BackendKind, repoPath, workspacesDir string, exec system.CommandExecutor) Backend {
	switch kind {
	case registry.KindVCSWorkspace:
		return NewJJ(repoPath, workspacesDir, exec)
	case registry.KindLinkedTree:
		return NewGit(repoPath, exec)
	default:
		return nil
	}
}
