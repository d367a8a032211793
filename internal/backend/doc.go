// Package backend provides a common capability interface over VCS
// workspace backends.
//
// This package abstracts the creation and removal of isolated checkouts
// backed by different version control systems. The rest of warren never
// branches on backend identity; it holds a Backend and calls through it.
//
// # Backend Interface
//
// The Backend interface defines operations for workspace management:
//
//	type Backend interface {
//	    Kind() registry.BackendKind
//	    Available() error
//	    Create(ctx, name, sourceRef, destPath string) (*registry.Workspace, error)
//	    Remove(ctx, ws *registry.Workspace) error
//	    Switch(ctx, ws *registry.Workspace) error
//	    List(ctx) ([]*registry.Workspace, error)
//	}
//
// # Git Backend
//
// GitBackend creates linked worktrees with dedicated warren/<name> branches:
//
//	b := backend.NewGit("/path/to/repo", system.DefaultExecutor())
//	b.Create(ctx, "feat-x", "main", "/state/workspaces/feat-x")
//	// Runs: git worktree add -b warren/feat-x /state/workspaces/feat-x <commit>
//
// # JJ Backend
//
// JJBackend creates named jj workspaces:
//
//	b := backend.NewJJ("/path/to/repo", workspacesDir, system.DefaultExecutor())
//	b.Create(ctx, "feat-x", "", "/state/workspaces/feat-x")
//	// Runs: jj workspace add --name feat-x /state/workspaces/feat-x
//
// # Atomicity and ownership
//
// Create either leaves a fully valid checkout at the destination or cleans
// up all partial state before returning an error. Remove refuses to touch a
// path the backend's own listing does not recognize (NotOwned), so a
// confused registry entry can never delete an unrelated directory.
package backend
