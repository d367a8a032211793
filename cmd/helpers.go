package cmd

import (
	"os"
	"sync"

	"github.com/warren-vcs/warren/internal/app"
	"github.com/warren-vcs/warren/internal/backend"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/registry"
)

var (
	appOnce sync.Once
	appInst *app.App
	appErr  error

	// appFactory builds the application context; tests replace it.
	appFactory = func() (*app.App, error) { return app.New() }
)

// getApp returns the shared application context, building it on first use.
func getApp() (*app.App, error) {
	appOnce.Do(func() {
		appInst, appErr = appFactory()
	})
	return appInst, appErr
}

// resetApp discards the shared context so tests can rebuild it.
func resetApp(factory func() (*app.App, error)) {
	appOnce = sync.Once{}
	appInst, appErr = nil, nil
	if factory != nil {
		appFactory = factory
	}
}

// lookupWorkspace loads a workspace record or returns WorkspaceNotFound.
func lookupWorkspace(a *app.App, name string) (*registry.Workspace, error) {
	ws, ok := a.Registry.Lookup(name)
	if !ok {
		return nil, errors.WorkspaceNotFound(name)
	}
	return ws, nil
}

// backendFor returns the backend owning a registered workspace.
func backendFor(a *app.App, ws *registry.Workspace) backend.Backend {
	return backend.ForKind(ws.BackendKind, ws.SourceRepo, a.Paths.WorkspacesDir, a.Exec)
}

// repoOrCwd resolves the repository path flag, defaulting to the working
// directory.
func repoOrCwd(repo string) (string, error) {
	if repo != "" {
		return repo, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "cannot determine working directory", err)
	}
	return cwd, nil
}
