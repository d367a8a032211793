// Package app provides the application context for warren.
// It allows dependency injection for testing.
package app

import (
	"github.com/warren-vcs/warren/internal/audit"
	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/directive"
	"github.com/warren-vcs/warren/internal/executor"
	"github.com/warren-vcs/warren/internal/lifecycle"
	"github.com/warren-vcs/warren/internal/logging"
	"github.com/warren-vcs/warren/internal/registry"
	"github.com/warren-vcs/warren/internal/system"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// Settings is the loaded global configuration
	Settings *config.Settings

	// Registry is the persisted workspace registry
	Registry *registry.Registry

	// Resolver resolves directive layers
	Resolver *directive.Resolver

	// Runner executes resolved directive sets
	Runner *executor.Executor

	// Orchestrator sequences lifecycle transitions
	Orchestrator *lifecycle.Orchestrator

	// Audit records lifecycle events
	Audit *audit.Logger

	// Exec runs external commands
	Exec system.CommandExecutor
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithSettings sets custom settings
func WithSettings(settings *config.Settings) Option {
	return func(a *App) {
		a.Settings = settings
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// New creates a new App with the given options and wires the remaining
// collaborators from them. Settings load failures fall back to defaults
// with a warning; a registry load failure is fatal and surfaces here.
func New(opts ...Option) (*App, error) {
	app := &App{
		Paths: config.DefaultPaths(),
		Exec:  system.DefaultExecutor(),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.Settings == nil {
		settings, err := config.LoadSettings(app.Paths.SettingsPath())
		if err != nil {
			logging.UserWarning("ignoring unusable settings: %v", err)
			settings = config.DefaultSettings()
		}
		app.Settings = settings
	}
	if app.Settings.WorkspacesDir != "" {
		app.Paths.WorkspacesDir = app.Settings.WorkspacesDir
	}

	if err := app.Paths.EnsureDirs(); err != nil {
		return nil, err
	}

	reg, err := registry.Load(app.Paths.RegistryPath())
	if err != nil {
		return nil, err
	}
	app.Registry = reg

	app.Resolver = directive.NewResolver(app.Paths)
	app.Runner = executor.NewWithExecutor(app.Settings, app.Exec)
	app.Audit = audit.NewLogger(app.Paths.StateDir)
	app.Orchestrator = lifecycle.New(lifecycle.Options{
		Registry: app.Registry,
		Resolver: app.Resolver,
		Runner:   app.Runner,
		Paths:    app.Paths,
		Executor: app.Exec,
		Audit:    app.Audit,
	})

	return app, nil
}
