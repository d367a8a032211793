// Package app wires warren's collaborators together: paths, settings,
// registry, directive resolver, executor, and orchestrator. Commands
// construct an App once and reach everything through it; tests inject
// fakes through the options.
package app
