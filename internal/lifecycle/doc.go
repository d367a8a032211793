// Package lifecycle orchestrates workspace transitions: create, switch,
// and remove. Each transition sequences the backend operation, the
// registry update, and the trigger's directives, and rolls back partial
// work when a step fails. Operations on the same workspace name serialize
// through an in-process mutex and an on-disk lock file.
package lifecycle
