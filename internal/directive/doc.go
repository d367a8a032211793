// Package directive resolves layered directive configuration into ordered
// sets of shell actions bound to workspace lifecycle triggers.
//
// # Layers
//
// Directives come from three TOML layers, searched in fixed order:
//
//	global      $XDG_CONFIG_HOME/warren/directives.toml
//	repository  <repo>/.warren/directives.toml
//	workspace   <workspace>/.warren/local.toml
//
// Absence of a layer file is not an error. Each file maps a directive
// identifier to a declaration:
//
//	[setup]
//	trigger = "on-create"
//	command = "npm install"
//	working_dir = "web"
//	continue_on_error = false
//
// # Merge semantics
//
// Layers merge left-to-right (broad to specific). A declaration whose
// identifier was already seen replaces the earlier one in place; a new
// identifier is appended. Resolving the same layers twice yields identical
// sets in identical order.
//
// # Errors
//
// Files are decoded strictly: unknown keys, bad triggers, and missing
// commands fail with DirectiveParseError naming the layer. A malformed
// global layer is non-fatal (warn and continue); malformed repository or
// workspace layers abort the resolve.
package directive
