// Package executor runs resolved directive sets inside workspace checkouts.
//
// Execution is strictly sequential. Each directive runs through the
// configured shell with its working directory confined to the workspace
// root, its combined output captured, and its runtime bounded by the
// configured timeout. A failing directive aborts the remainder of the run
// unless it declared continue_on_error.
package executor
