package directive

import (
	"fmt"
)

// Trigger is the lifecycle event a directive is bound to.
type Trigger string

const (
	// TriggerOnCreate runs after a workspace checkout is created.
	TriggerOnCreate Trigger = "on-create"

	// TriggerOnSwitch runs after switching to a workspace.
	TriggerOnSwitch Trigger = "on-switch"

	// TriggerOnRemove runs before a workspace checkout is removed.
	TriggerOnRemove Trigger = "on-remove"
)

// ParseTrigger parses a trigger string from a directive file.
func ParseTrigger(s string) (Trigger, error) {
	switch Trigger(s) {
	case TriggerOnCreate, TriggerOnSwitch, TriggerOnRemove:
		return Trigger(s), nil
	default:
		return "", fmt.Errorf("invalid trigger %q (must be on-create, on-switch, or on-remove)", s)
	}
}

// Layer names a configuration source in the override/merge order.
type Layer string

const (
	LayerGlobal     Layer = "global"
	LayerRepository Layer = "repository"
	LayerWorkspace  Layer = "workspace"
)

// Directive is one declared shell action bound to a lifecycle trigger.
type Directive struct {
	// ID is the declaration key; a more specific layer redeclaring the same
	// ID overrides the broader declaration.
	ID string

	Trigger         Trigger
	Command         string
	WorkingDir      string // relative to workspace root; empty means the root
	ContinueOnError bool

	// SourceLayer records which layer contributed the winning declaration,
	// for precedence diagnostics.
	SourceLayer Layer
}

// Set is an ordered sequence of directives resolved for one workspace and
// trigger. Order is merge order: broad-to-specific layers, declaration
// order within a file, overrides keeping the position of the first
// declaration.
type Set struct {
	Trigger    Trigger
	Directives []Directive

	// Warnings collects non-fatal resolve diagnostics (a malformed global
	// layer is warned about, not fatal).
	Warnings []string
}

// Empty reports whether the set has no directives.
func (s *Set) Empty() bool {
	return len(s.Directives) == 0
}
