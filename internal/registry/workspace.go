package registry

import (
	"fmt"
	"path/filepath"
)

// BackendKind identifies which VCS backend owns a workspace checkout.
type BackendKind string

const (
	// KindLinkedTree is a git worktree sharing history with a primary repo.
	KindLinkedTree BackendKind = "git-worktree"

	// KindVCSWorkspace is a jj workspace.
	KindVCSWorkspace BackendKind = "jj"
)

// Status is the lifecycle state of a registered workspace.
type Status string

const (
	// StatusActive marks a live, usable checkout.
	StatusActive Status = "active"

	// StatusStale marks a registered workspace whose backing checkout is
	// missing or no longer listed by its backend.
	StatusStale Status = "stale"

	// StatusRemoving marks a workspace mid-removal; set before the backend
	// remove call so a crash leaves an explainable record.
	StatusRemoving Status = "removing"
)

// Workspace is a named, on-disk checkout tracked by the registry.
type Workspace struct {
	Name        string      `json:"name"`
	RootPath    string      `json:"rootPath"`
	BackendKind BackendKind `json:"backendKind"`
	SourceRef   string      `json:"sourceRef"`
	SourceRepo  string      `json:"sourceRepo"`
	Status      Status      `json:"status"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// Validate checks that the Workspace record is well-formed.
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	if w.RootPath == "" {
		return fmt.Errorf("rootPath is required")
	}
	if !filepath.IsAbs(w.RootPath) {
		return fmt.Errorf("rootPath must be absolute (got %q)", w.RootPath)
	}

	switch w.BackendKind {
	case KindLinkedTree, KindVCSWorkspace:
	default:
		return fmt.Errorf("invalid backendKind: %s", w.BackendKind)
	}

	switch w.Status {
	case StatusActive, StatusStale, StatusRemoving:
	default:
		return fmt.Errorf("invalid status: %s", w.Status)
	}

	return nil
}
