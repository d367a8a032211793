package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
)

// Ground is the slice of the backend adapter the registry needs for
// reconciliation: a ground-truth listing of checkouts the backend knows,
// tagged with the backend kind the listing speaks for.
type Ground interface {
	Kind() BackendKind
	List(ctx context.Context) ([]*Workspace, error)
}

// snapshot is the on-disk registry format.
type snapshot struct {
	Current    string                `json:"current,omitempty"`
	Workspaces map[string]*Workspace `json:"workspaces"`
}

// Registry is the authoritative record of known workspaces. All mutating
// operations persist the full snapshot atomically before returning success;
// the persist step is a single critical section.
type Registry struct {
	path string

	mu         sync.Mutex
	current    string
	workspaces map[string]*Workspace
}

// Load reads the registry snapshot from path. A missing file yields an
// empty registry.
func Load(path string) (*Registry, error) {
	r := &Registry{
		path:       path,
		workspaces: make(map[string]*Workspace),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}

	for name, ws := range snap.Workspaces {
		if ws == nil {
			continue
		}
		if err := ws.Validate(); err != nil {
			return nil, fmt.Errorf("invalid registry entry %s: %w", name, err)
		}
		r.workspaces[name] = ws
	}
	r.current = snap.Current

	return r, nil
}

// Register records a workspace. Fails with DuplicateName when the name is
// already registered and Active.
func (r *Registry) Register(ws *Workspace) error {
	if err := ws.Validate(); err != nil {
		return errors.ValidationError(fmt.Sprintf("invalid workspace: %v", err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.workspaces[ws.Name]; ok && existing.Status == StatusActive {
		return errors.DuplicateName(ws.Name)
	}

	r.workspaces[ws.Name] = ws
	return r.persistLocked()
}

// Unregister deletes a workspace record.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[name]; !ok {
		return errors.WorkspaceNotFound(name)
	}

	delete(r.workspaces, name)
	if r.current == name {
		r.current = ""
	}
	return r.persistLocked()
}

// Lookup returns the workspace registered under name.
func (r *Registry) Lookup(name string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[name]
	if !ok {
		return nil, false
	}
	copied := *ws
	return &copied, true
}

// List returns all registered workspaces sorted by name.
func (r *Registry) List() []*Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		copied := *ws
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetStatus updates a workspace's lifecycle status and persists.
func (r *Registry) SetStatus(name string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[name]
	if !ok {
		return errors.WorkspaceNotFound(name)
	}
	ws.Status = status
	return r.persistLocked()
}

// SetCurrent records the current workspace name. Empty clears it.
func (r *Registry) SetCurrent(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name != "" {
		if _, ok := r.workspaces[name]; !ok {
			return errors.WorkspaceNotFound(name)
		}
	}
	r.current = name
	return r.persistLocked()
}

// Current returns the current workspace name, or empty when unset.
func (r *Registry) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Reconcile re-queries the backends' ground-truth listings and heals drift:
// registry entries whose backing checkout is gone are dropped (logged),
// entries a listing no longer names are marked stale and restored to active
// when the listing names them again, and checkouts the backends know but the
// registry does not are adopted under their discovered names. This resolves
// a crash between a backend create and the registry persist.
func (r *Registry) Reconcile(ctx context.Context, grounds ...Ground) error {
	known := make(map[string]*Workspace)
	listedKinds := make(map[BackendKind]bool)
	for _, g := range grounds {
		listed, err := g.List(ctx)
		if err != nil {
			// A backend that cannot list (tool missing) contributes nothing;
			// its entries are judged by root path existence only.
			logging.Debug("reconcile: backend list failed", "kind", g.Kind(), "error", err)
			continue
		}
		listedKinds[g.Kind()] = true
		for _, ws := range listed {
			known[reconcileKey(ws.Name, ws.BackendKind)] = ws
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false

	for name, ws := range r.workspaces {
		if _, err := os.Stat(ws.RootPath); os.IsNotExist(err) {
			logging.Warn("reconcile: dropping workspace, checkout missing", "name", name, "path", ws.RootPath)
			delete(r.workspaces, name)
			if r.current == name {
				r.current = ""
			}
			changed = true
			continue
		}
		// Only a listing from the entry's own backend kind can change its
		// status; a kind whose listing failed left no verdict on anything.
		if !listedKinds[ws.BackendKind] {
			continue
		}
		if _, ok := known[reconcileKey(name, ws.BackendKind)]; ok {
			if ws.Status == StatusStale {
				logging.Info("reconcile: backend lists workspace again", "name", name)
				ws.Status = StatusActive
				changed = true
			}
		} else if ws.Status == StatusActive {
			logging.Warn("reconcile: backend no longer lists workspace", "name", name)
			ws.Status = StatusStale
			changed = true
		}
	}

	for key, ws := range known {
		if _, ok := r.workspaces[ws.Name]; ok {
			continue
		}
		logging.Info("reconcile: adopting orphaned workspace", "name", ws.Name, "key", key)
		adopted := *ws
		adopted.Status = StatusActive
		r.workspaces[ws.Name] = &adopted
		changed = true
	}

	if !changed {
		return nil
	}
	return r.persistLocked()
}

func reconcileKey(name string, kind BackendKind) string {
	return string(kind) + "/" + name
}

// persistLocked writes the full snapshot atomically (temp file + rename).
// A first failure is retried once before surfacing as a PersistFailure.
// Callers must hold r.mu.
func (r *Registry) persistLocked() error {
	snap := snapshot{
		Current:    r.current,
		Workspaces: r.workspaces,
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return errors.PersistFailure(err)
	}

	if err := atomicWrite(r.path, data); err != nil {
		logging.Debug("registry persist failed, retrying once", "error", err)
		if err := atomicWrite(r.path, data); err != nil {
			return errors.PersistFailure(err)
		}
	}
	return nil
}

// atomicWrite writes data to path via a temp file in the same directory and
// an atomic rename, so the snapshot is never partially written.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		// No-ops after a successful rename
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
