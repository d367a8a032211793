package directive

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/singleflight"

	"github.com/warren-vcs/warren/internal/config"
	"github.com/warren-vcs/warren/internal/errors"
	"github.com/warren-vcs/warren/internal/logging"
	"github.com/warren-vcs/warren/internal/registry"
)

// declaration is the TOML shape of one directive entry.
type declaration struct {
	Trigger         string `toml:"trigger"`
	Command         string `toml:"command"`
	WorkingDir      string `toml:"working_dir"`
	ContinueOnError bool   `toml:"continue_on_error"`
}

// layerRef binds a layer name to its file path for one workspace.
type layerRef struct {
	layer Layer
	path  string
}

// Resolver loads and merges the three directive layers for a workspace.
// Parsed files are cached by modification time; repeated resolves of an
// unchanged layer do not re-read or re-parse it.
type Resolver struct {
	paths *config.Paths
	cache *layerCache
	group singleflight.Group
}

// NewResolver creates a Resolver over the configured paths.
func NewResolver(paths *config.Paths) *Resolver {
	return &Resolver{
		paths: paths,
		cache: newLayerCache(),
	}
}

// Resolve produces the DirectiveSet for a workspace and trigger.
//
// Layers are read in fixed order (global, repository, workspace; absence is
// not an error), parsed into declaration lists, and merged left-to-right: a
// redeclared identifier overrides the earlier declaration in place, a new
// identifier is appended. The merged list is then filtered to the trigger.
//
// A malformed global layer degrades to a warning on the returned set; a
// malformed repository or workspace layer fails the resolve with
// DirectiveParseError.
func (r *Resolver) Resolve(ws *registry.Workspace, trigger Trigger) (*Set, error) {
	set := &Set{Trigger: trigger}

	merged := make([]Directive, 0)
	index := make(map[string]int)

	for _, ref := range r.layersFor(ws) {
		directives, err := r.loadLayer(ref)
		if err != nil {
			if ref.layer == LayerGlobal {
				logging.Warn("skipping malformed global directives", "path", ref.path, "error", err)
				set.Warnings = append(set.Warnings, err.Error())
				continue
			}
			return nil, err
		}

		for _, d := range directives {
			if at, seen := index[d.ID]; seen {
				merged[at] = d
				continue
			}
			index[d.ID] = len(merged)
			merged = append(merged, d)
		}
	}

	for _, d := range merged {
		if d.Trigger == trigger {
			set.Directives = append(set.Directives, d)
		}
	}

	return set, nil
}

// layersFor returns the layer search order for a workspace, broad to
// specific.
func (r *Resolver) layersFor(ws *registry.Workspace) []layerRef {
	return []layerRef{
		{LayerGlobal, r.paths.GlobalDirectivesPath()},
		{LayerRepository, config.RepoDirectivesPath(ws.SourceRepo)},
		{LayerWorkspace, config.WorkspaceDirectivesPath(ws.RootPath)},
	}
}

// loadLayer reads and parses one layer file through the cache. A missing
// file yields no directives.
func (r *Resolver) loadLayer(ref layerRef) ([]Directive, error) {
	info, err := os.Stat(ref.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &errors.DirectiveParseError{Layer: string(ref.layer), Path: ref.path, Detail: err}
	}

	if cached, ok := r.cache.get(ref.path, info); ok {
		return cached, nil
	}

	// Collapse concurrent loads of the same file into one parse
	v, err, _ := r.group.Do(ref.path, func() (any, error) {
		directives, err := parseLayerFile(ref)
		if err != nil {
			return nil, err
		}
		r.cache.put(ref.path, info, directives)
		return directives, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Directive), nil
}

// parseLayerFile decodes one TOML layer strictly, preserving declaration
// order and rejecting unknown keys.
func parseLayerFile(ref layerRef) ([]Directive, error) {
	parseErr := func(detail error) error {
		return &errors.DirectiveParseError{Layer: string(ref.layer), Path: ref.path, Detail: detail}
	}

	data, err := os.ReadFile(ref.path)
	if err != nil {
		return nil, parseErr(err)
	}

	declarations := make(map[string]declaration)
	md, err := toml.Decode(string(data), &declarations)
	if err != nil {
		return nil, parseErr(err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, parseErr(fmt.Errorf("unknown key %q", undecoded[0].String()))
	}

	var directives []Directive
	for _, key := range md.Keys() {
		// md.Keys lists nested keys too; top-level keys are the declarations
		if len(key) != 1 {
			continue
		}
		id := key[0]
		decl := declarations[id]

		trigger, err := ParseTrigger(decl.Trigger)
		if err != nil {
			return nil, parseErr(fmt.Errorf("directive %q: %w", id, err))
		}
		if decl.Command == "" {
			return nil, parseErr(fmt.Errorf("directive %q: command is required", id))
		}

		directives = append(directives, Directive{
			ID:              id,
			Trigger:         trigger,
			Command:         decl.Command,
			WorkingDir:      decl.WorkingDir,
			ContinueOnError: decl.ContinueOnError,
			SourceLayer:     ref.layer,
		})
	}

	return directives, nil
}
