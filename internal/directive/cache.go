package directive

import (
	"io/fs"
	"sync"
	"time"
)

// layerCache holds parsed layer files keyed by path, validated against file
// modification time and size. This is the only state warren keeps about
// directive files between resolves.
type layerCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	modTime    time.Time
	size       int64
	directives []Directive
}

func newLayerCache() *layerCache {
	return &layerCache{entries: make(map[string]cacheEntry)}
}

// get returns the cached parse for path when the file is unchanged.
func (c *layerCache) get(path string, info fs.FileInfo) ([]Directive, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size() {
		return nil, false
	}

	out := make([]Directive, len(entry.directives))
	copy(out, entry.directives)
	return out, true
}

// put stores the parse result for path.
func (c *layerCache) put(path string, info fs.FileInfo, directives []Directive) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]Directive, len(directives))
	copy(stored, directives)
	c.entries[path] = cacheEntry{
		modTime:    info.ModTime(),
		size:       info.Size(),
		directives: stored,
	}
}
