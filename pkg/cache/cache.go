// Package cache remembers which files are already formatted so that repeated
// runs can skip them.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vito/shape/pkg/format"
)

// schemaVersion is stored in the cache file. Files with another version are
// discarded.
const schemaVersion uint16 = 1

// Cache maps file paths to the digest of their content and options the last
// time they were found formatted. A nil *Cache caches nothing.
// Thread-safe for concurrent access.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]uint64
	dirty   bool
}

type payload struct {
	Schema  uint16
	Entries map[string]uint64
}

// Open loads the cache stored at path. A missing file gives an empty cache; a
// corrupt or outdated one is discarded with a warning.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, entries: map[string]uint64{}}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		slog.Warn("discarding unreadable format cache", "path", path, "error", err)
		return c, nil
	}
	if p.Schema != schemaVersion {
		slog.Debug("discarding format cache with old schema", "path", path, "schema", p.Schema)
		return c, nil
	}
	if p.Entries != nil {
		c.entries = p.Entries
	}
	return c, nil
}

// Digest identifies content formatted with opts.
func Digest(content []byte, opts format.Options) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%d/%d/%s/%t\x00", opts.LineWidth, opts.IndentWidth, opts.IndentStyle, opts.TrailingCommas)
	h.Write(content)
	return h.Sum64()
}

// Formatted reports whether path was recorded as formatted with exactly this
// content and options.
func (c *Cache) Formatted(path string, content []byte, opts format.Options) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	digest, ok := c.entries[path]
	return ok && digest == Digest(content, opts)
}

// Record notes that content is the formatted form of path under opts.
func (c *Cache) Record(path string, content []byte, opts format.Options) {
	if c == nil {
		return
	}
	digest := Digest(content, opts)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[path] != digest {
		c.entries[path] = digest
		c.dirty = true
	}
}

// Forget drops the entry for path.
func (c *Cache) Forget(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		delete(c.entries, path)
		c.dirty = true
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache back if it changed since it was opened.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".shape-cache-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	err = msgpack.NewEncoder(f).Encode(&payload{Schema: schemaVersion, Entries: c.entries})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing cache %s: %w", c.path, err)
	}
	// Atomic replace
	if err := os.Rename(f.Name(), c.path); err != nil {
		return err
	}
	c.dirty = false
	slog.Debug("saved format cache", "path", c.path, "entries", len(c.entries))
	return nil
}
