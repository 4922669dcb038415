// Package source provides read access to the files of an analyzed tree.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ContentSource provides file content by slash-separated path relative to
// the analyzed root.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files under a root directory.
type FilesystemSource struct {
	root string
}

// NewFilesystem creates a source that reads files under root.
func NewFilesystem(root string) *FilesystemSource {
	return &FilesystemSource{root: root}
}

// Root returns the directory paths are resolved against.
func (f *FilesystemSource) Root() string {
	return f.root
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.root, filepath.FromSlash(path)))
}

// CachedSource keeps the most recently read files in memory so that detectors
// re-reading the same file hit the disk once. It is safe for concurrent use.
type CachedSource struct {
	next  ContentSource
	cache *lru.Cache[string, []byte]
}

// NewCached wraps next with an LRU cache holding up to size files.
func NewCached(next ContentSource, size int) (*CachedSource, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create source cache: %w", err)
	}
	return &CachedSource{next: next, cache: cache}, nil
}

// Read implements ContentSource. Errors are not cached.
func (c *CachedSource) Read(path string) ([]byte, error) {
	if data, ok := c.cache.Get(path); ok {
		return data, nil
	}
	data, err := c.next.Read(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, data)
	return data, nil
}

// Len returns the number of cached files.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}

// MapSource serves content from memory. Useful for tests and for analyzing
// content that never touched the disk.
type MapSource map[string][]byte

// Read implements ContentSource.
func (m MapSource) Read(path string) ([]byte, error) {
	if data, ok := m[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
}

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*CachedSource)(nil)
	_ ContentSource = MapSource(nil)
)
