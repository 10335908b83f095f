package adapter

import (
	"context"
	"fmt"
	"os"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	m "deobf.dev/pkg/deobf/internal/model"
)

// DefaultContentCacheSize is the number of files kept by a caching adapter.
const DefaultContentCacheSize = 4096

// CachingSourceFSAdapter keeps recently read file contents in an LRU so the
// rewrite pass does not read every listing a second time after the scan.
// Writes go to the wrapped adapter first and refresh the cached copy.
type CachingSourceFSAdapter struct {
	SourceFSAdapter

	cache *lru.Cache[m.Path, []byte]
}

// NewCachingSourceFSAdapter wraps next with a content cache of size entries.
func NewCachingSourceFSAdapter(next SourceFSAdapter, size int) (*CachingSourceFSAdapter, error) {
	if size <= 0 {
		size = DefaultContentCacheSize
	}

	cache, err := lru.New[m.Path, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}

	return &CachingSourceFSAdapter{SourceFSAdapter: next, cache: cache}, nil
}

// ReadFile returns a copy of the cached contents, loading them on a miss.
func (a *CachingSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if content, ok := a.cache.Get(path); ok {
		return slices.Clone(content), nil
	}

	content, err := a.SourceFSAdapter.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	a.cache.Add(path, slices.Clone(content))

	return content, nil
}

// WriteFile writes through and caches the new contents. A failed write drops
// the entry so the next read goes to disk.
func (a *CachingSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := a.SourceFSAdapter.WriteFile(ctx, path, content, perm); err != nil {
		a.cache.Remove(path)
		return err
	}

	a.cache.Add(path, slices.Clone(content))

	return nil
}

// Len returns the number of cached files.
func (a *CachingSourceFSAdapter) Len() int {
	return a.cache.Len()
}

// Purge drops every cached file.
func (a *CachingSourceFSAdapter) Purge() {
	a.cache.Purge()
}
