// Package catalog loads the tire catalog resource from disk.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/treadline/tiredex/internal/domain"
	domcat "github.com/treadline/tiredex/internal/domain/catalog"
)

// Repo loads catalog snapshots from a JSON file. By default every call
// re-reads the file; WithCache switches to a process-wide snapshot kept
// after the first successful load (restart to pick up catalog changes).
type Repo struct {
	path string

	cacheEnabled bool
	mu           sync.RWMutex
	cached       *domcat.Snapshot
}

// New creates a catalog repository for the given file path.
func New(path string) *Repo {
	return &Repo{path: path}
}

// WithCache enables process-wide snapshot caching.
func (r *Repo) WithCache() *Repo {
	r.cacheEnabled = true
	return r
}

// Snapshot returns an immutable catalog snapshot.
// Missing file maps to domain.ErrCatalogNotFound; a resource without the
// required top-level fields, or with an invalid taxonomy, maps to
// domain.ErrInvalidSchema.
func (r *Repo) Snapshot(ctx context.Context) (domcat.Snapshot, error) {
	if r.cacheEnabled {
		r.mu.RLock()
		cached := r.cached
		r.mu.RUnlock()
		if cached != nil {
			return *cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return domcat.Snapshot{}, fmt.Errorf("load catalog: %w", err)
	}

	snap, err := r.load()
	if err != nil {
		return domcat.Snapshot{}, err
	}

	if r.cacheEnabled {
		r.mu.Lock()
		r.cached = &snap
		r.mu.Unlock()
	}
	return snap, nil
}

func (r *Repo) load() (domcat.Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(r.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domcat.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, r.path)
		}
		return domcat.Snapshot{}, fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domcat.Snapshot{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidSchema, r.path, err)
	}

	return file.toSnapshot()
}
