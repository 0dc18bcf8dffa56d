package artifact

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a trivial in‑process Store implementation useful for
// tests, examples and single‑process prototypes. Data is copied on save /
// retrieval to avoid accidental external mutation of internal buffers.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte // path -> data
}

// NewInMemoryStore returns an empty in‑memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for path.
// The input slice is copied before storage.
func (a *InMemoryStore) Save(_ context.Context, path string, data []byte) error {
	if path == "" {
		return ErrInvalidPath
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[path] = cp
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Exists reports whether path is stored.
func (a *InMemoryStore) Exists(_ context.Context, path string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.artifacts[path]
	return ok, nil
}

// List returns the stored paths with the given prefix. The slice is a
// snapshot and safe for caller mutation.
func (a *InMemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	paths := make([]string, 0, len(a.artifacts))
	for p := range a.artifacts {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(_ context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.artifacts[path]; !ok {
		return ErrNotFound
	}
	delete(a.artifacts, path)
	return nil
}
