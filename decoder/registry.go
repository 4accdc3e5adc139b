// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Registry maps file extensions to backends.
type Registry struct {
	backends map[string]Backend
	fallback Backend

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		mtx:      &sync.Mutex{},
	}
}

// Register claims every extension of b. Later registrations win.
func (r *Registry) Register(b Backend) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range b.Extensions() {
		r.backends[strings.ToLower(ext)] = b
	}

	if r.fallback == nil {
		r.fallback = b
	}
}

// SetDefault sets the backend used for names without a registered extension.
func (r *Registry) SetDefault(b Backend) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.fallback = b
}

// Get returns the backend registered for ext ("xm", ".xm" or "song.xm").
func (r *Registry) Get(ext string) (Backend, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, ok := r.backends[Extension(ext)]
	return b, ok
}

// Lookup picks the backend for name, falling back to the default one.
func (r *Registry) Lookup(name string) (Backend, error) {
	if b, ok := r.Get(name); ok {
		return b, nil
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.fallback == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownFormat)
	}
	return r.fallback, nil
}

// Open loads data with the backend chosen for name.
func (r *Registry) Open(name string, data []byte) (Handle, error) {
	b, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	h, err := b.Open(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return h, nil
}

// Extension normalises a file name or extension to its lower-case
// extension without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = name
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
