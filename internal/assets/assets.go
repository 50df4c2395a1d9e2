// Package assets resolves mesh asset identifiers to files and caches the
// imported meshes.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/asset/gltf"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// Extensions are tried in order for each root.
var Extensions = []string{".gltf", ".glb"}

var (
	// ErrNotFound is returned when no root holds the asset.
	ErrNotFound = errors.New("asset not found")
	// ErrInvalidID is returned for empty, absolute or escaping identifiers.
	ErrInvalidID = errors.New("invalid asset id")
)

// ImportFunc imports the mesh file at path.
type ImportFunc func(path string) (*asset.Mesh, error)

// Manager loads meshes by identifier from asset roots. An identifier such
// as "gold/sphere" names <root>/gold/sphere.gltf or .glb.
type Manager struct {
	roots []string
	cache *Cache
	load  ImportFunc
	mu    sync.RWMutex
}

// NewManager creates a manager importing with the glTF importer.
func NewManager(roots ...string) *Manager {
	return NewManagerWith(gltf.Import, roots...)
}

// NewManagerWith creates a manager using load to import files.
func NewManagerWith(load ImportFunc, roots ...string) *Manager {
	m := &Manager{
		cache: NewCache(),
		load:  load,
	}
	for _, r := range roots {
		m.AddRoot(r)
	}
	return m
}

// AddRoot adds an asset directory.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
}

// Mesh returns the mesh for id, importing it on first use.
func (m *Manager) Mesh(id string) (*asset.Mesh, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if mesh, ok := m.cache.Get(id); ok {
		return mesh, nil
	}

	p, err := m.Resolve(id)
	if err != nil {
		return nil, err
	}
	mesh, err := m.load(p)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", id, err)
	}
	m.cache.Set(id, mesh)
	logger.Info("asset loaded", zap.String("id", id), zap.String("path", p))
	return mesh, nil
}

// Resolve returns the file backing id.
func (m *Manager) Resolve(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rel := filepath.FromSlash(id)
	for i := len(m.roots) - 1; i >= 0; i-- {
		for _, ext := range Extensions {
			p := filepath.Join(m.roots[i], rel+ext)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

func validateID(id string) error {
	if id == "" || path.IsAbs(id) || filepath.IsAbs(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	clean := path.Clean(id)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Close drops the roots and cached meshes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.cache.Clear()
}

// Cache is an in-memory cache of imported meshes.
type Cache struct {
	data map[string]*asset.Mesh
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*asset.Mesh),
	}
}

// Get retrieves a mesh from cache.
func (c *Cache) Get(id string) (*asset.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mesh, ok := c.data[id]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mesh, ok
}

// Set stores a mesh in cache.
func (c *Cache) Set(id string, mesh *asset.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = mesh
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*asset.Mesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
