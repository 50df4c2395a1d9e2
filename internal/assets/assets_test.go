package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/pbr-viewer/internal/asset"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

type importer struct {
	calls []string
	err   error
}

func (i *importer) load(path string) (*asset.Mesh, error) {
	i.calls = append(i.calls, path)
	if i.err != nil {
		return nil, i.err
	}
	return &asset.Mesh{Name: filepath.Base(path)}, nil
}

func TestResolve(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	touch(t, filepath.Join(low, "gold", "sphere.gltf"))
	touch(t, filepath.Join(low, "wall", "sphere.glb"))
	touch(t, filepath.Join(high, "gold", "sphere.glb"))
	touch(t, filepath.Join(low, "grass", "sphere.gltf", "dir.txt"))

	m := NewManagerWith((&importer{}).load, low, high)

	tests := []struct {
		id   string
		want string
	}{
		{"gold/sphere", filepath.Join(high, "gold", "sphere.glb")},
		{"wall/sphere", filepath.Join(low, "wall", "sphere.glb")},
	}
	for _, tt := range tests {
		got, err := m.Resolve(tt.id)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	if _, err := m.Resolve("grass/sphere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("directory named like an asset: got %v, want ErrNotFound", err)
	}
	if _, err := m.Resolve("plastic/sphere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing asset: got %v, want ErrNotFound", err)
	}
}

func TestResolveInvalidID(t *testing.T) {
	m := NewManagerWith((&importer{}).load, t.TempDir())
	for _, id := range []string{"", "/etc/passwd", "../secret", "gold/../../x"} {
		if _, err := m.Resolve(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Resolve(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestMeshCaches(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "gold", "sphere.gltf"))
	imp := &importer{}
	m := NewManagerWith(imp.load, root)

	first, err := m.Mesh("gold/sphere")
	if err != nil {
		t.Fatalf("Mesh() error: %v", err)
	}
	second, err := m.Mesh("gold/sphere")
	if err != nil {
		t.Fatalf("Mesh() error: %v", err)
	}
	if first != second {
		t.Error("second lookup returned a different mesh")
	}
	if len(imp.calls) != 1 {
		t.Errorf("imported %d times, want 1", len(imp.calls))
	}
	if hits, misses := m.cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1, 1", hits, misses)
	}
}

func TestMeshImportError(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "gold", "sphere.gltf"))
	imp := &importer{err: errors.New("bad header")}
	m := NewManagerWith(imp.load, root)

	for i := 0; i < 2; i++ {
		if _, err := m.Mesh("gold/sphere"); err == nil {
			t.Fatal("expected error")
		}
	}
	if len(imp.calls) != 2 {
		t.Errorf("failures must not be cached: %d imports, want 2", len(imp.calls))
	}
}

func TestMeshNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Mesh("gold/sphere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Mesh() = %v, want ErrNotFound", err)
	}
}

func TestClose(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "gold", "sphere.gltf"))
	m := NewManagerWith((&importer{}).load, root)
	if _, err := m.Mesh("gold/sphere"); err != nil {
		t.Fatal(err)
	}

	m.Close()

	if _, err := m.Mesh("gold/sphere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Close: %v, want ErrNotFound", err)
	}
}
