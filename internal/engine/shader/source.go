package shader

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names of the shader pair.
const (
	VertexFile   = "pbr.vert"
	FragmentFile = "pbr.frag"
)

//go:embed pbr.vert
var builtinVertex string

//go:embed pbr.frag
var builtinFragment string

// Sources is a vertex and fragment shader pair without a version directive.
type Sources struct {
	Vertex   string
	Fragment string
}

// Builtin returns the embedded PBR shader pair.
func Builtin() Sources {
	return Sources{Vertex: builtinVertex, Fragment: builtinFragment}
}

// LoadSources reads pbr.vert and pbr.frag from dir. An empty dir selects
// the embedded pair. Both files must exist.
func LoadSources(dir string) (Sources, error) {
	if dir == "" {
		return Builtin(), nil
	}
	vert, err := os.ReadFile(filepath.Join(dir, VertexFile))
	if err != nil {
		return Sources{}, fmt.Errorf("reading vertex shader: %w", err)
	}
	frag, err := os.ReadFile(filepath.Join(dir, FragmentFile))
	if err != nil {
		return Sources{}, fmt.Errorf("reading fragment shader: %w", err)
	}
	return Sources{Vertex: string(vert), Fragment: string(frag)}, nil
}

// VersionDirective converts the runtime's shading language version string
// into a #version line: "4.10 NVIDIA" becomes "#version 410". Leading text
// before the first digit is skipped.
func VersionDirective(version string) (string, error) {
	start := strings.IndexAny(version, "0123456789")
	if start < 0 {
		return "", fmt.Errorf("no version number in %q", version)
	}
	end := start
	for end < len(version) && (version[end] == '.' || version[end] >= '0' && version[end] <= '9') {
		end++
	}
	v, err := strconv.ParseFloat(version[start:end], 64)
	if err != nil {
		return "", fmt.Errorf("parsing version %q: %w", version, err)
	}
	return fmt.Sprintf("#version %d", int(v*100+0.5)), nil
}
