// Package shader builds the shading program and caches its uniform
// locations.
package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

var (
	// ErrCompile is returned when a shader stage fails to compile.
	ErrCompile = errors.New("shader compilation failed")
	// ErrLink is returned when the program fails to link.
	ErrLink = errors.New("program link failed")
)

// Attribute binds a vertex attribute name to a location before linking.
type Attribute struct {
	Location uint32
	Name     string
}

// StandardAttributes are the vertex inputs of the built-in shaders.
var StandardAttributes = []Attribute{
	{0, "aPosition"},
	{1, "aNormal"},
	{2, "aTexCoord"},
	{3, "aTangent"},
}

// Program is a linked shading program.
type Program struct {
	dev      gpu.Device
	id       uint32
	uniforms map[string]int32
}

// Build prepends the version directive reported by dev to both sources,
// compiles them, binds attribs and links. Compile and link diagnostics are
// logged and returned as errors wrapping ErrCompile or ErrLink.
func Build(dev gpu.Device, src Sources, attribs []Attribute) (*Program, error) {
	directive, err := VersionDirective(dev.ShadingLanguageVersion())
	if err != nil {
		return nil, fmt.Errorf("shading language version: %w", err)
	}

	vert, err := compile(dev, gpu.VertexStage, directive+"\n"+src.Vertex)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(vert)

	frag, err := compile(dev, gpu.FragmentStage, directive+"\n"+src.Fragment)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(frag)

	id := dev.CreateProgram()
	dev.AttachShader(id, vert)
	dev.AttachShader(id, frag)
	for _, a := range attribs {
		dev.BindAttribLocation(id, a.Location, a.Name)
	}
	if ok, log := dev.LinkProgram(id); !ok {
		logger.Error("program link failed", zap.String("log", log))
		dev.DeleteProgram(id)
		return nil, fmt.Errorf("%w: %s", ErrLink, log)
	}

	logger.Debug("program linked",
		zap.Uint32("program", id),
		zap.String("version", directive))
	return &Program{dev: dev, id: id, uniforms: make(map[string]int32)}, nil
}

func compile(dev gpu.Device, stage gpu.ShaderStage, source string) (uint32, error) {
	sh := dev.CreateShader(stage)
	if ok, log := dev.CompileShader(sh, source); !ok {
		logger.Error("shader compilation failed",
			zap.Stringer("stage", stage),
			zap.String("log", log))
		dev.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %w: %s", stage, ErrCompile, log)
	}
	return sh, nil
}

// ID returns the program handle.
func (p *Program) ID() uint32 { return p.id }

// Use makes p the current program.
func (p *Program) Use() { p.dev.UseProgram(p.id) }

// Uniform returns the location of a uniform, or -1 when the program has no
// active uniform of that name. Lookups are cached.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.uniforms[name] = loc
	return loc
}

// Delete releases the program. Further calls are no-ops.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
}
