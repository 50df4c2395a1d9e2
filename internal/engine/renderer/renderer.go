// Package renderer draws the scene: it owns the nodes, camera, lights and
// shading program, and issues one frame per Draw call.
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/engine/camera"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/engine/lighting"
	"github.com/Faultbox/pbr-viewer/internal/engine/material"
	"github.com/Faultbox/pbr-viewer/internal/engine/scene"
	"github.com/Faultbox/pbr-viewer/internal/engine/shader"
	"github.com/Faultbox/pbr-viewer/internal/logger"
	"github.com/Faultbox/pbr-viewer/pkg/math"
)

// ClearColor is the frame background.
var ClearColor = [4]float32{0.5, 0.5, 0.5, 1}

// Placement puts one mesh asset into the scene. A zero Scale is treated
// as 1.
type Placement struct {
	Asset        string
	Position     mgl32.Vec3
	Scale        float32
	RotationAxis mgl32.Vec3
	Angle        float32 // radians
}

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Shaders    shader.Sources
	Placements []Placement
}

// MeshSource provides imported meshes by asset identifier.
type MeshSource interface {
	Mesh(id string) (*asset.Mesh, error)
}

// TextureCache loads textures for node materials and owns them until
// Release.
type TextureCache interface {
	material.TextureLoader
	Release()
}

// Renderer draws the scene graph with one shading program.
type Renderer struct {
	dev      gpu.Device
	meshes   MeshSource
	textures TextureCache

	program *shader.Program
	nodes   scene.Graph
	camera  *camera.VirtualCamera
	lights  lighting.Set

	projection mgl32.Mat4
	view       mgl32.Mat4
	elapsed    float64

	closed bool
}

// New builds the program, loads every placement and sets up the viewport.
// IMPORTANT: the device's context must be current.
func New(dev gpu.Device, cfg Config, meshes MeshSource, textures TextureCache) (*Renderer, error) {
	r := &Renderer{
		dev:        dev,
		meshes:     meshes,
		textures:   textures,
		camera:     camera.New(float32(cfg.Width), float32(cfg.Height)),
		lights:     lighting.Default(),
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
	}

	program, err := shader.Build(dev, cfg.Shaders, shader.StandardAttributes)
	if err != nil {
		return nil, fmt.Errorf("building shading program: %w", err)
	}
	r.program = program

	for _, p := range cfg.Placements {
		if err := r.place(p); err != nil {
			r.Close()
			return nil, err
		}
	}

	dev.EnableDepthTest(gpu.DepthLess)
	r.Resize(cfg.Width, cfg.Height)

	logger.Info("renderer ready",
		zap.Int("nodes", r.nodes.Len()),
		zap.Int("draw_calls", r.nodes.SubmeshCount()))
	return r, nil
}

func (r *Renderer) place(p Placement) error {
	mesh, err := r.meshes.Mesh(p.Asset)
	if err != nil {
		return fmt.Errorf("loading %s: %w", p.Asset, err)
	}
	node, err := scene.New(r.dev, mesh, mesh.Descriptor, r.textures)
	if err != nil {
		return fmt.Errorf("placing %s: %w", p.Asset, err)
	}
	node.Position = p.Position
	node.Scale = p.Scale
	if node.Scale == 0 {
		node.Scale = 1
	}
	node.RotationAxis = p.RotationAxis
	node.Angle = p.Angle
	if _, err := r.nodes.Add(node, scene.NoParent); err != nil {
		node.Release(r.dev)
		return err
	}
	return nil
}

// Resize sets the viewport and rebuilds the projection. Empty sizes are
// ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.dev.Viewport(0, 0, int32(width), int32(height))
	r.projection = math.Perspective(math.DefaultFOVDegrees, float32(width), float32(height),
		math.DefaultNear, math.DefaultFar)
	r.camera.Resize(float32(width), float32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Draw renders one frame at the given frame rate. The frame delta is
// 1/fps; non-positive rates are ignored.
func (r *Renderer) Draw(fps float64) {
	if fps <= 0 || r.closed {
		return
	}
	dt := 1 / fps
	r.elapsed += dt
	r.camera.Update(float32(dt))

	dev := r.dev
	dev.ClearColor(ClearColor[0], ClearColor[1], ClearColor[2], ClearColor[3])
	dev.Clear()
	r.program.Use()

	cameraView := r.camera.ViewMatrix()
	r.view = cameraView.Mul4(r.camera.Orientation().Mat4())

	p := r.program
	dev.Uniform3f(p.Uniform("cameraPos"), math.TranslationOf(cameraView))
	r.lights.Upload(dev, p)
	dev.UniformMatrix4(p.Uniform("uViewMatrix"), r.view)
	dev.UniformMatrix4(p.Uniform("uProjectionMatrix"), r.projection)

	modelLoc := p.Uniform("uModelMatrix")
	normalLoc := p.Uniform("uNormalMatrix")
	r.nodes.Each(func(_ scene.NodeID, n *scene.Node) {
		model := n.WorldTransform()
		normal, _ := math.NormalMatrix(model)
		dev.UniformMatrix4(modelLoc, model)
		dev.UniformMatrix3(normalLoc, normal)
		n.Bind(dev)
		n.Draw(dev, r.elapsed, p)
	})
}

// Close releases nodes, textures and the program. Further calls are no-ops.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	logger.Info("closing renderer")
	r.nodes.Release(r.dev)
	if r.textures != nil {
		r.textures.Release()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Projection returns the current projection matrix.
func (r *Renderer) Projection() mgl32.Mat4 { return r.projection }

// View returns the view matrix of the last frame.
func (r *Renderer) View() mgl32.Mat4 { return r.view }

// Elapsed returns the summed frame deltas in seconds.
func (r *Renderer) Elapsed() float64 { return r.elapsed }

// Camera returns the scene camera.
func (r *Renderer) Camera() *camera.VirtualCamera { return r.camera }

// Nodes returns the scene graph.
func (r *Renderer) Nodes() *scene.Graph { return &r.nodes }

// Lights returns the light rig.
func (r *Renderer) Lights() *lighting.Set { return &r.lights }
