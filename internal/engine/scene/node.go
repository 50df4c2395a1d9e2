// Package scene holds placed meshes and their GPU resources.
package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/engine/material"
	"github.com/Faultbox/pbr-viewer/internal/logger"
	"github.com/Faultbox/pbr-viewer/pkg/math"
)

// Construction errors. They describe assets the fixed vertex binding cannot
// draw and are not recoverable.
var (
	ErrMissingAttribute = errors.New("missing vertex attribute")
	ErrLayout           = errors.New("unsupported vertex layout")
	ErrTopology         = errors.New("submesh is not a triangle list")
)

// Vertex attribute locations shared with the shader program.
const (
	LocationPosition uint32 = iota
	LocationNormal
	LocationTexCoord
	LocationTangent
)

var requiredAttributes = [...]struct {
	name     string
	location uint32
}{
	{asset.AttributePosition, LocationPosition},
	{asset.AttributeNormal, LocationNormal},
	{asset.AttributeTexCoord, LocationTexCoord},
	{asset.AttributeTangent, LocationTangent},
}

// submesh is the draw descriptor of one index range.
type submesh struct {
	name      string
	ebo       uint32
	count     int32
	indexType gpu.IndexType
}

// Node is one placed mesh instance. Its world transform is
// translate(Position) * scale(Scale) * rotate(Angle, RotationAxis).
type Node struct {
	Name string

	Position     mgl32.Vec3
	Scale        float32
	RotationAxis mgl32.Vec3
	Angle        float32 // radians

	vao uint32
	vbo uint32

	// Parallel per-submesh arrays.
	submeshes   []submesh
	textures    []material.TextureSet
	constants   []material.Constants
	useTextures []material.UseTextures

	released bool
}

// New validates mesh against desc and uploads it. Textures referenced by
// submesh materials are resolved through textures, which may be nil.
// Nothing is allocated on the device when validation fails.
func New(dev gpu.Device, mesh *asset.Mesh, desc asset.VertexDescriptor, textures material.TextureLoader) (*Node, error) {
	if err := validate(mesh, desc); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
	}

	n := &Node{
		Name:         mesh.Name,
		Scale:        1,
		RotationAxis: mgl32.Vec3{0, 1, 0},
	}

	n.vao = dev.GenVertexArray()
	dev.BindVertexArray(n.vao)
	n.vbo = dev.GenBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, n.vbo)
	dev.BufferData(gpu.ArrayBuffer, floatBytes(mesh.Vertices))
	for _, req := range requiredAttributes {
		attr, _ := desc.Attribute(req.name)
		dev.EnableVertexAttribArray(req.location)
		dev.VertexAttribPointer(req.location, int32(attr.Format.Components()), int32(desc.Stride), attr.Offset)
	}

	for _, sm := range mesh.Submeshes {
		typ := gpu.IndexTypeFor(sm.MaxIndex())
		ebo := dev.GenBuffer()
		dev.BindBuffer(gpu.ElementArrayBuffer, ebo)
		dev.BufferData(gpu.ElementArrayBuffer, packIndices(sm.Indices, typ))
		n.submeshes = append(n.submeshes, submesh{
			name:      sm.Name,
			ebo:       ebo,
			count:     int32(len(sm.Indices)),
			indexType: typ,
		})

		set := material.NewTextureSet(sm.Material, mesh.Dir, textures)
		n.textures = append(n.textures, set)
		n.useTextures = append(n.useTextures, set.Flags())
		n.constants = append(n.constants, material.NewConstants(sm.Material))
	}
	dev.BindVertexArray(0)

	logger.Debug("node created",
		zap.String("mesh", mesh.Name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("submeshes", len(n.submeshes)))
	return n, nil
}

func validate(mesh *asset.Mesh, desc asset.VertexDescriptor) error {
	standard := asset.StandardLayout()
	if desc.Stride != standard.Stride {
		return fmt.Errorf("%w: stride %d, want %d", ErrLayout, desc.Stride, standard.Stride)
	}
	for _, want := range standard.Attributes {
		got, ok := desc.Attribute(want.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAttribute, want.Name)
		}
		if got.Format != want.Format || got.Offset != want.Offset {
			return fmt.Errorf("%w: %s has %d floats at offset %d, want %d at %d",
				ErrLayout, want.Name, got.Format.Components(), got.Offset,
				want.Format.Components(), want.Offset)
		}
	}
	if len(mesh.Vertices)%asset.FloatsPerVertex != 0 {
		return fmt.Errorf("%w: %d floats is not a whole number of vertices", ErrLayout, len(mesh.Vertices))
	}

	vertexCount := len(mesh.Vertices) / asset.FloatsPerVertex
	for i, sm := range mesh.Submeshes {
		if sm.Topology != asset.TopologyTriangles {
			return fmt.Errorf("submesh %d (%s): %w: %s", i, sm.Name, ErrTopology, sm.Topology)
		}
		if len(sm.Indices) > 0 && int(sm.MaxIndex()) >= vertexCount {
			return fmt.Errorf("submesh %d (%s): %w: index %d out of range for %d vertices",
				i, sm.Name, ErrLayout, sm.MaxIndex(), vertexCount)
		}
	}
	return nil
}

// floatBytes reinterprets v as its in-memory bytes.
func floatBytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// packIndices narrows indices to typ in native byte order.
func packIndices(indices []uint32, typ gpu.IndexType) []byte {
	out := make([]byte, len(indices)*typ.Size())
	switch typ {
	case gpu.IndexUint8:
		for i, v := range indices {
			out[i] = uint8(v)
		}
	case gpu.IndexUint16:
		for i, v := range indices {
			binary.NativeEndian.PutUint16(out[i*2:], uint16(v))
		}
	default:
		for i, v := range indices {
			binary.NativeEndian.PutUint32(out[i*4:], v)
		}
	}
	return out
}

// WorldTransform composes the node transform. It is recomputed on every
// call.
func (n *Node) WorldTransform() mgl32.Mat4 {
	return math.Compose(n.Position, n.Scale, n.RotationAxis, n.Angle)
}

// Bind binds the node's vertex array and vertex buffer. Call it before Draw.
func (n *Node) Bind(dev gpu.Device) {
	dev.BindVertexArray(n.vao)
	dev.BindBuffer(gpu.ArrayBuffer, n.vbo)
}

// Draw issues one indexed draw per submesh. The program must be in use and
// the node bound. For each submesh it pushes the texture flags, binds the
// present textures to their slot units, pushes the material constants and
// draws. Binding state is left as the last submesh set it.
//
// elapsed is the scene time in seconds; static meshes ignore it.
func (n *Node) Draw(dev gpu.Device, elapsed float64, u material.Uniforms) {
	for i, sm := range n.submeshes {
		n.useTextures[i].Upload(dev, u)
		n.textures[i].Bind(dev, u)
		n.constants[i].Upload(dev, u)

		dev.BindBuffer(gpu.ElementArrayBuffer, sm.ebo)
		dev.DrawElements(sm.count, sm.indexType)
	}
}

// Release deletes the node's buffers and vertex array. Textures belong to
// the loader that created them. Further calls are no-ops.
func (n *Node) Release(dev gpu.Device) {
	if n.released {
		return
	}
	n.released = true
	for _, sm := range n.submeshes {
		dev.DeleteBuffer(sm.ebo)
	}
	dev.DeleteBuffer(n.vbo)
	dev.DeleteVertexArray(n.vao)
}

// SubmeshCount returns the number of submeshes.
func (n *Node) SubmeshCount() int { return len(n.submeshes) }

// IndexType returns the index width chosen for submesh i.
func (n *Node) IndexType(i int) gpu.IndexType { return n.submeshes[i].indexType }

// IndexCount returns the number of indices of submesh i.
func (n *Node) IndexCount(i int) int32 { return n.submeshes[i].count }

// Textures returns the texture set of submesh i.
func (n *Node) Textures(i int) material.TextureSet { return n.textures[i] }

// Constants returns the material constants of submesh i.
func (n *Node) Constants(i int) material.Constants { return n.constants[i] }

// UseTextures returns the texture presence flags of submesh i.
func (n *Node) UseTextures(i int) material.UseTextures { return n.useTextures[i] }
