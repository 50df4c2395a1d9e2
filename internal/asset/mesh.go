// Package asset defines the imported mesh data consumed by the scene.
//
// A Mesh is produced by an importer (see package asset/gltf) and is treated
// as opaque input by the renderer: one interleaved vertex buffer, a vertex
// descriptor, and an ordered list of indexed submeshes with materials.
package asset

import "fmt"

// Attribute names.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeTexCoord = "texcoord"
	AttributeTangent  = "tangent"
)

// Format is the component layout of a vertex attribute. All formats are
// 32-bit floats.
type Format int

const (
	FormatInvalid Format = iota
	FormatFloat2
	FormatFloat3
	FormatFloat4
)

// Components returns the float count of the format.
func (f Format) Components() int {
	switch f {
	case FormatFloat2:
		return 2
	case FormatFloat3:
		return 3
	case FormatFloat4:
		return 4
	}
	return 0
}

// Size returns the byte size of the format.
func (f Format) Size() int {
	return f.Components() * 4
}

// VertexAttribute describes one attribute in the interleaved buffer.
type VertexAttribute struct {
	Name   string
	Format Format
	Offset int // bytes
}

// VertexDescriptor describes the interleaved vertex layout.
type VertexDescriptor struct {
	Attributes []VertexAttribute
	Stride     int // bytes
}

// Attribute returns the attribute with the given name.
func (d VertexDescriptor) Attribute(name string) (VertexAttribute, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// FloatsPerVertex of the standard layout.
const FloatsPerVertex = 12

// StandardLayout returns position, normal, texcoord, tangent packed into a
// 48 byte stride.
func StandardLayout() VertexDescriptor {
	return VertexDescriptor{
		Attributes: []VertexAttribute{
			{Name: AttributePosition, Format: FormatFloat3, Offset: 0},
			{Name: AttributeNormal, Format: FormatFloat3, Offset: 3 * 4},
			{Name: AttributeTexCoord, Format: FormatFloat2, Offset: 6 * 4},
			{Name: AttributeTangent, Format: FormatFloat4, Offset: 8 * 4},
		},
		Stride: FloatsPerVertex * 4,
	}
}

// Topology is the primitive type of a submesh.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLines
	TopologyLineStrip
	TopologyLineLoop
	TopologyPoints
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyTriangleStrip:
		return "triangle-strip"
	case TopologyTriangleFan:
		return "triangle-fan"
	case TopologyLines:
		return "lines"
	case TopologyLineStrip:
		return "line-strip"
	case TopologyLineLoop:
		return "line-loop"
	case TopologyPoints:
		return "points"
	}
	return fmt.Sprintf("topology(%d)", int(t))
}

// Submesh is an indexed primitive range with one material.
type Submesh struct {
	Name     string
	Topology Topology
	Indices  []uint32
	Material *Material
}

// MaxIndex returns the largest index of the submesh, or 0 when empty.
func (s *Submesh) MaxIndex() uint32 {
	var max uint32
	for _, i := range s.Indices {
		if i > max {
			max = i
		}
	}
	return max
}

// Mesh is an imported mesh.
type Mesh struct {
	Name       string
	Descriptor VertexDescriptor
	Vertices   []float32 // interleaved per Descriptor
	Submeshes  []*Submesh
	// Dir is the directory relative texture references resolve against.
	Dir string
}

// VertexCount returns the number of vertices in the interleaved buffer.
func (m *Mesh) VertexCount() int {
	if m.Descriptor.Stride == 0 {
		return 0
	}
	return len(m.Vertices) * 4 / m.Descriptor.Stride
}
