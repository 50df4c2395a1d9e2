// Package gltf imports glTF 2.0 documents (.gltf and .glb) into asset
// meshes.
//
// The first mesh of the document is converted. Its primitives are merged
// into one interleaved vertex buffer in the standard layout, one submesh per
// primitive, with indices rebased onto the merged buffer. Missing normals and
// tangents are generated and missing texture coordinates are zero.
package gltf

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	qgltf "github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

var (
	// ErrNoMesh is returned for documents without meshes.
	ErrNoMesh = errors.New("document has no mesh")
	// ErrNoPosition is returned for primitives without a POSITION attribute.
	ErrNoPosition = errors.New("primitive has no POSITION attribute")
	// ErrIndexRange is returned when a primitive indexes past its vertices.
	ErrIndexRange = errors.New("index out of range")
)

// Import opens path and converts its first mesh. Relative texture
// references of the result resolve against the file's directory.
func Import(path string) (*asset.Mesh, error) {
	doc, err := qgltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	mesh, err := Convert(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	if mesh.Name == "" {
		mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	logger.Debug("mesh imported",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("submeshes", len(mesh.Submeshes)))
	return mesh, nil
}

// Convert converts the first mesh of doc. dir becomes the mesh's texture
// directory.
func Convert(doc *qgltf.Document, dir string) (*asset.Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrNoMesh
	}
	src := doc.Meshes[0]
	mesh := &asset.Mesh{
		Name:       src.Name,
		Descriptor: asset.StandardLayout(),
		Dir:        dir,
	}

	materials := make(map[uint32]*asset.Material)
	for i, prim := range src.Primitives {
		p, err := readPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}

		base := uint32(mesh.VertexCount())
		mesh.Vertices = p.appendTo(mesh.Vertices)
		for j := range p.indices {
			p.indices[j] += base
		}

		sub := &asset.Submesh{
			Name:     fmt.Sprintf("%s#%d", src.Name, i),
			Topology: topology(prim.Mode),
			Indices:  p.indices,
		}
		if prim.Material != nil {
			m, ok := materials[*prim.Material]
			if !ok {
				m = convertMaterial(doc, *prim.Material)
				materials[*prim.Material] = m
			}
			sub.Material = m
		}
		mesh.Submeshes = append(mesh.Submeshes, sub)
	}
	return mesh, nil
}

func topology(mode qgltf.PrimitiveMode) asset.Topology {
	switch mode {
	case qgltf.PrimitivePoints:
		return asset.TopologyPoints
	case qgltf.PrimitiveLines:
		return asset.TopologyLines
	case qgltf.PrimitiveLineLoop:
		return asset.TopologyLineLoop
	case qgltf.PrimitiveLineStrip:
		return asset.TopologyLineStrip
	case qgltf.PrimitiveTriangleStrip:
		return asset.TopologyTriangleStrip
	case qgltf.PrimitiveTriangleFan:
		return asset.TopologyTriangleFan
	}
	return asset.TopologyTriangles
}

// primitive holds the per-vertex streams of one primitive, all of the same
// length.
type primitive struct {
	positions [][3]float32
	normals   [][3]float32
	texCoords [][2]float32
	tangents  [][4]float32
	indices   []uint32
}

func readPrimitive(doc *qgltf.Document, prim *qgltf.Primitive) (*primitive, error) {
	posIdx, ok := prim.Attributes[qgltf.POSITION]
	if !ok {
		return nil, ErrNoPosition
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	p := &primitive{positions: positions}
	n := len(positions)

	if prim.Indices != nil {
		p.indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		for _, i := range p.indices {
			if int(i) >= n {
				return nil, fmt.Errorf("%w: %d >= %d vertices", ErrIndexRange, i, n)
			}
		}
	} else {
		p.indices = make([]uint32, n)
		for i := range p.indices {
			p.indices[i] = uint32(i)
		}
	}

	// Optional streams of the wrong length are dropped and regenerated.
	if idx, ok := prim.Attributes[qgltf.NORMAL]; ok {
		if v, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil); err == nil && len(v) == n {
			p.normals = v
		}
	}
	if idx, ok := prim.Attributes[qgltf.TEXCOORD_0]; ok {
		if v, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err == nil && len(v) == n {
			p.texCoords = v
		}
	}
	if idx, ok := prim.Attributes[qgltf.TANGENT]; ok {
		if v, err := modeler.ReadTangent(doc, doc.Accessors[idx], nil); err == nil && len(v) == n {
			p.tangents = v
		}
	}

	triangles := prim.Mode == qgltf.PrimitiveTriangles
	if p.normals == nil {
		if triangles {
			p.normals = generateNormals(p.positions, p.indices)
		} else {
			p.normals = make([][3]float32, n)
		}
	}
	if p.texCoords == nil {
		p.texCoords = make([][2]float32, n)
	}
	if p.tangents == nil {
		if triangles {
			p.tangents = generateTangents(p.positions, p.normals, p.texCoords, p.indices)
		} else {
			p.tangents = make([][4]float32, n)
		}
	}
	return p, nil
}

// appendTo appends the primitive in the standard interleaved layout.
func (p *primitive) appendTo(dst []float32) []float32 {
	for i, pos := range p.positions {
		nrm, uv, tan := p.normals[i], p.texCoords[i], p.tangents[i]
		dst = append(dst,
			pos[0], pos[1], pos[2],
			nrm[0], nrm[1], nrm[2],
			uv[0], uv[1],
			tan[0], tan[1], tan[2], tan[3],
		)
	}
	return dst
}
