package gltf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	qgltf "github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pbr-viewer/internal/asset"
)

// quadDoc builds a mesh with two primitives: an indexed, textured quad in
// the XY plane with material 0, and an unindexed triangle with normals and
// no texture coordinates or material.
func quadDoc() *qgltf.Document {
	doc := qgltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 3, 0})

	triPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}})
	triNrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})

	doc.Images = []*qgltf.Image{
		{Name: "mr", URI: "rusted%20iron_mr.png"},
		{Name: "normal", URI: "normal.png"},
		{Name: "embedded", URI: "data:image/png;base64,AAAA"},
	}
	doc.Textures = []*qgltf.Texture{
		{Source: qgltf.Index(0)},
		{Source: qgltf.Index(1)},
		{Source: qgltf.Index(2)},
	}
	doc.Materials = []*qgltf.Material{{
		Name: "rusted_iron",
		PBRMetallicRoughness: &qgltf.PBRMetallicRoughness{
			BaseColorFactor:          &[4]float32{0.5, 0.25, 1, 0.8},
			BaseColorTexture:         &qgltf.TextureInfo{Index: 2},
			MetallicFactor:           qgltf.Float(0.3),
			RoughnessFactor:          qgltf.Float(0.6),
			MetallicRoughnessTexture: &qgltf.TextureInfo{Index: 0},
		},
		NormalTexture:    &qgltf.NormalTexture{Index: qgltf.Index(1)},
		OcclusionTexture: &qgltf.OcclusionTexture{Index: qgltf.Index(0)},
		EmissiveFactor:   [3]float32{0.1, 0.2, 0.3},
		Extras: map[string]interface{}{
			"specular":  []interface{}{1.0, 0.5, 0.25},
			"shininess": 32.0,
		},
	}}

	doc.Meshes = []*qgltf.Mesh{{
		Name: "quad",
		Primitives: []*qgltf.Primitive{
			{
				Attributes: map[string]uint32{qgltf.POSITION: pos, qgltf.TEXCOORD_0: uv},
				Indices:    qgltf.Index(idx),
				Material:   qgltf.Index(0),
			},
			{
				Attributes: map[string]uint32{qgltf.POSITION: triPos, qgltf.NORMAL: triNrm},
			},
		},
	}}
	return doc
}

func vertex(m *asset.Mesh, i int) []float32 {
	return m.Vertices[i*asset.FloatsPerVertex : (i+1)*asset.FloatsPerVertex]
}

func TestConvertMergesPrimitives(t *testing.T) {
	m, err := Convert(quadDoc(), "assets/rusted_iron")
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Name)
	assert.Equal(t, "assets/rusted_iron", m.Dir)
	assert.Equal(t, asset.StandardLayout(), m.Descriptor)
	assert.Equal(t, 7, m.VertexCount())
	require.Len(t, m.Submeshes, 2)

	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, m.Submeshes[0].Indices)
	assert.Equal(t, []uint32{4, 5, 6}, m.Submeshes[1].Indices, "unindexed primitive is rebased onto the merged buffer")
	for _, s := range m.Submeshes {
		assert.Equal(t, asset.TopologyTriangles, s.Topology)
	}
	assert.NotNil(t, m.Submeshes[0].Material)
	assert.Nil(t, m.Submeshes[1].Material)
}

func TestConvertGeneratesNormalsAndTangents(t *testing.T) {
	m, err := Convert(quadDoc(), "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		v := vertex(m, i)
		assert.InDeltaSlice(t, []float32{0, 0, 1}, v[3:6], 1e-6, "normal %d", i)
		assert.InDeltaSlice(t, []float32{1, 0, 0, 1}, v[8:12], 1e-6, "tangent %d", i)
	}
	assert.Equal(t, []float32{1, 1}, vertex(m, 2)[6:8])

	// No texture coordinates: zero UVs and a tangent perpendicular to the
	// supplied normal.
	for i := 4; i < 7; i++ {
		v := vertex(m, i)
		assert.Equal(t, []float32{0, 0, 1}, v[3:6])
		assert.Equal(t, []float32{0, 0}, v[6:8])
		tangent := mgl32.Vec3{v[8], v[9], v[10]}
		assert.InDelta(t, 0, tangent.Dot(mgl32.Vec3{0, 0, 1}), 1e-6)
		assert.InDelta(t, 1, tangent.Len(), 1e-6)
		assert.Equal(t, float32(1), v[11])
	}
}

func TestConvertMaterial(t *testing.T) {
	m, err := Convert(quadDoc(), "")
	require.NoError(t, err)
	mat := m.Submeshes[0].Material

	assert.Equal(t, "rusted_iron", mat.Name)
	base, ok := mat.Float3(asset.SemanticBaseColor)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 1}, base)

	floats := map[asset.Semantic]float32{
		asset.SemanticOpacity:          0.8,
		asset.SemanticMetallic:         0.3,
		asset.SemanticRoughness:        0.6,
		asset.SemanticSpecularExponent: 32,
	}
	for sem, want := range floats {
		got, ok := mat.Float(sem)
		assert.True(t, ok, sem.String())
		assert.Equal(t, want, got, sem.String())
	}

	vecs := map[asset.Semantic]mgl32.Vec3{
		asset.SemanticEmission:         {0.1, 0.2, 0.3},
		asset.SemanticSpecular:         {1, 0.5, 0.25},
		asset.SemanticAmbientOcclusion: {1, 1, 1},
	}
	for sem, want := range vecs {
		got, ok := mat.Float3(sem)
		assert.True(t, ok, sem.String())
		assert.Equal(t, want, got, sem.String())
	}

	textures := map[asset.Semantic]string{
		asset.SemanticMetallic:           "rusted iron_mr.png#b",
		asset.SemanticRoughness:          "rusted iron_mr.png#g",
		asset.SemanticAmbientOcclusion:   "rusted iron_mr.png#r",
		asset.SemanticTangentSpaceNormal: "normal.png",
	}
	for sem, want := range textures {
		got, ok := mat.Texture(sem)
		assert.True(t, ok, sem.String())
		assert.Equal(t, want, got, sem.String())
	}

	_, ok = mat.Texture(asset.SemanticBaseColor)
	assert.False(t, ok, "data URI images have no path")
}

func TestConvertMaterialDefaults(t *testing.T) {
	doc := quadDoc()
	doc.Materials[0] = &qgltf.Material{Name: "plain"}

	m, err := Convert(doc, "")
	require.NoError(t, err)
	mat := m.Submeshes[0].Material

	base, _ := mat.Float3(asset.SemanticBaseColor)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, base)
	metallic, _ := mat.Float(asset.SemanticMetallic)
	assert.Equal(t, float32(1), metallic)
	roughness, _ := mat.Float(asset.SemanticRoughness)
	assert.Equal(t, float32(1), roughness)
	opacity, _ := mat.Float(asset.SemanticOpacity)
	assert.Equal(t, float32(1), opacity)

	_, ok := mat.Float3(asset.SemanticSpecular)
	assert.False(t, ok)
	_, ok = mat.Float(asset.SemanticSpecularExponent)
	assert.False(t, ok)
	for _, sem := range []asset.Semantic{asset.SemanticBaseColor, asset.SemanticMetallic, asset.SemanticTangentSpaceNormal} {
		_, ok := mat.Texture(sem)
		assert.False(t, ok, sem.String())
	}
}

func TestConvertSharesMaterials(t *testing.T) {
	doc := quadDoc()
	doc.Meshes[0].Primitives[1].Material = qgltf.Index(0)

	m, err := Convert(doc, "")
	require.NoError(t, err)
	assert.Same(t, m.Submeshes[0].Material, m.Submeshes[1].Material)
}

func TestConvertTopology(t *testing.T) {
	tests := []struct {
		mode qgltf.PrimitiveMode
		want asset.Topology
	}{
		{qgltf.PrimitiveTriangles, asset.TopologyTriangles},
		{qgltf.PrimitiveTriangleStrip, asset.TopologyTriangleStrip},
		{qgltf.PrimitiveTriangleFan, asset.TopologyTriangleFan},
		{qgltf.PrimitiveLines, asset.TopologyLines},
		{qgltf.PrimitiveLineStrip, asset.TopologyLineStrip},
		{qgltf.PrimitiveLineLoop, asset.TopologyLineLoop},
		{qgltf.PrimitivePoints, asset.TopologyPoints},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			doc := quadDoc()
			doc.Meshes[0].Primitives[0].Mode = tt.mode

			m, err := Convert(doc, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Submeshes[0].Topology)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	t.Run("no mesh", func(t *testing.T) {
		_, err := Convert(qgltf.NewDocument(), "")
		assert.True(t, errors.Is(err, ErrNoMesh))
	})

	t.Run("no position", func(t *testing.T) {
		doc := quadDoc()
		delete(doc.Meshes[0].Primitives[1].Attributes, qgltf.POSITION)
		_, err := Convert(doc, "")
		assert.True(t, errors.Is(err, ErrNoPosition))
		assert.Contains(t, err.Error(), "primitive 1")
	})

	t.Run("index out of range", func(t *testing.T) {
		doc := quadDoc()
		doc.Meshes[0].Primitives[0].Indices = qgltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 9}))
		_, err := Convert(doc, "")
		assert.True(t, errors.Is(err, ErrIndexRange))
	})
}

func TestGenerateNormalsDegenerate(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {5, 5, 5}}
	normals := generateNormals(positions, []uint32{0, 1, 2})
	for i, n := range normals {
		assert.Equal(t, [3]float32{0, 0, 1}, n, "vertex %d", i)
	}
}

func TestGenerateTangentsMirroredUV(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	// v runs against +Y: the bitangent flips and W reports it.
	uvs := [][2]float32{{0, 1}, {1, 1}, {0, 0}}

	tangents := generateTangents(positions, normals, uvs, []uint32{0, 1, 2})
	for _, tan := range tangents {
		assert.InDeltaSlice(t, []float32{1, 0, 0, -1}, tan[:], 1e-6)
	}
}

func TestImportBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sphere.glb")
	doc := quadDoc()
	doc.Meshes[0].Name = ""
	require.NoError(t, qgltf.SaveBinary(doc, path))

	m, err := Import(path)
	require.NoError(t, err)
	assert.Equal(t, "sphere", m.Name)
	assert.Equal(t, dir, m.Dir)
	assert.Equal(t, 7, m.VertexCount())

	spec, ok := m.Submeshes[0].Material.Float3(asset.SemanticSpecular)
	require.True(t, ok, "extras survive the JSON chunk")
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.25}, spec)
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "missing.gltf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.gltf")
}
