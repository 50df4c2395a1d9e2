package asset

import "github.com/go-gl/mathgl/mgl32"

// Semantic identifies a material channel.
type Semantic int

const (
	SemanticBaseColor Semantic = iota
	SemanticSpecular
	SemanticEmission
	SemanticAmbientOcclusion
	SemanticRoughness
	SemanticMetallic
	SemanticSpecularExponent
	SemanticOpacity
	SemanticTangentSpaceNormal
)

var semanticNames = [...]string{
	SemanticBaseColor:          "baseColor",
	SemanticSpecular:           "specular",
	SemanticEmission:           "emission",
	SemanticAmbientOcclusion:   "ambientOcclusion",
	SemanticRoughness:          "roughness",
	SemanticMetallic:           "metallic",
	SemanticSpecularExponent:   "specularExponent",
	SemanticOpacity:            "opacity",
	SemanticTangentSpaceNormal: "tangentSpaceNormal",
}

func (s Semantic) String() string {
	if s < 0 || int(s) >= len(semanticNames) {
		return "unknown"
	}
	return semanticNames[s]
}

// PropertyType is the value type held by a Property.
type PropertyType int

const (
	PropertyFloat PropertyType = iota
	PropertyFloat3
	// PropertyString holds a texture reference: a file URL or a path.
	PropertyString
)

// Property is one typed value attached to a material channel.
type Property struct {
	Type   PropertyType
	Float  float32
	Float3 mgl32.Vec3
	String string
}

// Material is a named table of channel properties. A channel may carry
// several properties of different types, e.g. a base colour factor and a
// base colour texture.
type Material struct {
	Name  string
	props map[Semantic][]Property
}

// NewMaterial returns an empty material.
func NewMaterial(name string) *Material {
	return &Material{Name: name, props: make(map[Semantic][]Property)}
}

// SetFloat sets the scalar value of a channel.
func (m *Material) SetFloat(sem Semantic, v float32) *Material {
	return m.set(sem, Property{Type: PropertyFloat, Float: v})
}

// SetFloat3 sets the vector value of a channel.
func (m *Material) SetFloat3(sem Semantic, v mgl32.Vec3) *Material {
	return m.set(sem, Property{Type: PropertyFloat3, Float3: v})
}

// SetTexture sets the texture reference of a channel.
func (m *Material) SetTexture(sem Semantic, ref string) *Material {
	return m.set(sem, Property{Type: PropertyString, String: ref})
}

func (m *Material) set(sem Semantic, p Property) *Material {
	if m.props == nil {
		m.props = make(map[Semantic][]Property)
	}
	list := m.props[sem]
	for i := range list {
		if list[i].Type == p.Type {
			list[i] = p
			return m
		}
	}
	m.props[sem] = append(list, p)
	return m
}

// Property returns the property of the given type on a channel.
func (m *Material) Property(sem Semantic, typ PropertyType) (Property, bool) {
	if m == nil {
		return Property{}, false
	}
	for _, p := range m.props[sem] {
		if p.Type == typ {
			return p, true
		}
	}
	return Property{}, false
}

// Float returns the scalar value of a channel.
func (m *Material) Float(sem Semantic) (float32, bool) {
	p, ok := m.Property(sem, PropertyFloat)
	return p.Float, ok
}

// Float3 returns the vector value of a channel.
func (m *Material) Float3(sem Semantic) (mgl32.Vec3, bool) {
	p, ok := m.Property(sem, PropertyFloat3)
	return p.Float3, ok
}

// Texture returns the texture reference of a channel. Empty references are
// reported as absent.
func (m *Material) Texture(sem Semantic) (string, bool) {
	p, ok := m.Property(sem, PropertyString)
	if !ok || p.String == "" {
		return "", false
	}
	return p.String, true
}
