// Package material resolves submesh materials into the per-draw shading
// state: scalar constants, optional textures and their presence flags.
//
// Texture binding contract: each slot always lands on the same texture
// unit, and its sampler uniform is set to that unit index.
//
//	slot              unit  sampler             flag
//	base colour       0     baseColourTexture   useTexture.hasColorTexture
//	normal            1     normalTexture       useTexture.hasNormalTexture
//	metallic          2     metallicTexture     useTexture.hasMetallicTexture
//	roughness         3     roughnessTexture    useTexture.hasRoughnessTexture
//	ambient occlusion 4     aoTexture           useTexture.hasAOTexture
package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
)

// Uniforms resolves uniform names of the bound program to locations.
type Uniforms interface {
	Uniform(name string) int32
}

// Slot is a texture slot of a submesh.
type Slot int

const (
	SlotBaseColor Slot = iota
	SlotNormal
	SlotMetallic
	SlotRoughness
	SlotAmbientOcclusion

	// NumSlots is the number of texture slots.
	NumSlots
)

type slotInfo struct {
	name     string
	semantic asset.Semantic
	sampler  string
	flag     string
}

var slots = [NumSlots]slotInfo{
	SlotBaseColor:        {"baseColor", asset.SemanticBaseColor, "baseColourTexture", "useTexture.hasColorTexture"},
	SlotNormal:           {"normal", asset.SemanticTangentSpaceNormal, "normalTexture", "useTexture.hasNormalTexture"},
	SlotMetallic:         {"metallic", asset.SemanticMetallic, "metallicTexture", "useTexture.hasMetallicTexture"},
	SlotRoughness:        {"roughness", asset.SemanticRoughness, "roughnessTexture", "useTexture.hasRoughnessTexture"},
	SlotAmbientOcclusion: {"ambientOcclusion", asset.SemanticAmbientOcclusion, "aoTexture", "useTexture.hasAOTexture"},
}

func (s Slot) String() string {
	if s < 0 || s >= NumSlots {
		return "invalid"
	}
	return slots[s].name
}

// Unit returns the texture unit the slot is bound to.
func (s Slot) Unit() uint32 { return uint32(s) }

// Semantic returns the material channel the slot's texture is read from.
func (s Slot) Semantic() asset.Semantic { return slots[s].semantic }

// Sampler returns the sampler uniform name of the slot.
func (s Slot) Sampler() string { return slots[s].sampler }

// Flag returns the presence flag uniform name of the slot.
func (s Slot) Flag() string { return slots[s].flag }

// Constants holds the scalar shading parameters of a submesh. Absent
// material properties leave their field at zero.
type Constants struct {
	BaseColor        mgl32.Vec3
	SpecularColor    mgl32.Vec3
	AmbientColor     mgl32.Vec3 // from the emission channel
	AmbientOcclusion mgl32.Vec3
	Roughness        float32
	Metallic         float32
	Shininess        float32 // from the specular exponent channel
	Opacity          float32
}

// NewConstants reads the constants of m. Each field is populated on its own
// and only from a property of the expected type.
func NewConstants(m *asset.Material) Constants {
	var c Constants
	if v, ok := m.Float3(asset.SemanticBaseColor); ok {
		c.BaseColor = v
	}
	if v, ok := m.Float3(asset.SemanticSpecular); ok {
		c.SpecularColor = v
	}
	if v, ok := m.Float3(asset.SemanticEmission); ok {
		c.AmbientColor = v
	}
	if v, ok := m.Float3(asset.SemanticAmbientOcclusion); ok {
		c.AmbientOcclusion = v
	}
	if v, ok := m.Float(asset.SemanticRoughness); ok {
		c.Roughness = v
	}
	if v, ok := m.Float(asset.SemanticMetallic); ok {
		c.Metallic = v
	}
	if v, ok := m.Float(asset.SemanticSpecularExponent); ok {
		c.Shininess = v
	}
	if v, ok := m.Float(asset.SemanticOpacity); ok {
		c.Opacity = v
	}
	return c
}

// Upload pushes the eight materialConstants uniforms.
func (c Constants) Upload(dev gpu.Device, u Uniforms) {
	dev.Uniform3f(u.Uniform("materialConstants.baseColor"), c.BaseColor)
	dev.Uniform3f(u.Uniform("materialConstants.specularColor"), c.SpecularColor)
	dev.Uniform3f(u.Uniform("materialConstants.ambientColor"), c.AmbientColor)
	dev.Uniform3f(u.Uniform("materialConstants.ambientOcclusion"), c.AmbientOcclusion)
	dev.Uniform1f(u.Uniform("materialConstants.roughness"), c.Roughness)
	dev.Uniform1f(u.Uniform("materialConstants.metallic"), c.Metallic)
	dev.Uniform1f(u.Uniform("materialConstants.shininess"), c.Shininess)
	dev.Uniform1f(u.Uniform("materialConstants.opacity"), c.Opacity)
}
