package material

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// TextureLoader resolves a texture reference to an uploaded texture handle.
// Relative references resolve against dir.
type TextureLoader interface {
	Load(dir, ref string) (uint32, error)
}

// TextureSet holds the optional textures of a submesh. A zero handle means
// the slot is empty.
type TextureSet [NumSlots]uint32

// NewTextureSet loads every slot texture m references. A slot whose
// reference is missing or fails to load stays empty; this is not an error.
func NewTextureSet(m *asset.Material, dir string, loader TextureLoader) TextureSet {
	var set TextureSet
	if loader == nil {
		return set
	}
	for s := Slot(0); s < NumSlots; s++ {
		ref, ok := m.Texture(s.Semantic())
		if !ok {
			continue
		}
		tex, err := loader.Load(dir, ref)
		if err != nil {
			logger.Debug("texture unavailable",
				zap.String("material", m.Name),
				zap.Stringer("slot", s),
				zap.String("ref", ref),
				zap.Error(err))
			continue
		}
		set[s] = tex
	}
	return set
}

// Has reports whether slot s holds a texture.
func (t TextureSet) Has(s Slot) bool { return t[s] != 0 }

// Bind binds every present texture to its slot unit and points the slot's
// sampler uniform at that unit. Empty slots are skipped.
func (t TextureSet) Bind(dev gpu.Device, u Uniforms) {
	for s := Slot(0); s < NumSlots; s++ {
		if t[s] == 0 {
			continue
		}
		dev.Uniform1i(u.Uniform(s.Sampler()), int32(s.Unit()))
		dev.ActiveTexture(s.Unit())
		dev.BindTexture(t[s])
	}
}

// UseTextures mirrors the shader's useTexture struct. GLSL bools are four
// bytes wide at the uniform boundary, so every flag is a uint32 holding 0
// or 1. The record is only built and read at that boundary.
type UseTextures struct {
	HasColorTexture     uint32 // 4 bytes
	HasNormalTexture    uint32 // 4 bytes
	HasMetallicTexture  uint32 // 4 bytes
	HasRoughnessTexture uint32 // 4 bytes
	HasAOTexture        uint32 // 4 bytes
}

// Flags returns the presence record of t.
func (t TextureSet) Flags() UseTextures {
	flag := func(s Slot) uint32 {
		if t.Has(s) {
			return 1
		}
		return 0
	}
	return UseTextures{
		HasColorTexture:     flag(SlotBaseColor),
		HasNormalTexture:    flag(SlotNormal),
		HasMetallicTexture:  flag(SlotMetallic),
		HasRoughnessTexture: flag(SlotRoughness),
		HasAOTexture:        flag(SlotAmbientOcclusion),
	}
}

// Upload pushes the five useTexture flags.
func (f UseTextures) Upload(dev gpu.Device, u Uniforms) {
	dev.Uniform1i(u.Uniform(SlotBaseColor.Flag()), int32(f.HasColorTexture))
	dev.Uniform1i(u.Uniform(SlotNormal.Flag()), int32(f.HasNormalTexture))
	dev.Uniform1i(u.Uniform(SlotMetallic.Flag()), int32(f.HasMetallicTexture))
	dev.Uniform1i(u.Uniform(SlotRoughness.Flag()), int32(f.HasRoughnessTexture))
	dev.Uniform1i(u.Uniform(SlotAmbientOcclusion.Flag()), int32(f.HasAOTexture))
}
