package gltf

import (
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	qgltf "github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/asset"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// Channel suffixes of the packed metallic-roughness and occlusion textures.
const (
	metallicChannel  = "#b"
	roughnessChannel = "#g"
	occlusionChannel = "#r"
)

// convertMaterial maps a glTF material onto asset semantics. Extras may
// carry "specular" (number or RGB triple) and "shininess" for Phong-era
// shading inputs.
func convertMaterial(doc *qgltf.Document, index uint32) *asset.Material {
	if int(index) >= len(doc.Materials) {
		return nil
	}
	src := doc.Materials[index]
	m := asset.NewMaterial(src.Name)

	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		pbr = &qgltf.PBRMetallicRoughness{}
	}
	base := pbr.BaseColorFactorOrDefault()
	m.SetFloat3(asset.SemanticBaseColor, mgl32.Vec3{base[0], base[1], base[2]})
	m.SetFloat(asset.SemanticOpacity, base[3])
	m.SetFloat(asset.SemanticMetallic, pbr.MetallicFactorOrDefault())
	m.SetFloat(asset.SemanticRoughness, pbr.RoughnessFactorOrDefault())
	m.SetFloat3(asset.SemanticEmission, mgl32.Vec3(src.EmissiveFactor))
	m.SetFloat3(asset.SemanticAmbientOcclusion, mgl32.Vec3{1, 1, 1})

	if pbr.BaseColorTexture != nil {
		if ref, ok := textureRef(doc, pbr.BaseColorTexture.Index); ok {
			m.SetTexture(asset.SemanticBaseColor, ref)
		}
	}
	if pbr.MetallicRoughnessTexture != nil {
		if ref, ok := textureRef(doc, pbr.MetallicRoughnessTexture.Index); ok {
			m.SetTexture(asset.SemanticMetallic, ref+metallicChannel)
			m.SetTexture(asset.SemanticRoughness, ref+roughnessChannel)
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		if ref, ok := textureRef(doc, *nt.Index); ok {
			m.SetTexture(asset.SemanticTangentSpaceNormal, ref)
		}
	}
	if ot := src.OcclusionTexture; ot != nil && ot.Index != nil {
		if ref, ok := textureRef(doc, *ot.Index); ok {
			m.SetTexture(asset.SemanticAmbientOcclusion, ref+occlusionChannel)
		}
	}

	applyExtras(m, src.Extras)
	return m
}

// textureRef returns the image path behind a texture index. Images
// embedded in buffers or data URIs have no path and are skipped.
func textureRef(doc *qgltf.Document, index uint32) (string, bool) {
	if int(index) >= len(doc.Textures) {
		return "", false
	}
	tex := doc.Textures[index]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return "", false
	}
	img := doc.Images[*tex.Source]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		logger.Debug("skipping embedded image", zap.String("image", img.Name))
		return "", false
	}
	// URIs are percent encoded; a path with a '#' would be read as a
	// channel selector.
	ref, err := url.PathUnescape(img.URI)
	if err != nil || strings.Contains(ref, "#") {
		return "", false
	}
	return ref, true
}

func applyExtras(m *asset.Material, extras interface{}) {
	fields, ok := extras.(map[string]interface{})
	if !ok {
		return
	}
	if v, ok := vec3(fields["specular"]); ok {
		m.SetFloat3(asset.SemanticSpecular, v)
	}
	if v, ok := fields["shininess"].(float64); ok {
		m.SetFloat(asset.SemanticSpecularExponent, float32(v))
	}
}

// vec3 accepts a JSON number (splatted) or a three element array.
func vec3(v interface{}) (mgl32.Vec3, bool) {
	switch v := v.(type) {
	case float64:
		f := float32(v)
		return mgl32.Vec3{f, f, f}, true
	case []interface{}:
		if len(v) != 3 {
			return mgl32.Vec3{}, false
		}
		var out mgl32.Vec3
		for i, c := range v {
			f, ok := c.(float64)
			if !ok {
				return mgl32.Vec3{}, false
			}
			out[i] = float32(f)
		}
		return out, true
	}
	return mgl32.Vec3{}, false
}
