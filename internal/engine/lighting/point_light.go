// Package lighting provides the fixed point light rig of the scene.
package lighting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
)

// MaxPointLights is the light array size declared by the fragment shader.
const MaxPointLights = 4

// PointLight is a point light for GPU upload. Color is radiant intensity,
// not limited to the 0-1 range.
type PointLight struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Set is the full light array uploaded each frame.
type Set [MaxPointLights]PointLight

// Default returns four white lights at the corners of the z=5 plane.
func Default() Set {
	color := mgl32.Vec3{300, 300, 300}
	return Set{
		{Position: mgl32.Vec3{-5, 5, 5}, Color: color},
		{Position: mgl32.Vec3{5, 5, 5}, Color: color},
		{Position: mgl32.Vec3{-5, -5, 5}, Color: color},
		{Position: mgl32.Vec3{5, -5, 5}, Color: color},
	}
}

var positionNames, colorNames [MaxPointLights]string

func init() {
	for i := range positionNames {
		positionNames[i] = fmt.Sprintf("lightPositions[%d]", i)
		colorNames[i] = fmt.Sprintf("lightColors[%d]", i)
	}
}

// Uniforms resolves uniform names of the bound program to locations.
type Uniforms interface {
	Uniform(name string) int32
}

// Upload pushes lightPositions[i] and lightColors[i] for every light.
func (s *Set) Upload(dev gpu.Device, u Uniforms) {
	for i, l := range s {
		dev.Uniform3f(u.Uniform(positionNames[i]), l.Position)
		dev.Uniform3f(u.Uniform(colorNames[i]), l.Color)
	}
}
