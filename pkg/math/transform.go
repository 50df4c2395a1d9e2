// Package math provides the transform helpers shared by the scene and renderer.
//
// Matrices are mgl32 column-major values, which is also the layout OpenGL
// expects for uniform uploads.
package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Default projection parameters.
const (
	DefaultFOVDegrees float32 = 65
	DefaultNear       float32 = 1
	DefaultFar        float32 = 100
)

// Compose returns translate(position) * scale(s) * rotate(angle, axis).
// The axis is normalized first; a zero axis contributes no rotation.
// angle is in radians.
func Compose(position mgl32.Vec3, s float32, axis mgl32.Vec3, angle float32) mgl32.Mat4 {
	m := mgl32.Translate3D(position[0], position[1], position[2])
	m = m.Mul4(mgl32.Scale3D(s, s, s))
	return m.Mul4(Rotation(axis, angle))
}

// Rotation returns a rotation of angle radians about axis.
func Rotation(axis mgl32.Vec3, angle float32) mgl32.Mat4 {
	if axis.Len() == 0 {
		return mgl32.Ident4()
	}
	return mgl32.HomogRotate3D(angle, axis.Normalize())
}

// NormalMatrix returns the inverse-transpose of the upper-left 3x3 block of m.
// When that block is singular it returns the block itself and ok is false.
func NormalMatrix(m mgl32.Mat4) (n mgl32.Mat3, ok bool) {
	upper := m.Mat3()
	if mgl32.FloatEqual(upper.Det(), 0) {
		return upper, false
	}
	return upper.Inv().Transpose(), true
}

// Perspective returns a right-handed perspective projection.
// fovDegrees is the vertical field of view.
func Perspective(fovDegrees, width, height, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDegrees), width/height, near, far)
}

// TranslationOf returns the translation column of m.
func TranslationOf(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// ApproxEqual reports whether a and b differ by at most eps in every element.
func ApproxEqual(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
