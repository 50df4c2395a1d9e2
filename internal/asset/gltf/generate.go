package gltf

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const degenerate = 1e-12

// generateNormals returns area weighted vertex normals for a triangle
// list. Vertices touched only by degenerate triangles get +Z.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	sums := make([]mgl32.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0 := mgl32.Vec3(positions[i0])
		e1 := mgl32.Vec3(positions[i1]).Sub(p0)
		e2 := mgl32.Vec3(positions[i2]).Sub(p0)
		face := e1.Cross(e2)
		sums[i0] = sums[i0].Add(face)
		sums[i1] = sums[i1].Add(face)
		sums[i2] = sums[i2].Add(face)
	}

	out := make([][3]float32, len(positions))
	for i, s := range sums {
		if s.Dot(s) <= degenerate {
			out[i] = [3]float32{0, 0, 1}
			continue
		}
		out[i] = s.Normalize()
	}
	return out
}

// generateTangents returns per-vertex tangents derived from the texture
// coordinate gradients of each triangle, orthogonalised against the normal.
// W holds the bitangent handedness.
func generateTangents(positions, normals [][3]float32, texCoords [][2]float32, indices []uint32) [][4]float32 {
	tan := make([]mgl32.Vec3, len(positions))
	bit := make([]mgl32.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0 := mgl32.Vec3(positions[i0])
		e1 := mgl32.Vec3(positions[i1]).Sub(p0)
		e2 := mgl32.Vec3(positions[i2]).Sub(p0)

		uv0 := mgl32.Vec2(texCoords[i0])
		d1 := mgl32.Vec2(texCoords[i1]).Sub(uv0)
		d2 := mgl32.Vec2(texCoords[i2]).Sub(uv0)

		r := d1.X()*d2.Y() - d2.X()*d1.Y()
		if math32.Abs(r) <= degenerate {
			continue
		}
		f := 1 / r
		sdir := e1.Mul(d2.Y()).Sub(e2.Mul(d1.Y())).Mul(f)
		tdir := e2.Mul(d1.X()).Sub(e1.Mul(d2.X())).Mul(f)
		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(sdir)
			bit[i] = bit[i].Add(tdir)
		}
	}

	out := make([][4]float32, len(positions))
	for i := range positions {
		n := mgl32.Vec3(normals[i])
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Dot(t) <= degenerate {
			t = perpendicular(n)
		} else {
			t = t.Normalize()
		}
		w := float32(1)
		if n.Cross(t).Dot(bit[i]) < 0 {
			w = -1
		}
		out[i] = [4]float32{t.X(), t.Y(), t.Z(), w}
	}
	return out
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	p := n.Cross(axis)
	if p.Dot(p) <= degenerate {
		return axis
	}
	return p.Normalize()
}
