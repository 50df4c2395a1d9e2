// Package camera provides the arcball camera that orbits the scene origin.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Point is a pointer position in window pixels, origin top-left.
type Point struct {
	X, Y float32
}

// VirtualCamera is an arcball camera. Dragging rotates the orientation
// about the origin; releasing keeps it spinning with decaying speed.
// The view matrix only holds the camera distance; callers combine it with
// Orientation.
type VirtualCamera struct {
	width, height float32

	orientation mgl32.Quat
	distance    float32

	dragging  bool
	dragStart mgl32.Vec3

	// Rotation accumulated by drags since the last Update.
	pendingAngle float32
	pendingAxis  mgl32.Vec3

	spinAxis  mgl32.Vec3
	spinSpeed float32 // radians per second

	// Constraints
	MinDistance float32
	MaxDistance float32

	// Sensitivity
	ZoomSensitivity float32
	// Damping is the exponential spin decay rate per second.
	Damping float32
}

// New creates a camera for a viewport of the given size.
func New(width, height float32) *VirtualCamera {
	c := &VirtualCamera{
		orientation:     mgl32.QuatIdent(),
		distance:        4,
		MinDistance:     0,
		MaxDistance:     40,
		ZoomSensitivity: 0.1,
		Damping:         3,
	}
	c.Resize(width, height)
	return c
}

// Resize updates the viewport size used to map pointer positions.
func (c *VirtualCamera) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
}

// Size returns the viewport size.
func (c *VirtualCamera) Size() (width, height float32) {
	return c.width, c.height
}

// Dragging reports whether a drag is in progress.
func (c *VirtualCamera) Dragging() bool {
	return c.dragging
}

// Distance returns the camera distance from the origin.
func (c *VirtualCamera) Distance() float32 {
	return c.distance
}

// Orientation returns the accumulated arcball rotation.
func (c *VirtualCamera) Orientation() mgl32.Quat {
	return c.orientation
}

// ViewMatrix returns the translation that places the camera at its
// distance from the origin.
func (c *VirtualCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -c.distance)
}

// StartDrag begins a drag at p and stops any spin.
func (c *VirtualCamera) StartDrag(p Point) {
	c.dragging = true
	c.dragStart = c.sphere(p)
	c.spinSpeed = 0
	c.pendingAngle = 0
}

// Drag rotates the orientation by the arc from the previous drag point to
// p. It is a no-op when no drag is in progress.
func (c *VirtualCamera) Drag(p Point) {
	if !c.dragging {
		return
	}
	end := c.sphere(p)
	axis := c.dragStart.Cross(end)
	if axis.Len() < 1e-6 {
		return
	}
	angle := math32.Acos(mgl32.Clamp(c.dragStart.Dot(end), -1, 1))
	axis = axis.Normalize()

	c.orientation = mgl32.QuatRotate(angle, axis).Mul(c.orientation).Normalize()
	c.pendingAngle += angle
	c.pendingAxis = axis
	c.dragStart = end
}

// EndDrag finishes the drag. The camera keeps spinning at the speed of the
// last Update interval.
func (c *VirtualCamera) EndDrag() {
	c.dragging = false
}

// Zoom moves the camera towards the origin for positive amounts, clamped
// to [MinDistance, MaxDistance].
func (c *VirtualCamera) Zoom(amount float32) {
	c.distance = mgl32.Clamp(c.distance-amount*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Update advances the spin by dt seconds.
func (c *VirtualCamera) Update(dt float32) {
	if dt <= 0 {
		return
	}
	if c.dragging {
		if c.pendingAngle > 0 {
			c.spinAxis = c.pendingAxis
			c.spinSpeed = c.pendingAngle / dt
		} else {
			c.spinSpeed = 0
		}
		c.pendingAngle = 0
		return
	}
	if c.spinSpeed < 1e-3 {
		c.spinSpeed = 0
		return
	}
	c.orientation = mgl32.QuatRotate(c.spinSpeed*dt, c.spinAxis).Mul(c.orientation).Normalize()
	c.spinSpeed *= math32.Exp(-c.Damping * dt)
}

// sphere maps a window point onto the unit arcball. Points outside the
// ball land on its rim.
func (c *VirtualCamera) sphere(p Point) mgl32.Vec3 {
	radius := math32.Min(c.width, c.height) / 2
	if radius <= 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	x := (p.X - c.width/2) / radius
	y := (c.height/2 - p.Y) / radius
	d := x*x + y*y
	if d > 1 {
		n := math32.Sqrt(d)
		return mgl32.Vec3{x / n, y / n, 0}
	}
	return mgl32.Vec3{x, y, math32.Sqrt(1 - d)}
}
