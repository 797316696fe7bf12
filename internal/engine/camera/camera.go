// Package camera provides a first-person fly camera for 3D rendering.
package camera

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/slash/pkg/bounds"
	"github.com/Faultbox/slash/pkg/math"
)

// Camera is a fly camera. Its view-space frustum is rebuilt only when the
// lens changes; moving or turning the camera changes the view matrix alone.
type Camera struct {
	position math.Vec3
	right    math.Vec3
	up       math.Vec3
	look     math.Vec3

	fovY, aspect float32
	nearZ, farZ  float32

	view      math.Mat4
	proj      math.Mat4
	frustum   bounds.Frustum
	viewDirty bool

	// Pitch limit in radians from the horizon.
	MaxPitch float32
}

// New creates a camera at the origin looking down -Z with a 45 degree lens.
func New() *Camera {
	c := &Camera{
		right:     math.Vec3{X: 1},
		up:        math.Vec3{Y: 1},
		look:      math.Vec3{Z: -1},
		viewDirty: true,
		MaxPitch:  1.5,
	}
	// A fixed valid lens cannot fail.
	_ = c.SetLens(gomath.Pi/4, 1, 1, 1000)
	return c
}

// SetLens sets the projection and rebuilds the view-space frustum.
func (c *Camera) SetLens(fovY, aspect, nearZ, farZ float32) error {
	if fovY <= 0 || aspect <= 0 || nearZ <= 0 || farZ <= nearZ {
		return fmt.Errorf("camera: invalid lens fov=%g aspect=%g near=%g far=%g", fovY, aspect, nearZ, farZ)
	}
	proj := math.Perspective(fovY, aspect, nearZ, farZ)
	f, err := bounds.NewFrustumFromProjection(proj)
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	c.fovY, c.aspect, c.nearZ, c.farZ = fovY, aspect, nearZ, farZ
	c.proj = proj
	c.frustum = f
	return nil
}

// SetAspect keeps the current lens and changes its aspect ratio, as on a
// window resize.
func (c *Camera) SetAspect(aspect float32) error {
	return c.SetLens(c.fovY, aspect, c.nearZ, c.farZ)
}

// LookAt places the camera at pos looking toward target.
func (c *Camera) LookAt(pos, target, worldUp math.Vec3) {
	c.position = pos
	c.look = target.Sub(pos).Normalize()
	c.right = c.look.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.look)
	c.viewDirty = true
}

// SetPosition moves the camera without turning it.
func (c *Camera) SetPosition(p math.Vec3) {
	c.position = p
	c.viewDirty = true
}

// Position returns the camera position in world space.
func (c *Camera) Position() math.Vec3 { return c.position }

// Look returns the forward direction.
func (c *Camera) Look() math.Vec3 { return c.look }

// Right returns the right direction.
func (c *Camera) Right() math.Vec3 { return c.right }

// Up returns the up direction.
func (c *Camera) Up() math.Vec3 { return c.up }

// Walk moves along the look direction.
func (c *Camera) Walk(d float32) {
	c.position = c.position.Add(c.look.Scale(d))
	c.viewDirty = true
}

// Strafe moves along the right direction.
func (c *Camera) Strafe(d float32) {
	c.position = c.position.Add(c.right.Scale(d))
	c.viewDirty = true
}

// Pitch turns up or down about the right axis, limited to MaxPitch.
func (c *Camera) Pitch(angle float32) {
	current := float32(gomath.Asin(float64(clamp(c.look.Y, -1, 1))))
	target := clamp(current+angle, -c.MaxPitch, c.MaxPitch)
	angle = target - current
	if angle == 0 {
		return
	}

	r := math.QuatFromAxisAngle(c.right, angle)
	c.up = r.Rotate(c.up).Normalize()
	c.look = r.Rotate(c.look).Normalize()
	c.viewDirty = true
}

// RotateY turns about the world Y axis.
func (c *Camera) RotateY(angle float32) {
	r := math.QuatFromAxisAngle(math.Vec3{Y: 1}, angle)
	c.right = r.Rotate(c.right).Normalize()
	c.up = r.Rotate(c.up).Normalize()
	c.look = r.Rotate(c.look).Normalize()
	c.viewDirty = true
}

// View returns the view matrix, rebuilding it if the camera moved.
func (c *Camera) View() math.Mat4 {
	if c.viewDirty {
		c.view = math.LookAt(c.position, c.position.Add(c.look), c.up)
		c.viewDirty = false
	}
	return c.view
}

// Proj returns the projection matrix.
func (c *Camera) Proj() math.Mat4 { return c.proj }

// Frustum returns the view-space frustum of the current lens.
func (c *Camera) Frustum() bounds.Frustum { return c.frustum }

// NearZ returns the near plane distance.
func (c *Camera) NearZ() float32 { return c.nearZ }

// FarZ returns the far plane distance.
func (c *Camera) FarZ() float32 { return c.farZ }

// Aspect returns the lens aspect ratio.
func (c *Camera) Aspect() float32 { return c.aspect }

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
