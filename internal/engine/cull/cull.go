// Package cull classifies objects against the camera frustum in each
// object's local space.
package cull

import (
	"errors"

	"github.com/Faultbox/slash/pkg/bounds"
	"github.com/Faultbox/slash/pkg/math"
)

// ErrDegenerateTransform is returned when a view or world matrix has no
// inverse (for example a zero scale). Objects must keep a non-degenerate scale.
var ErrDegenerateTransform = errors.New("degenerate transform")

// Stats counts classification results since the last Begin.
type Stats struct {
	Tested  int
	Visible int
	Culled  int
}

// Culler tests bounding boxes against a view-space frustum.
//
// The frustum is moved into each object's local space (one matrix inverse per
// object) instead of moving every box into view space, so the box test always
// runs in the box's own frame.
type Culler struct {
	// Enabled turns the test on. When false every object is visible and no
	// test is performed.
	Enabled bool

	frustum bounds.Frustum
	invView math.Mat4
	stats   Stats
}

// New creates a culler with culling enabled.
func New() *Culler {
	return &Culler{Enabled: true}
}

// Begin prepares the culler for a frame with the given camera view matrix and
// view-space frustum.
func (c *Culler) Begin(view math.Mat4, frustum bounds.Frustum) error {
	c.stats = Stats{}
	c.frustum = frustum
	inv, ok := view.Invert()
	if !ok {
		return ErrDegenerateTransform
	}
	c.invView = inv
	return nil
}

// Classify returns the containment of a local-space box for an object with
// the given world matrix. Begin must have been called for the frame.
func (c *Culler) Classify(world math.Mat4, box bounds.OrientedBox) (bounds.Containment, error) {
	invWorld, ok := world.Invert()
	if !ok {
		return bounds.Disjoint, ErrDegenerateTransform
	}

	// View space -> world space -> local space.
	viewToLocal := invWorld.Mul(c.invView)
	return c.frustum.Transform(viewToLocal).Contains(box), nil
}

// Test reports whether an object is visible. With culling disabled it returns
// true without touching the matrices.
func (c *Culler) Test(world math.Mat4, box bounds.OrientedBox) (bool, error) {
	if !c.Enabled {
		c.stats.Tested++
		c.stats.Visible++
		return true, nil
	}

	res, err := c.Classify(world, box)
	if err != nil {
		return false, err
	}

	c.stats.Tested++
	if res == bounds.Disjoint {
		c.stats.Culled++
		return false, nil
	}
	c.stats.Visible++
	return true, nil
}

// Stats returns the counters accumulated since the last Begin.
func (c *Culler) Stats() Stats {
	return c.stats
}
