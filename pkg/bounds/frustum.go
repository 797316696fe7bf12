package bounds

import (
	"errors"

	"github.com/Faultbox/slash/pkg/math"
)

// ErrSingularProjection is returned when a projection matrix cannot be inverted.
var ErrSingularProjection = errors.New("singular projection matrix")

// Containment classifies a volume against a frustum.
type Containment int

const (
	Disjoint Containment = iota
	Intersects
	Contains
)

// String returns the classification name.
func (c Containment) String() string {
	switch c {
	case Disjoint:
		return "disjoint"
	case Intersects:
		return "intersects"
	case Contains:
		return "contains"
	default:
		return "unknown"
	}
}

// Plane indices into Frustum.Planes.
const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneBottom
	PlaneTop
)

// Frustum is a convex volume kept both as its eight corners and as six planes
// facing inward. Corners 0-3 lie on the near plane, 4-7 on the far plane, each
// quad ordered left-bottom, right-bottom, right-top, left-top.
type Frustum struct {
	Corners [8]math.Vec3
	Planes  [6]Plane
}

// NewFrustumFromProjection builds the view-space frustum of a projection
// matrix by unprojecting the corners of the clip volume (OpenGL depth range).
func NewFrustumFromProjection(proj math.Mat4) (Frustum, error) {
	inv, ok := proj.Invert()
	if !ok {
		return Frustum{}, ErrSingularProjection
	}

	ndc := [8][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}

	var f Frustum
	for i, c := range ndc {
		v := inv.MulVec4(math.Vec4{c[0], c[1], c[2], 1})
		if v[3] == 0 {
			return Frustum{}, ErrSingularProjection
		}
		f.Corners[i] = math.Vec3{X: v[0] / v[3], Y: v[1] / v[3], Z: v[2] / v[3]}
	}
	f.rebuildPlanes()
	return f, nil
}

// Transform returns the frustum mapped through m. Corners are transformed
// directly and the planes rebuilt from them, so any non-degenerate affine
// transform is supported.
func (f Frustum) Transform(m math.Mat4) Frustum {
	var out Frustum
	for i, c := range f.Corners {
		out.Corners[i] = m.TransformVec3(c)
	}
	out.rebuildPlanes()
	return out
}

// Contains classifies an oriented box against the frustum. The test is
// plane-only: a box that is reported Disjoint is guaranteed outside, while a
// box near a frustum edge may be reported Intersects without touching it.
func (f Frustum) Contains(b OrientedBox) Containment {
	inside := true
	for _, p := range f.Planes {
		r := b.projectedRadius(p.Normal)
		s := p.Distance(b.Center)
		if s < -r {
			return Disjoint
		}
		if s < r {
			inside = false
		}
	}

	if inside {
		return Contains
	}
	return Intersects
}

// ContainsPoint reports whether p lies inside or on the frustum.
func (f Frustum) ContainsPoint(p math.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// rebuildPlanes derives the six planes from the corners and orients each one
// toward the frustum centroid, which keeps them inward-facing under mirroring
// transforms.
func (f *Frustum) rebuildPlanes() {
	c := f.Corners
	f.Planes[PlaneNear] = PlaneFromPoints(c[0], c[1], c[2])
	f.Planes[PlaneFar] = PlaneFromPoints(c[4], c[5], c[6])
	f.Planes[PlaneLeft] = PlaneFromPoints(c[0], c[3], c[7])
	f.Planes[PlaneRight] = PlaneFromPoints(c[1], c[2], c[6])
	f.Planes[PlaneBottom] = PlaneFromPoints(c[0], c[1], c[5])
	f.Planes[PlaneTop] = PlaneFromPoints(c[3], c[2], c[6])

	var centroid math.Vec3
	for _, p := range c {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1.0 / 8)

	for i := range f.Planes {
		if f.Planes[i].Distance(centroid) < 0 {
			f.Planes[i] = f.Planes[i].Flip()
		}
	}
}
