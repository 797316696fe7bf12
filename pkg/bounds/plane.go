package bounds

import "github.com/Faultbox/slash/pkg/math"

// Plane is the set of points p with Normal.Dot(p) + D == 0.
// Points with a positive distance lie on the inner side.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// PlaneFromPoints builds a normalized plane through three points.
// The normal follows the winding (b-a) x (c-a).
func PlaneFromPoints(a, b, c math.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Flip returns the plane with the opposite orientation.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Scale(-1), D: -p.D}
}
