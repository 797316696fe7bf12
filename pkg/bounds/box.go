// Package bounds provides bounding volumes and frustum containment tests.
package bounds

import (
	gomath "math"

	"github.com/Faultbox/slash/pkg/math"
)

// OrientedBox is a box given by its center, half-extents along its own axes,
// and the rotation of those axes.
type OrientedBox struct {
	Center      math.Vec3
	Extents     math.Vec3
	Orientation math.Quat
}

// NewBox creates an axis-aligned box (identity orientation).
func NewBox(center, extents math.Vec3) OrientedBox {
	return OrientedBox{
		Center:      center,
		Extents:     extents,
		Orientation: math.QuatIdentity(),
	}
}

// Axes returns the three box axes scaled by their half-extents.
func (b OrientedBox) Axes() [3]math.Vec3 {
	q := b.Orientation
	if q == (math.Quat{}) {
		q = math.QuatIdentity()
	}
	rot := q.ToMat4()
	return [3]math.Vec3{
		rot.Column(0).Scale(b.Extents.X),
		rot.Column(1).Scale(b.Extents.Y),
		rot.Column(2).Scale(b.Extents.Z),
	}
}

// Corners returns the eight corners of the box.
func (b OrientedBox) Corners() [8]math.Vec3 {
	a := b.Axes()
	var out [8]math.Vec3
	for i := 0; i < 8; i++ {
		p := b.Center
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				p = p.Add(a[k])
			} else {
				p = p.Sub(a[k])
			}
		}
		out[i] = p
	}
	return out
}

// Transform maps the box through an affine matrix. Rotation, translation and
// uniform scale keep the result an exact box; other scales are approximated by
// the lengths of the transformed axes.
func (b OrientedBox) Transform(m math.Mat4) OrientedBox {
	axes := b.Axes()
	center := m.TransformVec3(b.Center)

	var cols [3]math.Vec3
	var ext [3]float32
	for i, a := range axes {
		d := m.TransformDirection([3]float32{a.X, a.Y, a.Z})
		v := math.Vec3{X: d[0], Y: d[1], Z: d[2]}
		ext[i] = v.Length()
		cols[i] = v.Normalize()
	}

	// A zero extent leaves its axis undefined; rebuild it from the others.
	for i := range cols {
		if cols[i] == (math.Vec3{}) {
			cols[i] = cols[(i+1)%3].Cross(cols[(i+2)%3]).Normalize()
		}
	}

	rot := math.Mat4{
		cols[0].X, cols[0].Y, cols[0].Z, 0,
		cols[1].X, cols[1].Y, cols[1].Z, 0,
		cols[2].X, cols[2].Y, cols[2].Z, 0,
		0, 0, 0, 1,
	}
	if rot.Determinant() < 0 {
		// Mirroring transform; flip one axis to keep a proper rotation.
		cols[2] = cols[2].Scale(-1)
		rot[8], rot[9], rot[10] = cols[2].X, cols[2].Y, cols[2].Z
	}

	return OrientedBox{
		Center:      center,
		Extents:     math.Vec3{X: ext[0], Y: ext[1], Z: ext[2]},
		Orientation: math.QuatFromMat4(rot),
	}
}

// projectedRadius returns the half-length of the box projected onto n.
func (b OrientedBox) projectedRadius(n math.Vec3) float32 {
	var r float32
	for _, a := range b.Axes() {
		r += float32(gomath.Abs(float64(n.Dot(a))))
	}
	return r
}
