package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Reciprocal returns (1/X, 1/Y). Zero components stay zero.
func (v Vec2) Reciprocal() Vec2 {
	var r Vec2
	if v.X != 0 {
		r.X = 1 / v.X
	}
	if v.Y != 0 {
		r.Y = 1 / v.Y
	}
	return r
}
