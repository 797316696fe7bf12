// Package lighting builds directional light setups.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/slash/pkg/math"
)

// SunDirection returns the unit direction light travels from a sun placed at
// longitude degrees around the Y axis and latitude degrees above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := float64(longitude) * gomath.Pi / 180
	lat := float64(latitude) * gomath.Pi / 180

	toSun := math.Vec3{
		X: float32(gomath.Cos(lat) * gomath.Sin(lon)),
		Y: float32(gomath.Sin(lat)),
		Z: float32(gomath.Cos(lat) * gomath.Cos(lon)),
	}
	return toSun.Scale(-1)
}

// Gray returns an equal-channel light strength.
func Gray(s float32) math.Vec3 {
	return math.Vec3{X: s, Y: s, Z: s}
}
