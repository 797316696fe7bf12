package lighting

import (
	gomath "math"
	"testing"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		x, y, z  float32
	}{
		{"zenith", 0, 90, 0, -1, 0},
		{"south horizon", 0, 0, 0, 0, -1},
		{"east horizon", 90, 0, -1, 0, 0},
	}

	const eps = 1e-5
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := SunDirection(tt.lon, tt.lat)
			if gomath.Abs(float64(d.X-tt.x)) > eps || gomath.Abs(float64(d.Y-tt.y)) > eps || gomath.Abs(float64(d.Z-tt.z)) > eps {
				t.Errorf("SunDirection(%g, %g) = %+v, want (%g, %g, %g)", tt.lon, tt.lat, d, tt.x, tt.y, tt.z)
			}
			if l := d.Length(); gomath.Abs(float64(l-1)) > eps {
				t.Errorf("length = %g, want 1", l)
			}
		})
	}
}
