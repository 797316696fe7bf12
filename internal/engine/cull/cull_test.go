package cull

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/slash/pkg/bounds"
	"github.com/Faultbox/slash/pkg/math"
)

func newFrustum(t *testing.T) bounds.Frustum {
	t.Helper()
	f, err := bounds.NewFrustumFromProjection(math.Perspective(gomath.Pi/4, 16.0/9.0, 1, 1000))
	if err != nil {
		t.Fatalf("frustum: %v", err)
	}
	return f
}

func unitBox() bounds.OrientedBox {
	return bounds.NewBox(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
}

func TestCullerVisibility(t *testing.T) {
	// Camera at z=20 looking down -Z toward the origin.
	view := math.LookAt(math.Vec3{Z: 20}, math.Vec3{}, math.Vec3{Y: 1})

	tests := []struct {
		name  string
		world math.Mat4
		want  bool
	}{
		{"at origin", math.Identity(), true},
		{"scaled up at origin", math.Scale(3, 3, 3), true},
		{"behind camera", math.Translate(0, 0, 40), false},
		{"far along +X", math.Translate(500, 0, 0), false},
		{"rotated and shifted inside", math.Translate(2, 1, -5).Mul(math.RotateY(1)), true},
		{"beyond far plane", math.Translate(0, 0, -2000), false},
		{"tiny scale at origin", math.Scale(1e-4, 1e-4, 1e-4), true},
		{"tiny scale behind camera", math.Translate(0, 0, 40).Mul(math.Scale(1e-4, 1e-4, 1e-4)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			if err := c.Begin(view, newFrustum(t)); err != nil {
				t.Fatalf("Begin: %v", err)
			}
			got, err := c.Test(tt.world, unitBox())
			if err != nil {
				t.Fatalf("Test: %v", err)
			}
			if got != tt.want {
				t.Errorf("Test() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCullerDisabledAlwaysVisible(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 20}, math.Vec3{}, math.Vec3{Y: 1})
	c := New()
	c.Enabled = false
	if err := c.Begin(view, newFrustum(t)); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	worlds := []math.Mat4{
		math.Translate(0, 0, 40),
		math.Translate(500, 0, 0),
		// Singular: the test must be skipped, so no error either.
		math.Scale(0, 0, 0),
	}
	for i, w := range worlds {
		got, err := c.Test(w, unitBox())
		if err != nil {
			t.Errorf("world %d: unexpected error %v", i, err)
		}
		if !got {
			t.Errorf("world %d: expected visible with culling disabled", i)
		}
	}

	if s := c.Stats(); s.Visible != len(worlds) || s.Culled != 0 {
		t.Errorf("stats = %+v, want all visible", s)
	}
}

func TestCullerDegenerateWorld(t *testing.T) {
	c := New()
	if err := c.Begin(math.Identity(), newFrustum(t)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := c.Test(math.Scale(1, 0, 1), unitBox()); err != ErrDegenerateTransform {
		t.Errorf("expected ErrDegenerateTransform, got %v", err)
	}
}

func TestCullerDegenerateView(t *testing.T) {
	c := New()
	if err := c.Begin(math.Mat4{}, newFrustum(t)); err != ErrDegenerateTransform {
		t.Errorf("expected ErrDegenerateTransform, got %v", err)
	}
}

func TestCullerStats(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 20}, math.Vec3{}, math.Vec3{Y: 1})
	c := New()
	if err := c.Begin(view, newFrustum(t)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c.Test(math.Identity(), unitBox())
	c.Test(math.Translate(500, 0, 0), unitBox())
	c.Test(math.Translate(0, 0, 40), unitBox())

	want := Stats{Tested: 3, Visible: 1, Culled: 2}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	// Begin resets the counters.
	c.Begin(view, newFrustum(t))
	if got := c.Stats(); got != (Stats{}) {
		t.Errorf("Stats() after Begin = %+v, want zero", got)
	}
}
