package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/slash/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestNewCamera(t *testing.T) {
	c := New()
	if c.Look() != (math.Vec3{Z: -1}) {
		t.Errorf("look = %+v, want -Z", c.Look())
	}
	f := c.Frustum()
	// Near plane corners sit at z = -1 in view space.
	if !near(f.Corners[0].Z, -1) {
		t.Errorf("near corner z = %v, want -1", f.Corners[0].Z)
	}
}

func TestSetLensRejectsInvalid(t *testing.T) {
	tests := []struct {
		name                     string
		fov, aspect, nearZ, farZ float32
	}{
		{"zero fov", 0, 1, 1, 10},
		{"zero aspect", 1, 0, 1, 10},
		{"zero near", 1, 1, 0, 10},
		{"far before near", 1, 1, 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			before := c.Frustum()
			if err := c.SetLens(tt.fov, tt.aspect, tt.nearZ, tt.farZ); err == nil {
				t.Fatal("expected error")
			}
			if c.Frustum() != before {
				t.Error("frustum changed after rejected lens")
			}
		})
	}
}

func TestMovingDoesNotChangeFrustum(t *testing.T) {
	c := New()
	before := c.Frustum()
	c.Walk(10)
	c.Strafe(-3)
	c.RotateY(0.7)
	c.Pitch(0.2)
	_ = c.View()
	if c.Frustum() != before {
		t.Error("view-space frustum changed without a lens change")
	}
}

func TestWalkAndStrafe(t *testing.T) {
	c := New()
	c.Walk(5)
	if p := c.Position(); !near(p.Z, -5) {
		t.Errorf("after walk z = %v, want -5", p.Z)
	}
	c.Strafe(2)
	if p := c.Position(); !near(p.X, 2) {
		t.Errorf("after strafe x = %v, want 2", p.X)
	}
}

func TestRotateY(t *testing.T) {
	c := New()
	c.RotateY(gomath.Pi / 2)
	l := c.Look()
	// Turning left by 90 degrees about +Y maps -Z to -X.
	if !near(l.X, -1) || !near(l.Z, 0) {
		t.Errorf("look after turn = %+v, want -X", l)
	}
	if !near(c.Right().Dot(l), 0) || !near(c.Up().Dot(l), 0) {
		t.Error("basis lost orthogonality")
	}
}

func TestPitchIsClamped(t *testing.T) {
	c := New()
	c.MaxPitch = 1
	c.Pitch(3)
	if got := float32(gomath.Asin(float64(c.Look().Y))); got > 1.0001 {
		t.Errorf("pitch = %v, want at most 1", got)
	}
}

func TestViewTransformsPositionToOrigin(t *testing.T) {
	c := New()
	c.LookAt(math.Vec3{X: 3, Y: 4, Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	p := c.View().TransformVec3(c.Position())
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, 0) {
		t.Errorf("eye in view space = %+v, want origin", p)
	}

	// The target lies straight ahead.
	target := c.View().TransformVec3(math.Vec3{})
	if !near(target.X, 0) || !near(target.Y, 0) || target.Z >= 0 {
		t.Errorf("target in view space = %+v, want on -Z", target)
	}
}

func TestSetAspect(t *testing.T) {
	c := New()
	if err := c.SetAspect(2); err != nil {
		t.Fatalf("SetAspect: %v", err)
	}
	if c.Aspect() != 2 {
		t.Errorf("aspect = %v, want 2", c.Aspect())
	}
	// Wider lens: a point off to the side becomes visible.
	p := math.Vec3{X: 6, Z: -10}
	if !c.Frustum().ContainsPoint(p) {
		t.Error("expected point inside widened frustum")
	}
	if err := c.SetAspect(1); err != nil {
		t.Fatal(err)
	}
	if c.Frustum().ContainsPoint(p) {
		t.Error("expected point outside square frustum")
	}
}
