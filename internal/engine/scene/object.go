package scene

import (
	"fmt"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/internal/engine/cull"
	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/mesh"
	"github.com/Faultbox/slash/pkg/bounds"
	"github.com/Faultbox/slash/pkg/math"
)

// Material holds surface parameters. Slot is its stable index in every frame
// slot's material array and is assigned by Scene.AddMaterial.
type Material struct {
	Name          string
	Slot          int
	DiffuseAlbedo [4]float32
	FresnelR0     math.Vec3
	Roughness     float32
	Transform     math.Mat4
	Texture       gpu.TextureIndex
}

// Object is the state shared by every renderable kind. Slot is its stable
// index in every frame slot's object array and is assigned by Scene.Add.
type Object struct {
	Name         string
	Slot         int
	World        math.Mat4
	TexTransform math.Mat4
	// Bounds is expressed in the object's unscaled local space.
	Bounds   bounds.OrientedBox
	Material *Material
	Visible  bool
}

// Base returns the object itself.
func (o *Object) Base() *Object { return o }

// FrameContext carries per-frame inputs into Update.
type FrameContext struct {
	DeltaTime float32
	// Culler decides visibility. A nil culler makes every object visible.
	Culler *cull.Culler
}

// Submitter receives the constants and draws of visible objects.
type Submitter interface {
	WriteObject(o *Object) error
	Draw(o *Object, geo gpu.Geometry, slice anim.Slice) error
}

// Renderable is one drawable kind. Update runs for every object every frame
// and reports visibility; Render runs only for visible objects.
type Renderable interface {
	Base() *Object
	Update(fc *FrameContext) (bool, error)
	Render(s Submitter) error
}

func (o *Object) testVisibility(fc *FrameContext) (bool, error) {
	visible := true
	if fc.Culler != nil {
		var err error
		if visible, err = fc.Culler.Test(o.World, o.Bounds); err != nil {
			return false, err
		}
	}
	o.Visible = visible
	return visible, nil
}

// StaticObject draws a fixed range of a static mesh.
type StaticObject struct {
	Object
	Mesh *mesh.Static
}

// NewStatic creates a static object using the mesh's bounds.
func NewStatic(name string, m *mesh.Static, mat *Material, world math.Mat4) *StaticObject {
	return &StaticObject{
		Object: Object{
			Name:         name,
			World:        world,
			TexTransform: math.Identity(),
			Bounds:       m.Bounds,
			Material:     mat,
		},
		Mesh: m,
	}
}

// Update runs the visibility test.
func (s *StaticObject) Update(fc *FrameContext) (bool, error) {
	return s.testVisibility(fc)
}

// Render writes the object constants and draws the mesh.
func (s *StaticObject) Render(sub Submitter) error {
	if err := sub.WriteObject(&s.Object); err != nil {
		return err
	}
	return sub.Draw(&s.Object, s.Mesh.Geometry, anim.Slice{
		IndexCount: s.Mesh.IndexCount,
		StartIndex: s.Mesh.StartIndex,
		BaseVertex: s.Mesh.BaseVertex,
	})
}

// AnimatedObject draws the current keyframe of a baked mesh.
type AnimatedObject struct {
	Object
	Mesh   *mesh.Baked
	Cursor *anim.Cursor
}

// NewAnimated creates an animated object at frame 0 of its first state.
func NewAnimated(name string, m *mesh.Baked, mat *Material, world math.Mat4) *AnimatedObject {
	return &AnimatedObject{
		Object: Object{
			Name:         name,
			World:        world,
			TexTransform: math.Identity(),
			Bounds:       m.Bounds,
			Material:     mat,
		},
		Mesh:   m,
		Cursor: anim.NewCursor(m.Table),
	}
}

// Update advances the animation, then runs the visibility test. The cursor
// advances even when the object ends up culled.
func (a *AnimatedObject) Update(fc *FrameContext) (bool, error) {
	a.Cursor.Advance(fc.DeltaTime)
	return a.testVisibility(fc)
}

// Render writes the object constants and draws the current keyframe.
func (a *AnimatedObject) Render(sub Submitter) error {
	slice, err := a.Cursor.Resolve()
	if err != nil {
		return fmt.Errorf("resolving keyframe: %w", err)
	}
	if err := sub.WriteObject(&a.Object); err != nil {
		return err
	}
	return sub.Draw(&a.Object, a.Mesh.Geometry, slice)
}
