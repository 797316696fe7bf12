package renderer

import (
	"fmt"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/internal/engine/frame"
	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/scene"
)

// Submitter writes per-object and per-material constants into the active
// frame slot and records draws into its command list.
type Submitter struct {
	slot *frame.Slot
	cmd  gpu.CommandList

	objectWrites   int
	materialWrites int
	draws          int
}

// NewSubmitter binds a submitter to an acquired slot.
func NewSubmitter(slot *frame.Slot) *Submitter {
	return &Submitter{slot: slot, cmd: slot.Commands}
}

// WriteMaterial stores a material record at the material's slot.
func (s *Submitter) WriteMaterial(m *scene.Material) error {
	err := s.slot.Materials.CopyData(m.Slot, frame.MaterialConstants{
		DiffuseAlbedo:   m.DiffuseAlbedo,
		FresnelR0:       m.FresnelR0,
		Roughness:       m.Roughness,
		MatTransform:    m.Transform,
		DiffuseMapIndex: uint32(m.Texture),
	})
	if err != nil {
		return fmt.Errorf("writing material %q: %w", m.Name, err)
	}
	s.materialWrites++
	return nil
}

// WriteObject stores an object record at the object's slot.
func (s *Submitter) WriteObject(o *scene.Object) error {
	err := s.slot.Objects.CopyData(o.Slot, frame.ObjectConstants{
		World:         o.World,
		TexTransform:  o.TexTransform,
		MaterialIndex: uint32(o.Material.Slot),
	})
	if err != nil {
		return fmt.Errorf("writing object %q: %w", o.Name, err)
	}
	s.objectWrites++
	return nil
}

// Draw binds the object's constants, material and texture, then issues one
// indexed draw of slice.
func (s *Submitter) Draw(o *scene.Object, geo gpu.Geometry, slice anim.Slice) error {
	if o.Slot < 0 || o.Slot >= s.slot.Objects.Len() {
		return fmt.Errorf("drawing object %q: %w: slot %d", o.Name, frame.ErrIndexOutOfRange, o.Slot)
	}
	mat := o.Material
	if mat.Slot < 0 || mat.Slot >= s.slot.Materials.Len() {
		return fmt.Errorf("drawing object %q: %w: material slot %d", o.Name, frame.ErrIndexOutOfRange, mat.Slot)
	}

	s.cmd.SetGeometry(geo)
	s.cmd.SetConstantBuffer(gpu.RootObject, s.slot.Objects.Address(o.Slot), s.slot.Objects.Stride())
	s.cmd.SetConstantBuffer(gpu.RootMaterial, s.slot.Materials.Address(mat.Slot), s.slot.Materials.Stride())
	s.cmd.SetTexture(gpu.RootTexture, mat.Texture)
	s.cmd.DrawIndexedInstanced(slice.IndexCount, 1, slice.StartIndex, slice.BaseVertex, 0)
	s.draws++
	return nil
}
