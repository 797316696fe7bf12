// Package scene holds the objects and materials to render. Objects are kept
// in insertion order, which is also the order of their per-frame writes.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

// Scene is an ordered collection of renderables and their materials.
type Scene struct {
	objects    []Renderable
	materials  []*Material
	byName     map[string]*Material
	geometries []gpu.Geometry
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{byName: make(map[string]*Material)}
}

// AddMaterial registers a material and assigns its slot.
func (s *Scene) AddMaterial(m *Material) error {
	if m.Name == "" {
		return errors.New("scene: material needs a name")
	}
	if _, ok := s.byName[m.Name]; ok {
		return fmt.Errorf("scene: duplicate material %q", m.Name)
	}
	m.Slot = len(s.materials)
	s.materials = append(s.materials, m)
	s.byName[m.Name] = m
	return nil
}

// Material returns the named material or nil.
func (s *Scene) Material(name string) *Material {
	return s.byName[name]
}

// Add appends a renderable and assigns its object slot. Its material must be
// registered with this scene.
func (s *Scene) Add(r Renderable) error {
	o := r.Base()
	if o.Material == nil {
		return fmt.Errorf("scene: object %q has no material", o.Name)
	}
	if s.byName[o.Material.Name] != o.Material {
		return fmt.Errorf("scene: object %q uses unregistered material %q", o.Name, o.Material.Name)
	}
	o.Slot = len(s.objects)
	s.objects = append(s.objects, r)
	return nil
}

// Own hands geometry to the scene so Release frees it.
func (s *Scene) Own(g gpu.Geometry) {
	s.geometries = append(s.geometries, g)
}

// Objects returns the renderables in insertion order.
func (s *Scene) Objects() []Renderable { return s.objects }

// Materials returns the materials in slot order.
func (s *Scene) Materials() []*Material { return s.materials }

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Release frees owned geometry.
func (s *Scene) Release() error {
	var err error
	for _, g := range s.geometries {
		err = multierr.Append(err, g.Release())
	}
	s.geometries = nil
	return err
}
