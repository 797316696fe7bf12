package scene

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/mesh"
	"github.com/Faultbox/slash/internal/logger"
	"github.com/Faultbox/slash/pkg/math"
)

// ErrInvalidManifest is returned for a scene manifest that cannot be built.
var ErrInvalidManifest = errors.New("invalid scene manifest")

// Manifest describes a scene in YAML.
type Manifest struct {
	Materials []MaterialSpec `yaml:"materials"`
	Meshes    []MeshSpec     `yaml:"meshes"`
	Objects   []ObjectSpec   `yaml:"objects"`
}

// MaterialSpec describes one material.
type MaterialSpec struct {
	Name      string     `yaml:"name"`
	Albedo    [4]float32 `yaml:"albedo"`
	FresnelR0 [3]float32 `yaml:"fresnel_r0"`
	Roughness float32    `yaml:"roughness"`
	Texture   uint32     `yaml:"texture"`
	// UVScale scales the material transform.
	UVScale [2]float32 `yaml:"uv_scale"`
}

// MeshSpec describes one procedural mesh. Kind "box" is static; kind "spin"
// is baked from Clips. Table optionally replaces the baked keyframe table
// with one read from a file, relative to the manifest.
type MeshSpec struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind"`
	Size  [3]float32 `yaml:"size"`
	Clips []ClipSpec `yaml:"clips"`
	Table string     `yaml:"table"`
}

// ClipSpec describes one baked animation state.
type ClipSpec struct {
	Name      string  `yaml:"name"`
	Looping   bool    `yaml:"looping"`
	Frames    int     `yaml:"frames"`
	FrameTime float32 `yaml:"frame_time"`
	Turns     float32 `yaml:"turns"`
	Lift      float32 `yaml:"lift"`
}

// ObjectSpec places one mesh instance.
type ObjectSpec struct {
	Name     string     `yaml:"name"`
	Mesh     string     `yaml:"mesh"`
	Material string     `yaml:"material"`
	Position [3]float32 `yaml:"position"`
	// RotationY is in degrees.
	RotationY float32    `yaml:"rotation_y"`
	Scale     [3]float32 `yaml:"scale"`
	State     string     `yaml:"state"`
}

// ParseManifest decodes a manifest, rejecting unknown keys.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Load reads a manifest file and builds its scene on dev.
func Load(path string, dev gpu.Device) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	s, err := Build(context.Background(), m, filepath.Dir(path), dev)
	if err != nil {
		return nil, fmt.Errorf("building scene %s: %w", path, err)
	}
	return s, nil
}

type builtMesh struct {
	data  mesh.Data
	table *anim.Table
}

// Build creates the scene a manifest describes. Mesh data is generated and
// keyframe tables are read concurrently; uploads happen on the calling
// goroutine since some devices are bound to one thread.
func Build(ctx context.Context, m *Manifest, dir string, dev gpu.Device) (*Scene, error) {
	log := logger.Named("scene")

	built := make([]builtMesh, len(m.Meshes))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range m.Meshes {
		g.Go(func() error {
			b, err := bakeMesh(gctx, spec, dir)
			if err != nil {
				return fmt.Errorf("mesh %q: %w", spec.Name, err)
			}
			built[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := New()
	fail := func(err error) (*Scene, error) {
		return nil, multierr.Append(err, s.Release())
	}

	for _, ms := range m.Materials {
		mat := &Material{
			Name:          ms.Name,
			DiffuseAlbedo: ms.Albedo,
			FresnelR0:     math.Vec3{X: ms.FresnelR0[0], Y: ms.FresnelR0[1], Z: ms.FresnelR0[2]},
			Roughness:     ms.Roughness,
			Transform:     uvTransform(ms.UVScale),
			Texture:       gpu.TextureIndex(ms.Texture),
		}
		if err := s.AddMaterial(mat); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrInvalidManifest, err))
		}
	}

	statics := make(map[string]*mesh.Static)
	baked := make(map[string]*mesh.Baked)
	for i, spec := range m.Meshes {
		if _, dup := statics[spec.Name]; dup {
			return fail(fmt.Errorf("%w: duplicate mesh %q", ErrInvalidManifest, spec.Name))
		}
		if _, dup := baked[spec.Name]; dup {
			return fail(fmt.Errorf("%w: duplicate mesh %q", ErrInvalidManifest, spec.Name))
		}

		b := &built[i]
		if b.table == nil {
			sm, err := mesh.NewStatic(dev, &b.data)
			if err != nil {
				return fail(fmt.Errorf("mesh %q: %w", spec.Name, err))
			}
			s.Own(sm.Geometry)
			statics[spec.Name] = sm
			continue
		}
		bm, err := mesh.NewBaked(dev, &b.data, b.table)
		if err != nil {
			return fail(fmt.Errorf("mesh %q: %w", spec.Name, err))
		}
		s.Own(bm.Geometry)
		baked[spec.Name] = bm
	}

	for _, obj := range m.Objects {
		mat := s.Material(obj.Material)
		if mat == nil {
			return fail(fmt.Errorf("%w: object %q: unknown material %q", ErrInvalidManifest, obj.Name, obj.Material))
		}
		world := objectWorld(obj)

		var r Renderable
		switch {
		case statics[obj.Mesh] != nil:
			if obj.State != "" {
				return fail(fmt.Errorf("%w: object %q: static mesh %q has no states", ErrInvalidManifest, obj.Name, obj.Mesh))
			}
			r = NewStatic(obj.Name, statics[obj.Mesh], mat, world)
		case baked[obj.Mesh] != nil:
			a := NewAnimated(obj.Name, baked[obj.Mesh], mat, world)
			if obj.State != "" {
				if err := a.Cursor.SetStateByName(obj.State); err != nil {
					return fail(fmt.Errorf("object %q: %w", obj.Name, err))
				}
			}
			r = a
		default:
			return fail(fmt.Errorf("%w: object %q: unknown mesh %q", ErrInvalidManifest, obj.Name, obj.Mesh))
		}
		if err := s.Add(r); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrInvalidManifest, err))
		}
	}

	log.Info("scene built",
		zap.Int("materials", len(s.Materials())),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("objects", s.Len()),
	)
	return s, nil
}

func bakeMesh(ctx context.Context, spec MeshSpec, dir string) (builtMesh, error) {
	if err := ctx.Err(); err != nil {
		return builtMesh{}, err
	}
	size := spec.Size
	if size == ([3]float32{}) {
		size = [3]float32{1, 1, 1}
	}
	base := mesh.Box(size[0], size[1], size[2])

	switch spec.Kind {
	case "", "box":
		if len(spec.Clips) > 0 || spec.Table != "" {
			return builtMesh{}, fmt.Errorf("%w: static mesh with animation", ErrInvalidManifest)
		}
		return builtMesh{data: base}, nil
	case "spin":
		if len(spec.Clips) == 0 {
			return builtMesh{}, fmt.Errorf("%w: spin mesh without clips", ErrInvalidManifest)
		}
		clips := make([]mesh.Clip, len(spec.Clips))
		for i, c := range spec.Clips {
			if c.Frames < 1 {
				return builtMesh{}, fmt.Errorf("%w: clip %q has no frames", ErrInvalidManifest, c.Name)
			}
			clips[i] = mesh.Clip(c)
		}
		data, table := mesh.BakeSpin(base, clips)
		if spec.Table != "" {
			path := spec.Table
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			t, err := anim.LoadTable(path)
			if err != nil {
				return builtMesh{}, err
			}
			table = t
		}
		return builtMesh{data: data, table: table}, nil
	default:
		return builtMesh{}, fmt.Errorf("%w: unknown mesh kind %q", ErrInvalidManifest, spec.Kind)
	}
}

func objectWorld(obj ObjectSpec) math.Mat4 {
	scale := obj.Scale
	if scale == ([3]float32{}) {
		scale = [3]float32{1, 1, 1}
	}
	angle := obj.RotationY * gomath.Pi / 180
	return math.Translate(obj.Position[0], obj.Position[1], obj.Position[2]).
		Mul(math.RotateY(angle)).
		Mul(math.Scale(scale[0], scale[1], scale[2]))
}

func uvTransform(scale [2]float32) math.Mat4 {
	if scale == ([2]float32{}) {
		return math.Identity()
	}
	return math.Scale(scale[0], scale[1], 1)
}
