package scene

import (
	"context"
	"fmt"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

// Demo returns the manifest of the built-in scene: a ground slab and a grid
// of rows x cols pillars, alternating between static crates and spinning
// baked boxes.
func Demo(rows, cols int) *Manifest {
	m := &Manifest{
		Materials: []MaterialSpec{
			{Name: "tile", Albedo: [4]float32{0.9, 0.9, 0.9, 1}, FresnelR0: [3]float32{0.02, 0.02, 0.02}, Roughness: 0.2, Texture: 0, UVScale: [2]float32{8, 8}},
			{Name: "brick", Albedo: [4]float32{1, 1, 1, 1}, FresnelR0: [3]float32{0.02, 0.02, 0.02}, Roughness: 0.1, Texture: 1},
			{Name: "stone", Albedo: [4]float32{1, 1, 1, 1}, FresnelR0: [3]float32{0.05, 0.05, 0.05}, Roughness: 0.3, Texture: 2},
		},
		Meshes: []MeshSpec{
			{Name: "ground", Kind: "box", Size: [3]float32{float32(cols) * 6, 0.2, float32(rows) * 6}},
			{Name: "crate", Kind: "box", Size: [3]float32{1.5, 1.5, 1.5}},
			{Name: "spinner", Kind: "spin", Size: [3]float32{1, 2, 1}, Clips: []ClipSpec{
				{Name: "idle", Looping: true, Frames: 24, FrameTime: 1.0 / 24, Turns: 1},
				{Name: "hop", Looping: false, Frames: 12, FrameTime: 1.0 / 24, Turns: 0.5, Lift: 1.5},
			}},
		},
	}

	m.Objects = append(m.Objects, ObjectSpec{Name: "ground", Mesh: "ground", Material: "tile", Position: [3]float32{0, -0.1, 0}})

	x0 := -float32(cols-1) * 3
	z0 := -float32(rows-1) * 3
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			obj := ObjectSpec{
				Name:      fmt.Sprintf("pillar-%d-%d", r, c),
				Position:  [3]float32{x0 + float32(c)*6, 1, z0 + float32(r)*6},
				RotationY: float32((r*cols + c) * 15 % 360),
			}
			if (r+c)%2 == 0 {
				obj.Mesh, obj.Material = "spinner", "stone"
			} else {
				obj.Mesh, obj.Material = "crate", "brick"
			}
			m.Objects = append(m.Objects, obj)
		}
	}
	return m
}

// BuildDemo builds the built-in scene.
func BuildDemo(ctx context.Context, rows, cols int, dev gpu.Device) (*Scene, error) {
	return Build(ctx, Demo(rows, cols), "", dev)
}
