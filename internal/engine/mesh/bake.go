package mesh

import (
	gomath "math"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/pkg/math"
)

// Box returns a box of the given size centered on the origin, with one quad
// per face so normals stay flat.
func Box(width, height, depth float32) Data {
	w, h, d := width/2, height/2, depth/2

	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, -1}, [4][3]float32{{-w, -h, -d}, {-w, h, -d}, {w, h, -d}, {w, -h, -d}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-w, -h, d}, {w, -h, d}, {w, h, d}, {-w, h, d}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-w, h, -d}, {-w, h, d}, {w, h, d}, {w, h, -d}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-w, -h, -d}, {w, -h, -d}, {w, -h, d}, {-w, -h, d}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-w, -h, d}, {-w, h, d}, {-w, h, -d}, {-w, -h, -d}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{w, -h, -d}, {w, h, -d}, {w, h, d}, {w, -h, d}}},
	}
	uvs := [4][2]float32{{0, 1}, {0, 0}, {1, 0}, {1, 1}}

	var data Data
	for _, f := range faces {
		base := uint32(len(data.Vertices))
		for i, c := range f.corners {
			data.Vertices = append(data.Vertices, Vertex{Position: c, Normal: f.normal, TexCoord: uvs[i]})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return data
}

// Clip describes one animation state produced by BakeSpin.
type Clip struct {
	Name    string
	Looping bool
	// Frames is the number of baked frames.
	Frames int
	// FrameTime is the seconds each frame is shown.
	FrameTime float32
	// Turns is the number of full revolutions about +Y across the clip.
	Turns float32
	// Lift is the vertical offset reached at the last frame.
	Lift float32
}

// BakeSpin bakes base into one block per clip, one rotated copy of base per
// frame, and returns the combined data with its keyframe table. Each frame's
// indices are relative to its own vertices.
func BakeSpin(base Data, clips []Clip) (Data, *anim.Table) {
	nv := uint32(len(base.Vertices))
	ni := uint32(len(base.Indices))

	var out Data
	table := &anim.Table{}

	for _, clip := range clips {
		state := anim.State{
			Name:            clip.Name,
			Looping:         clip.Looping,
			FrameTime:       clip.FrameTime,
			VertexBase:      int32(len(out.Vertices)),
			VertexBlockSize: nv * uint32(clip.Frames),
			IndexBase:       uint32(len(out.Indices)),
			IndexBlockSize:  ni * uint32(clip.Frames),
		}

		for f := 0; f < clip.Frames; f++ {
			t := float32(f) / float32(clip.Frames)
			angle := clip.Turns * 2 * gomath.Pi * t
			lift := float32(0)
			if clip.Frames > 1 {
				lift = clip.Lift * float32(f) / float32(clip.Frames-1)
			}
			m := math.Translate(0, lift, 0).Mul(math.RotateY(angle))

			for _, v := range base.Vertices {
				p := m.TransformPoint(v.Position)
				n := m.TransformDirection(v.Normal)
				out.Vertices = append(out.Vertices, Vertex{Position: p, Normal: n, TexCoord: v.TexCoord})
			}
			out.Indices = append(out.Indices, base.Indices...)

			state.Frames = append(state.Frames, anim.Frame{
				VertexOffset: int32(uint32(f) * nv),
				VertexCount:  nv,
				IndexOffset:  uint32(f) * ni,
				IndexCount:   ni,
			})
		}
		table.States = append(table.States, state)
	}
	return out, table
}
