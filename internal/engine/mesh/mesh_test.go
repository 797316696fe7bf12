package mesh

import (
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/internal/engine/gpu/simgpu"
)

func TestBox(t *testing.T) {
	data := Box(2, 4, 6)
	if len(data.Vertices) != 24 {
		t.Errorf("vertices = %d, want 24", len(data.Vertices))
	}
	if len(data.Indices) != 36 {
		t.Errorf("indices = %d, want 36", len(data.Indices))
	}
	for i, idx := range data.Indices {
		if int(idx) >= len(data.Vertices) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}

	b := data.Bounds()
	if b.Extents.X != 1 || b.Extents.Y != 2 || b.Extents.Z != 3 {
		t.Errorf("extents = %+v, want {1 2 3}", b.Extents)
	}
	if b.Center.X != 0 || b.Center.Y != 0 || b.Center.Z != 0 {
		t.Errorf("center = %+v, want origin", b.Center)
	}
}

func TestEncodeVertices(t *testing.T) {
	v := []Vertex{{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.5, 0.25}}}
	out := EncodeVertices(v)
	if len(out) != VertexStride {
		t.Fatalf("encoded %d bytes, want %d", len(out), VertexStride)
	}
	read := func(i int) float32 {
		return gomath.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
	}
	if read(0) != 1 || read(2) != 3 || read(4) != 1 || read(7) != 0.25 {
		t.Errorf("unexpected encoding %v", out)
	}
}

func TestBakeSpinTable(t *testing.T) {
	base := Box(1, 1, 1)
	clips := []Clip{
		{Name: "idle", Looping: true, Frames: 4, FrameTime: 0.1, Turns: 1},
		{Name: "jump", Frames: 3, FrameTime: 0.05, Lift: 2},
	}
	data, table := BakeSpin(base, clips)

	if err := table.Validate(); err != nil {
		t.Fatalf("baked table invalid: %v", err)
	}
	if got, want := len(data.Vertices), 24*7; got != want {
		t.Errorf("vertices = %d, want %d", got, want)
	}
	if got, want := len(data.Indices), 36*7; got != want {
		t.Errorf("indices = %d, want %d", got, want)
	}

	tests := []struct {
		state, frame   int
		wantStart      uint32
		wantBaseVertex int32
	}{
		{0, 0, 0, 0},
		{0, 3, 3 * 36, 3 * 24},
		{1, 0, 4 * 36, 4 * 24},
		{1, 2, 6 * 36, 6 * 24},
	}
	for _, tt := range tests {
		s, err := table.Resolve(tt.state, tt.frame)
		if err != nil {
			t.Fatalf("Resolve(%d, %d): %v", tt.state, tt.frame, err)
		}
		if s.IndexCount != 36 || s.StartIndex != tt.wantStart || s.BaseVertex != tt.wantBaseVertex {
			t.Errorf("Resolve(%d, %d) = %+v, want start %d base %d",
				tt.state, tt.frame, s, tt.wantStart, tt.wantBaseVertex)
		}

		// Every index in the slice must land in the frame's own vertices.
		for _, idx := range data.Indices[s.StartIndex : s.StartIndex+s.IndexCount] {
			v := int(s.BaseVertex) + int(idx)
			if v < int(s.BaseVertex) || v >= int(s.BaseVertex)+24 {
				t.Fatalf("index %d escapes frame vertices", idx)
			}
		}
	}

	// The last jump frame is lifted.
	last := data.Vertices[6*24]
	if last.Position[1] < 1.4 {
		t.Errorf("last jump frame y = %v, want lifted by 2", last.Position[1])
	}
}

func TestNewStatic(t *testing.T) {
	dev := simgpu.New(simgpu.Config{})
	data := Box(1, 1, 1)
	m, err := NewStatic(dev, &data)
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	if m.IndexCount != 36 || m.Geometry.VertexCount() != 24 {
		t.Errorf("static mesh = %d indices, %d vertices", m.IndexCount, m.Geometry.VertexCount())
	}

	if _, err := NewStatic(dev, &Data{}); err == nil {
		t.Error("expected error for empty mesh")
	}
}

func TestNewBaked(t *testing.T) {
	dev := simgpu.New(simgpu.Config{})
	data, table := BakeSpin(Box(1, 1, 1), []Clip{{Name: "spin", Looping: true, Frames: 8, FrameTime: 0.1, Turns: 1}})

	m, err := NewBaked(dev, &data, table)
	if err != nil {
		t.Fatalf("NewBaked: %v", err)
	}
	if m.Geometry.IndexCount() != 36*8 {
		t.Errorf("index count = %d, want %d", m.Geometry.IndexCount(), 36*8)
	}

	// A table addressing past the uploaded data is rejected.
	short := Data{Vertices: data.Vertices[:24], Indices: data.Indices[:36]}
	if _, err := NewBaked(dev, &short, table); !errors.Is(err, anim.ErrInvalidTable) {
		t.Errorf("err = %v, want ErrInvalidTable", err)
	}
}
