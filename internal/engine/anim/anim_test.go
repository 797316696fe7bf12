package anim

import (
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"testing"
)

// testTable has a looping "walk" state of 4 frames and a one-shot "attack"
// state of 3 frames placed after it in the shared buffers.
func testTable() *Table {
	return &Table{States: []State{
		{
			Name:            "walk",
			Looping:         true,
			FrameTime:       0.1,
			VertexBase:      0,
			VertexBlockSize: 96,
			IndexBase:       0,
			IndexBlockSize:  144,
			Frames: []Frame{
				{VertexOffset: 0, VertexCount: 24, IndexOffset: 0, IndexCount: 36},
				{VertexOffset: 24, VertexCount: 24, IndexOffset: 36, IndexCount: 36},
				{VertexOffset: 48, VertexCount: 24, IndexOffset: 72, IndexCount: 36},
				{VertexOffset: 72, VertexCount: 24, IndexOffset: 108, IndexCount: 36},
			},
		},
		{
			Name:            "attack",
			Looping:         false,
			FrameTime:       0.05,
			VertexBase:      96,
			VertexBlockSize: 72,
			IndexBase:       144,
			IndexBlockSize:  108,
			Frames: []Frame{
				{VertexOffset: 0, VertexCount: 24, IndexOffset: 0, IndexCount: 36},
				{VertexOffset: 24, VertexCount: 24, IndexOffset: 36, IndexCount: 36},
				{VertexOffset: 48, VertexCount: 24, IndexOffset: 72, IndexCount: 36},
			},
		},
	}}
}

func TestValidateAcceptsWellFormedTable(t *testing.T) {
	if err := testTable().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Table)
	}{
		{"no states", func(tb *Table) { tb.States = nil }},
		{"no frames", func(tb *Table) { tb.States[0].Frames = nil }},
		{"zero frame time", func(tb *Table) { tb.States[1].FrameTime = 0 }},
		{"index past block", func(tb *Table) { tb.States[0].Frames[3].IndexCount = 37 }},
		{"vertex past block", func(tb *Table) { tb.States[1].Frames[2].VertexCount = 25 }},
		{"decreasing offsets", func(tb *Table) {
			tb.States[0].Frames[2].IndexOffset = 10
		}},
		{"aliased index blocks", func(tb *Table) { tb.States[1].IndexBase = 100 }},
		{"aliased vertex blocks", func(tb *Table) { tb.States[1].VertexBase = 95 }},
		{"empty block", func(tb *Table) { tb.States[0].IndexBlockSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := testTable()
			tt.mutate(tb)
			if err := tb.Validate(); !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestResolveAddsStateBase(t *testing.T) {
	tb := testTable()

	got, err := tb.Resolve(1, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Slice{IndexCount: 36, StartIndex: 144 + 72, BaseVertex: 96 + 48}
	if got != want {
		t.Errorf("Resolve(1, 2) = %+v, want %+v", got, want)
	}
}

func TestResolveStaysInsideBlock(t *testing.T) {
	tb := testTable()
	for si, s := range tb.States {
		for fi := range s.Frames {
			sl, err := tb.Resolve(si, fi)
			if err != nil {
				t.Fatalf("Resolve(%d, %d): %v", si, fi, err)
			}
			if sl.StartIndex < s.IndexBase || sl.StartIndex+sl.IndexCount > s.IndexBase+s.IndexBlockSize {
				t.Errorf("state %s frame %d: indices [%d,%d) outside block [%d,%d)",
					s.Name, fi, sl.StartIndex, sl.StartIndex+sl.IndexCount, s.IndexBase, s.IndexBase+s.IndexBlockSize)
			}
		}
	}
}

func TestResolveMissing(t *testing.T) {
	tb := testTable()
	for _, c := range [][2]int{{2, 0}, {-1, 0}, {0, 4}, {1, -1}} {
		if _, err := tb.Resolve(c[0], c[1]); !errors.Is(err, ErrMissingKeyframe) {
			t.Errorf("Resolve(%d, %d): expected ErrMissingKeyframe, got %v", c[0], c[1], err)
		}
	}
}

func TestCursorLoops(t *testing.T) {
	c := NewCursor(testTable())

	var frames []int
	for i := 0; i < 6; i++ {
		c.Step(1)
		frames = append(frames, c.Frame())
	}

	want := []int{1, 2, 3, 0, 1, 2}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("looping frames = %v, want %v", frames, want)
		}
	}
}

func TestCursorClampsNonLooping(t *testing.T) {
	c := NewCursor(testTable())
	if err := c.SetStateByName("attack"); err != nil {
		t.Fatalf("SetStateByName: %v", err)
	}

	c.Step(2)
	if c.Frame() != 2 || !c.Done() {
		t.Fatalf("expected last frame 2 and done, got frame %d done %v", c.Frame(), c.Done())
	}

	// One more advance stays on the last frame.
	c.Advance(0.05)
	if c.Frame() != 2 {
		t.Errorf("frame after advancing past end = %d, want 2", c.Frame())
	}

	c.Step(10)
	if c.Frame() != 2 {
		t.Errorf("frame after large step = %d, want 2", c.Frame())
	}
}

func TestCursorAdvanceByTime(t *testing.T) {
	c := NewCursor(testTable())

	// Less than one frame time: no step.
	c.Advance(0.04)
	if c.Frame() != 0 {
		t.Fatalf("frame after 0.04s = %d, want 0", c.Frame())
	}

	// Accumulated time crosses one frame.
	c.Advance(0.07)
	if c.Frame() != 1 {
		t.Fatalf("frame after 0.11s = %d, want 1", c.Frame())
	}

	// A long delta covers several frames and wraps.
	c.Advance(0.3)
	if c.Frame() != 0 {
		t.Errorf("frame after 0.41s = %d, want 0", c.Frame())
	}

	c.Advance(0)
	c.Advance(-1)
	if c.Frame() != 0 {
		t.Errorf("non-positive delta should not move the cursor, frame %d", c.Frame())
	}
}

func TestCursorAdvanceHugeDelta(t *testing.T) {
	tests := []struct {
		name  string
		state string
		dt    float32
		want  int
	}{
		{"looping 1e30", "walk", 1e30, -1},
		{"looping one period plus a frame", "walk", 0.51, 1},
		{"one-shot 1e30", "attack", 1e30, 2},
		{"infinite delta ignored", "walk", float32(gomath.Inf(1)), 0},
		{"NaN delta ignored", "walk", float32(gomath.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(testTable())
			if err := c.SetStateByName(tt.state); err != nil {
				t.Fatalf("SetStateByName: %v", err)
			}
			c.Advance(tt.dt)

			count := c.Table().FrameCount(c.State())
			if c.Frame() < 0 || c.Frame() >= count {
				t.Fatalf("frame %d out of range [0,%d)", c.Frame(), count)
			}
			if tt.want >= 0 && c.Frame() != tt.want {
				t.Errorf("frame = %d, want %d", c.Frame(), tt.want)
			}

			// The cursor keeps stepping normally afterwards.
			before := c.Frame()
			c.Advance(0.1)
			if tt.state == "walk" && c.Frame() == before {
				t.Errorf("cursor stuck on frame %d after a huge delta", before)
			}
		})
	}
}

func TestCursorSetState(t *testing.T) {
	c := NewCursor(testTable())
	c.Step(2)

	// Same state keeps the frame.
	if err := c.SetState(0); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if c.Frame() != 2 {
		t.Errorf("frame after SetState(same) = %d, want 2", c.Frame())
	}

	if err := c.SetState(1); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if c.State() != 1 || c.Frame() != 0 {
		t.Errorf("after SetState(1): state %d frame %d, want 1 0", c.State(), c.Frame())
	}

	if err := c.SetState(5); !errors.Is(err, ErrMissingKeyframe) {
		t.Errorf("expected ErrMissingKeyframe, got %v", err)
	}
	if err := c.SetStateByName("fly"); !errors.Is(err, ErrMissingKeyframe) {
		t.Errorf("expected ErrMissingKeyframe, got %v", err)
	}
}

func TestCursorResolve(t *testing.T) {
	c := NewCursor(testTable())
	c.SetState(1)
	c.Step(1)

	got, err := c.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Slice{IndexCount: 36, StartIndex: 144 + 36, BaseVertex: 96 + 24}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestParseTableRoundTrip(t *testing.T) {
	data, err := testTable().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tb, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if len(tb.States) != 2 || tb.States[1].Name != "attack" || tb.States[1].Looping {
		t.Errorf("unexpected states after load: %+v", tb.States)
	}
}

func TestParseTableRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "states:\n  - name: idle\n    speed: 3\n"},
		{"invalid table", "states:\n  - name: idle\n    frame_time: 0.1\n"},
		{"not yaml", "states: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable([]byte(tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable("/nonexistent/table.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
