// Package anim addresses baked keyframe animation: every frame of every
// animation state is a precomputed slice of one shared geometry buffer.
package anim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTable    = errors.New("invalid keyframe table")
	ErrMissingKeyframe = errors.New("missing keyframe")
)

// Frame locates one baked frame relative to its state's block.
type Frame struct {
	VertexOffset int32  `yaml:"vertex_offset"`
	VertexCount  uint32 `yaml:"vertex_count"`
	IndexOffset  uint32 `yaml:"index_offset"`
	IndexCount   uint32 `yaml:"index_count"`
}

// State is one animation clip: a block of the shared buffers holding its
// frames back to back.
type State struct {
	Name    string `yaml:"name"`
	Looping bool   `yaml:"looping"`
	// FrameTime is the time in seconds each frame is shown.
	FrameTime float32 `yaml:"frame_time"`

	VertexBase      int32  `yaml:"vertex_base"`
	VertexBlockSize uint32 `yaml:"vertex_block_size"`
	IndexBase       uint32 `yaml:"index_base"`
	IndexBlockSize  uint32 `yaml:"index_block_size"`

	Frames []Frame `yaml:"frames"`
}

// Slice is the drawable range for one (state, frame) pair, already combined
// with the state's block base.
type Slice struct {
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

// Table is the keyframe address table of one baked mesh.
type Table struct {
	States []State `yaml:"states"`
}

// Validate checks that every state has frames, that frame offsets never
// decrease and stay within their block, and that no two state blocks alias.
func (t *Table) Validate() error {
	if len(t.States) == 0 {
		return fmt.Errorf("%w: no states", ErrInvalidTable)
	}

	for si, s := range t.States {
		if len(s.Frames) == 0 {
			return fmt.Errorf("%w: state %d (%s) has no frames", ErrInvalidTable, si, s.Name)
		}
		if s.FrameTime <= 0 {
			return fmt.Errorf("%w: state %d (%s) has non-positive frame time", ErrInvalidTable, si, s.Name)
		}
		if s.IndexBlockSize == 0 || s.VertexBlockSize == 0 {
			return fmt.Errorf("%w: state %d (%s) has an empty block", ErrInvalidTable, si, s.Name)
		}
		if s.VertexBase < 0 {
			return fmt.Errorf("%w: state %d (%s) has negative vertex base", ErrInvalidTable, si, s.Name)
		}

		for fi, f := range s.Frames {
			if f.VertexOffset < 0 {
				return fmt.Errorf("%w: state %s frame %d: negative vertex offset", ErrInvalidTable, s.Name, fi)
			}
			if uint64(f.IndexOffset)+uint64(f.IndexCount) > uint64(s.IndexBlockSize) {
				return fmt.Errorf("%w: state %s frame %d: indices [%d,%d) exceed block size %d",
					ErrInvalidTable, s.Name, fi, f.IndexOffset, f.IndexOffset+f.IndexCount, s.IndexBlockSize)
			}
			if uint64(f.VertexOffset)+uint64(f.VertexCount) > uint64(s.VertexBlockSize) {
				return fmt.Errorf("%w: state %s frame %d: vertices [%d,%d) exceed block size %d",
					ErrInvalidTable, s.Name, fi, f.VertexOffset, uint32(f.VertexOffset)+f.VertexCount, s.VertexBlockSize)
			}
			if fi > 0 {
				prev := s.Frames[fi-1]
				if f.IndexOffset < prev.IndexOffset || f.VertexOffset < prev.VertexOffset {
					return fmt.Errorf("%w: state %s frame %d: offsets decrease", ErrInvalidTable, s.Name, fi)
				}
			}
		}

		for oi := 0; oi < si; oi++ {
			o := t.States[oi]
			if overlaps(uint64(s.IndexBase), uint64(s.IndexBlockSize), uint64(o.IndexBase), uint64(o.IndexBlockSize)) {
				return fmt.Errorf("%w: index blocks of %s and %s overlap", ErrInvalidTable, o.Name, s.Name)
			}
			if overlaps(uint64(s.VertexBase), uint64(s.VertexBlockSize), uint64(o.VertexBase), uint64(o.VertexBlockSize)) {
				return fmt.Errorf("%w: vertex blocks of %s and %s overlap", ErrInvalidTable, o.Name, s.Name)
			}
		}
	}
	return nil
}

func overlaps(aStart, aLen, bStart, bLen uint64) bool {
	return aStart < bStart+bLen && bStart < aStart+aLen
}

// Resolve returns the drawable slice of a (state, frame) pair.
func (t *Table) Resolve(state, frame int) (Slice, error) {
	if state < 0 || state >= len(t.States) {
		return Slice{}, fmt.Errorf("%w: state %d of %d", ErrMissingKeyframe, state, len(t.States))
	}
	s := &t.States[state]
	if frame < 0 || frame >= len(s.Frames) {
		return Slice{}, fmt.Errorf("%w: state %s frame %d of %d", ErrMissingKeyframe, s.Name, frame, len(s.Frames))
	}
	f := s.Frames[frame]
	return Slice{
		IndexCount: f.IndexCount,
		StartIndex: s.IndexBase + f.IndexOffset,
		BaseVertex: s.VertexBase + f.VertexOffset,
	}, nil
}

// StateIndex returns the index of the named state, or -1.
func (t *Table) StateIndex(name string) int {
	for i := range t.States {
		if t.States[i].Name == name {
			return i
		}
	}
	return -1
}

// FrameCount returns the number of frames of a state, or 0 if it does not exist.
func (t *Table) FrameCount(state int) int {
	if state < 0 || state >= len(t.States) {
		return 0
	}
	return len(t.States[state].Frames)
}
