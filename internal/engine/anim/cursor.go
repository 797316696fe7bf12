package anim

import (
	"fmt"
	gomath "math"
)

// Cursor tracks the playing state and frame of one object.
//
// A cursor advances every frame whether or not its object is drawn, so an
// object coming back into view continues in sequence.
type Cursor struct {
	table   *Table
	state   int
	frame   int
	elapsed float32
}

// NewCursor creates a cursor at frame 0 of the first state.
func NewCursor(t *Table) *Cursor {
	return &Cursor{table: t}
}

// State returns the current state index.
func (c *Cursor) State() int { return c.state }

// Frame returns the current frame index.
func (c *Cursor) Frame() int { return c.frame }

// Table returns the table the cursor reads from.
func (c *Cursor) Table() *Table { return c.table }

// SetState switches to a state and restarts it at frame 0. Switching to the
// state already playing keeps the current frame.
func (c *Cursor) SetState(state int) error {
	if state < 0 || state >= len(c.table.States) {
		return fmt.Errorf("%w: state %d of %d", ErrMissingKeyframe, state, len(c.table.States))
	}
	if state == c.state {
		return nil
	}
	c.state = state
	c.frame = 0
	c.elapsed = 0
	return nil
}

// SetStateByName switches to the named state.
func (c *Cursor) SetStateByName(name string) error {
	i := c.table.StateIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: no state named %q", ErrMissingKeyframe, name)
	}
	return c.SetState(i)
}

// Advance moves the cursor forward by dt seconds, stepping one frame per
// FrameTime of the current state. Whole loops of a looping state are dropped
// before stepping, so arbitrarily long deltas land on the right frame.
func (c *Cursor) Advance(dt float32) {
	if !(dt > 0) || gomath.IsInf(float64(dt), 1) {
		return
	}
	s := &c.table.States[c.state]
	count := len(s.Frames)
	if count == 0 {
		return
	}

	elapsed := float64(c.elapsed) + float64(dt)
	frameTime := float64(s.FrameTime)
	if s.Looping {
		elapsed = gomath.Mod(elapsed, float64(count)*frameTime)
	} else if elapsed >= float64(count)*frameTime {
		c.Step(count)
		return
	}
	rem := gomath.Mod(elapsed, frameTime)
	c.elapsed = float32(rem)
	c.Step(int(gomath.Round((elapsed - rem) / frameTime)))
}

// Step moves the cursor forward by n frames. Looping states wrap around;
// other states stop on their last frame.
func (c *Cursor) Step(n int) {
	if n <= 0 {
		return
	}
	count := len(c.table.States[c.state].Frames)
	if count == 0 {
		return
	}
	if c.table.States[c.state].Looping {
		c.frame = (c.frame + n) % count
		return
	}
	c.frame += n
	if c.frame >= count-1 {
		c.frame = count - 1
		c.elapsed = 0
	}
}

// Done reports whether a non-looping state has reached its last frame.
func (c *Cursor) Done() bool {
	s := &c.table.States[c.state]
	return !s.Looping && c.frame == len(s.Frames)-1
}

// Resolve returns the drawable slice for the current position.
func (c *Cursor) Resolve() (Slice, error) {
	return c.table.Resolve(c.state, c.frame)
}
