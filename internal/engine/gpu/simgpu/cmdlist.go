package simgpu

import (
	"errors"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

// Op identifies a recorded command.
type Op int

const (
	OpBarrier Op = iota
	OpClear
	OpSetPipeline
	OpSetGeometry
	OpSetConstantBuffer
	OpSetTexture
	OpDraw
)

// Command is one recorded call.
type Command struct {
	Op       Op
	Pipeline gpu.Pipeline
	Geometry gpu.Geometry
	Slot     gpu.RootSlot
	Address  uint64
	Size     int
	Texture  gpu.TextureIndex
	From, To gpu.ResourceState
	Color    [4]float32
	Draw     Draw
}

// Draw holds the arguments of an indexed instanced draw.
type Draw struct {
	IndexCount    uint32
	InstanceCount uint32
	StartIndex    uint32
	BaseVertex    int32
	StartInstance uint32
}

var errClosed = errors.New("simgpu: command list is closed")

// CommandList records commands for inspection.
type CommandList struct {
	commands []Command
	closed   bool
	resets   int
}

// Reset clears the list and opens it for recording.
func (l *CommandList) Reset(p gpu.Pipeline) error {
	if !l.closed {
		return errors.New("simgpu: resetting an open command list")
	}
	l.commands = l.commands[:0]
	l.closed = false
	l.resets++
	if p != nil {
		l.SetPipeline(p)
	}
	return nil
}

// Resets returns how many times the list was reset.
func (l *CommandList) Resets() int { return l.resets }

// Commands returns the commands recorded since the last reset.
func (l *CommandList) Commands() []Command { return l.commands }

func (l *CommandList) record(c Command) {
	if l.closed {
		panic(errClosed)
	}
	l.commands = append(l.commands, c)
}

// Barrier records a back buffer transition.
func (l *CommandList) Barrier(from, to gpu.ResourceState) {
	l.record(Command{Op: OpBarrier, From: from, To: to})
}

// Clear records a render target clear.
func (l *CommandList) Clear(color [4]float32) {
	l.record(Command{Op: OpClear, Color: color})
}

// SetPipeline records a pipeline bind.
func (l *CommandList) SetPipeline(p gpu.Pipeline) {
	l.record(Command{Op: OpSetPipeline, Pipeline: p})
}

// SetGeometry records a vertex/index buffer bind.
func (l *CommandList) SetGeometry(g gpu.Geometry) {
	l.record(Command{Op: OpSetGeometry, Geometry: g})
}

// SetConstantBuffer records a constant buffer view bind.
func (l *CommandList) SetConstantBuffer(slot gpu.RootSlot, address uint64, size int) {
	l.record(Command{Op: OpSetConstantBuffer, Slot: slot, Address: address, Size: size})
}

// SetTexture records a texture descriptor bind.
func (l *CommandList) SetTexture(slot gpu.RootSlot, tex gpu.TextureIndex) {
	l.record(Command{Op: OpSetTexture, Slot: slot, Texture: tex})
}

// DrawIndexedInstanced records a draw.
func (l *CommandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	l.record(Command{Op: OpDraw, Draw: Draw{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		StartIndex:    startIndex,
		BaseVertex:    baseVertex,
		StartInstance: startInstance,
	}})
}

// Close ends recording.
func (l *CommandList) Close() error {
	if l.closed {
		return errClosed
	}
	l.closed = true
	return nil
}

// Draws returns the draws of a command sequence.
func Draws(cmds []Command) []Draw {
	var out []Draw
	for _, c := range cmds {
		if c.Op == OpDraw {
			out = append(out, c.Draw)
		}
	}
	return out
}
