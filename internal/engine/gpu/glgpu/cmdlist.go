package glgpu

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

var errClosed = errors.New("glgpu: command list is closed")

// CommandList records GL calls for replay on Submit.
type CommandList struct {
	device *Device
	ops    []func()
	closed bool
}

// Reset clears the list and opens it for recording.
func (l *CommandList) Reset(p gpu.Pipeline) error {
	if !l.closed {
		return errors.New("glgpu: resetting an open command list")
	}
	l.ops = l.ops[:0]
	l.closed = false
	if p != nil {
		l.SetPipeline(p)
	}
	return nil
}

func (l *CommandList) record(op func()) {
	if l.closed {
		panic(errClosed)
	}
	l.ops = append(l.ops, op)
}

// Barrier binds the default framebuffer when it becomes a render target.
// Presenting is the window's buffer swap.
func (l *CommandList) Barrier(from, to gpu.ResourceState) {
	if to != gpu.StateRenderTarget {
		return
	}
	l.record(func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	})
}

// Clear records a color and depth clear.
func (l *CommandList) Clear(color [4]float32) {
	l.record(func() {
		gl.ClearColor(color[0], color[1], color[2], color[3])
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	})
}

// SetPipeline records a program bind. Pipelines from other devices are ignored.
func (l *CommandList) SetPipeline(p gpu.Pipeline) {
	pl, ok := p.(*Pipeline)
	if !ok {
		return
	}
	l.record(func() {
		gl.UseProgram(pl.program)
	})
}

// SetGeometry records a vertex array bind.
func (l *CommandList) SetGeometry(g gpu.Geometry) {
	geo, ok := g.(*Geometry)
	if !ok {
		return
	}
	l.record(func() {
		gl.BindVertexArray(geo.vao)
	})
}

// SetConstantBuffer records a uniform buffer range bind.
func (l *CommandList) SetConstantBuffer(slot gpu.RootSlot, address uint64, size int) {
	binding, ok := blockBindings[slot]
	if !ok {
		return
	}
	name := uint32(address >> 32)
	offset := int(address & 0xffffffff)
	l.record(func() {
		gl.BindBufferRange(gl.UNIFORM_BUFFER, binding, name, offset, size)
	})
}

// SetTexture records a texture bind on unit 0.
func (l *CommandList) SetTexture(slot gpu.RootSlot, tex gpu.TextureIndex) {
	name := l.device.texture(tex)
	l.record(func() {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, name)
	})
}

// DrawIndexedInstanced records an indexed draw. OpenGL 4.1 has no base
// instance, so startInstance must be 0.
func (l *CommandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	l.record(func() {
		gl.DrawElementsInstancedBaseVertex(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT,
			gl.PtrOffset(int(startIndex)*4), int32(instanceCount), baseVertex)
	})
}

// Close ends recording.
func (l *CommandList) Close() error {
	if l.closed {
		return errClosed
	}
	l.closed = true
	return nil
}
