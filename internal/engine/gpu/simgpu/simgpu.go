// Package simgpu is an in-process stand-in for a GPU. It keeps buffer
// contents in memory, records command lists, and drives a fence timeline
// that completes instantly, after a latency, or under test control.
package simgpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

const baseAddress = 0x10000000

var errReleased = errors.New("simgpu: resource already released")

// Config holds simulated device settings.
type Config struct {
	// MemoryLimit caps upload buffer bytes; 0 means unlimited.
	MemoryLimit int
	FenceMode   FenceMode
	Latency     time.Duration
}

// Device is a simulated gpu.Device.
type Device struct {
	config Config
	fence  *Fence

	mu        sync.Mutex
	allocated int
	nextAddr  uint64
	submitted []Submission
}

// Submission is a snapshot of one submitted command list.
type Submission struct {
	List     *CommandList
	Commands []Command
}

// New creates a simulated device.
func New(cfg Config) *Device {
	return &Device{
		config:   cfg,
		fence:    newFence(cfg.FenceMode, cfg.Latency),
		nextAddr: baseAddress,
	}
}

// Fence returns the device timeline.
func (d *Device) Fence() gpu.Fence { return d.fence }

// SimFence returns the timeline with its test controls.
func (d *Device) SimFence() *Fence { return d.fence }

// Allocated returns the bytes held by live upload buffers.
func (d *Device) Allocated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocated
}

// Submissions returns the command lists submitted so far.
func (d *Device) Submissions() []Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Submission, len(d.submitted))
	copy(out, d.submitted)
	return out
}

// NewUploadBuffer allocates size bytes of GPU-visible memory.
func (d *Device) NewUploadBuffer(size int) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("simgpu: invalid buffer size %d", size)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.config.MemoryLimit > 0 && d.allocated+size > d.config.MemoryLimit {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			gpu.ErrOutOfMemory, size, d.allocated, d.config.MemoryLimit)
	}
	d.allocated += size

	b := &Buffer{
		device:  d,
		data:    make([]byte, size),
		address: d.nextAddr,
	}
	d.nextAddr += uint64(gpu.AlignConstantSize(size))
	return b, nil
}

// NewGeometry records vertex and index counts of uploaded geometry.
func (d *Device) NewGeometry(vertices []byte, stride int, indices []uint32) (gpu.Geometry, error) {
	if stride <= 0 || len(vertices)%stride != 0 {
		return nil, fmt.Errorf("simgpu: vertex data of %d bytes is not a multiple of stride %d", len(vertices), stride)
	}
	return &Geometry{vertices: len(vertices) / stride, indices: len(indices)}, nil
}

// NewCommandList creates an empty command list.
func (d *Device) NewCommandList() (gpu.CommandList, error) {
	return &CommandList{closed: true}, nil
}

// Submit snapshots a closed command list.
func (d *Device) Submit(cl gpu.CommandList) error {
	l, ok := cl.(*CommandList)
	if !ok {
		return fmt.Errorf("simgpu: foreign command list %T", cl)
	}
	if !l.closed {
		return errors.New("simgpu: submitting an open command list")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	cmds := make([]Command, len(l.commands))
	copy(cmds, l.commands)
	d.submitted = append(d.submitted, Submission{List: l, Commands: cmds})
	return nil
}

func (d *Device) free(size int) {
	d.mu.Lock()
	d.allocated -= size
	d.mu.Unlock()
}

// Buffer is simulated upload memory.
type Buffer struct {
	device   *Device
	data     []byte
	address  uint64
	released bool
}

// Write copies data at offset.
func (b *Buffer) Write(offset int, data []byte) error {
	if b.released {
		return errReleased
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("simgpu: write [%d,%d) outside buffer of %d bytes", offset, offset+len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// Address returns the simulated GPU address.
func (b *Buffer) Address() uint64 { return b.address }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Bytes exposes the buffer contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Release frees the buffer.
func (b *Buffer) Release() error {
	if b.released {
		return errReleased
	}
	b.released = true
	b.device.free(len(b.data))
	return nil
}

// Geometry is simulated vertex/index storage.
type Geometry struct {
	vertices int
	indices  int
	released bool
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return g.vertices }

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int { return g.indices }

// Release frees the geometry.
func (g *Geometry) Release() error {
	if g.released {
		return errReleased
	}
	g.released = true
	return nil
}
