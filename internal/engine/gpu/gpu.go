// Package gpu defines the device-side contracts the renderer records against.
// Backends live in subpackages (glgpu for OpenGL, simgpu for an in-process
// simulation).
package gpu

import (
	"context"
	"errors"
)

var (
	// ErrOutOfMemory is returned when a device allocation fails.
	ErrOutOfMemory = errors.New("gpu: out of device memory")
	// ErrDeviceLost is returned when the device stops making progress.
	ErrDeviceLost = errors.New("gpu: device lost")
)

// Fence is a monotonically increasing GPU timeline value.
type Fence interface {
	// Signal enqueues a signal of value after all previously submitted work.
	Signal(value uint64) error
	// CompletedValue returns the highest value the GPU has reached.
	CompletedValue() uint64
	// WaitUntil blocks until CompletedValue() >= value or ctx is done.
	WaitUntil(ctx context.Context, value uint64) error
}

// Buffer is CPU-writable memory visible to the GPU.
type Buffer interface {
	// Write copies data into the buffer at offset.
	Write(offset int, data []byte) error
	// Address returns the GPU address of the first byte.
	Address() uint64
	Size() int
	Release() error
}

// Geometry is an uploaded vertex and index buffer pair.
type Geometry interface {
	VertexCount() int
	IndexCount() int
	Release() error
}

// Pipeline is an opaque bound shader/state object built by a backend.
type Pipeline interface{}

// TextureIndex selects a texture descriptor in the device's texture table.
type TextureIndex uint32

// RootSlot names a binding point of the root signature.
type RootSlot int

const (
	RootObject RootSlot = iota
	RootMaterial
	RootPass
	RootTexture
)

// ResourceState is the usage state of the back buffer for barriers.
type ResourceState int

const (
	StatePresent ResourceState = iota
	StateRenderTarget
)

// CommandList records work for one frame.
type CommandList interface {
	// Reset clears recorded work. It may only be called once the GPU has
	// finished the list's previous submission.
	Reset(p Pipeline) error
	Barrier(from, to ResourceState)
	// Clear fills the color and depth targets.
	Clear(color [4]float32)
	SetPipeline(p Pipeline)
	SetGeometry(g Geometry)
	SetConstantBuffer(slot RootSlot, address uint64, size int)
	SetTexture(slot RootSlot, tex TextureIndex)
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)
	Close() error
}

// Device allocates resources and executes command lists.
type Device interface {
	NewUploadBuffer(size int) (Buffer, error)
	NewGeometry(vertices []byte, stride int, indices []uint32) (Geometry, error)
	NewCommandList() (CommandList, error)
	// Submit queues a closed command list for execution.
	Submit(cl CommandList) error
	Fence() Fence
}

// AlignConstantSize rounds a constant record size up to the 256-byte
// alignment constant buffer views require.
func AlignConstantSize(size int) int {
	return (size + 255) &^ 255
}
