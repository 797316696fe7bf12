package frame

import (
	"fmt"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

// ConstantBuffer is an array of fixed-size records in one upload buffer.
// Each record occupies an aligned stride so it can be bound on its own.
type ConstantBuffer[T Record] struct {
	owner   *Slot
	buf     gpu.Buffer
	count   int
	stride  int
	scratch []byte
}

func newConstantBuffer[T Record](dev gpu.Device, owner *Slot, count int) (*ConstantBuffer[T], error) {
	var zero T
	stride := gpu.AlignConstantSize(zero.Size())
	buf, err := dev.NewUploadBuffer(stride * count)
	if err != nil {
		return nil, err
	}
	return &ConstantBuffer[T]{
		owner:   owner,
		buf:     buf,
		count:   count,
		stride:  stride,
		scratch: make([]byte, zero.Size()),
	}, nil
}

// CopyData writes rec at index. The owning slot must be acquired and not yet
// submitted.
func (c *ConstantBuffer[T]) CopyData(index int, rec T) error {
	if !c.owner.open {
		return fmt.Errorf("%w: slot %d", ErrSlotSealed, c.owner.index)
	}
	if index < 0 || index >= c.count {
		return fmt.Errorf("%w: record %d of %d", ErrIndexOutOfRange, index, c.count)
	}
	rec.Encode(c.scratch)
	return c.buf.Write(index*c.stride, c.scratch)
}

// Address returns the GPU address of the record at index.
func (c *ConstantBuffer[T]) Address(index int) uint64 {
	return c.buf.Address() + uint64(index*c.stride)
}

// Stride returns the aligned record size.
func (c *ConstantBuffer[T]) Stride() int { return c.stride }

// Len returns the record capacity.
func (c *ConstantBuffer[T]) Len() int { return c.count }

// Buffer returns the underlying upload buffer.
func (c *ConstantBuffer[T]) Buffer() gpu.Buffer { return c.buf }
