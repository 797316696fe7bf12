package frame

import (
	"go.uber.org/multierr"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

// Slot is one frame's worth of GPU-visible constants and the command list
// recorded into them. Its fence value marks when the GPU is done with it.
type Slot struct {
	index int
	fence uint64
	open  bool

	Objects   *ConstantBuffer[ObjectConstants]
	Materials *ConstantBuffer[MaterialConstants]
	Pass      *ConstantBuffer[PassConstants]
	Commands  gpu.CommandList
}

func newSlot(dev gpu.Device, index, objects, materials int) (*Slot, error) {
	s := &Slot{index: index}

	var err error
	if s.Objects, err = newConstantBuffer[ObjectConstants](dev, s, objects); err != nil {
		return nil, err
	}
	if s.Materials, err = newConstantBuffer[MaterialConstants](dev, s, materials); err != nil {
		return nil, multierr.Append(err, s.release())
	}
	if s.Pass, err = newConstantBuffer[PassConstants](dev, s, 1); err != nil {
		return nil, multierr.Append(err, s.release())
	}
	if s.Commands, err = dev.NewCommandList(); err != nil {
		return nil, multierr.Append(err, s.release())
	}
	return s, nil
}

// Index returns the slot's position in the ring.
func (s *Slot) Index() int { return s.index }

// Fence returns the fence value stamped at the slot's last submission, or 0.
func (s *Slot) Fence() uint64 { return s.fence }

// Writable reports whether the slot is acquired and not yet submitted.
func (s *Slot) Writable() bool { return s.open }

func (s *Slot) release() error {
	var err error
	if s.Objects != nil {
		err = multierr.Append(err, s.Objects.buf.Release())
	}
	if s.Materials != nil {
		err = multierr.Append(err, s.Materials.buf.Release())
	}
	if s.Pass != nil {
		err = multierr.Append(err, s.Pass.buf.Release())
	}
	return err
}
