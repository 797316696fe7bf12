// Package frame manages the ring of per-frame GPU resources.
//
// The CPU prepares frame N+1 while the GPU still reads frame N, so constants
// live in N slots reused in turn. Each slot is stamped with a fence value when
// its frame is submitted, and acquiring it again waits until the GPU has
// reached that value.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/logger"
)

var (
	// ErrFenceTimeout is returned when the GPU does not reach a slot's fence
	// value in time. It wraps gpu.ErrDeviceLost.
	ErrFenceTimeout = fmt.Errorf("frame: fence wait timed out: %w", gpu.ErrDeviceLost)
	// ErrSlotSealed is returned when writing to a slot that is not acquired.
	ErrSlotSealed = errors.New("frame: slot is not writable")
	// ErrFrameOpen is returned when advancing before the current frame is submitted.
	ErrFrameOpen = errors.New("frame: current frame not submitted")
	// ErrIndexOutOfRange is returned for a record index past a buffer's capacity.
	ErrIndexOutOfRange = errors.New("frame: record index out of range")
)

// Config holds ring construction settings.
type Config struct {
	// Slots is the number of frames that may be in flight.
	Slots            int
	ObjectCapacity   int
	MaterialCapacity int
	// WaitTimeout bounds a single fence wait; 0 waits forever.
	WaitTimeout time.Duration
}

// DefaultConfig returns a three-slot ring configuration.
func DefaultConfig() Config {
	return Config{
		Slots:            3,
		ObjectCapacity:   256,
		MaterialCapacity: 64,
		WaitTimeout:      2 * time.Second,
	}
}

// Stats holds ring counters.
type Stats struct {
	Acquires int
	Waits    int
	WaitTime time.Duration
	Fence    uint64
}

// Ring owns the frame slots and the CPU side of the fence timeline.
type Ring struct {
	config  Config
	device  gpu.Device
	fence   gpu.Fence
	slots   []*Slot
	current int

	currentFence uint64
	stats        Stats
	log          *zap.Logger
}

// NewRing allocates every slot up front. Any allocation failure releases what
// was already allocated and fails the whole ring.
func NewRing(dev gpu.Device, cfg Config) (*Ring, error) {
	if cfg.Slots < 1 {
		return nil, fmt.Errorf("frame: ring needs at least one slot, got %d", cfg.Slots)
	}
	if cfg.ObjectCapacity < 1 || cfg.MaterialCapacity < 1 {
		return nil, fmt.Errorf("frame: invalid capacities objects=%d materials=%d",
			cfg.ObjectCapacity, cfg.MaterialCapacity)
	}

	r := &Ring{
		config:  cfg,
		device:  dev,
		fence:   dev.Fence(),
		slots:   make([]*Slot, 0, cfg.Slots),
		current: cfg.Slots - 1,
		log:     logger.Named("ring"),
	}

	for i := 0; i < cfg.Slots; i++ {
		s, err := newSlot(dev, i, cfg.ObjectCapacity, cfg.MaterialCapacity)
		if err != nil {
			err = fmt.Errorf("creating frame resource %d: %w", i, err)
			return nil, multierr.Append(err, r.Close())
		}
		r.slots = append(r.slots, s)
	}

	r.log.Debug("frame ring created",
		zap.Int("slots", cfg.Slots),
		zap.Int("objects", cfg.ObjectCapacity),
		zap.Int("materials", cfg.MaterialCapacity),
	)
	return r, nil
}

// Len returns the number of slots.
func (r *Ring) Len() int { return len(r.slots) }

// Current returns the most recently acquired slot.
func (r *Ring) Current() *Slot { return r.slots[r.current] }

// CurrentFence returns the last fence value issued.
func (r *Ring) CurrentFence() uint64 { return r.currentFence }

// Stats returns the ring counters.
func (r *Ring) Stats() Stats {
	s := r.stats
	s.Fence = r.currentFence
	return s
}

// Advance acquires the next slot, blocking until the GPU has finished the
// frame that last used it. This is the only blocking point of a frame.
func (r *Ring) Advance(ctx context.Context) (*Slot, error) {
	if r.slots[r.current].open {
		return nil, ErrFrameOpen
	}

	next := (r.current + 1) % len(r.slots)
	s := r.slots[next]

	if s.fence != 0 && r.fence.CompletedValue() < s.fence {
		start := time.Now()
		if err := r.wait(ctx, s.fence); err != nil {
			return nil, fmt.Errorf("acquiring slot %d: %w", next, err)
		}
		elapsed := time.Since(start)
		r.stats.Waits++
		r.stats.WaitTime += elapsed
		r.log.Debug("waited for frame resource",
			zap.Int("slot", next),
			zap.Uint64("fence", s.fence),
			zap.Duration("elapsed", elapsed),
		)
	}

	r.current = next
	s.open = true
	r.stats.Acquires++
	return s, nil
}

// Submit hands the current slot's closed command list to the device, stamps
// the slot with a new fence value and signals it. The slot is read-only until
// it is acquired again.
func (r *Ring) Submit() (uint64, error) {
	s := r.slots[r.current]
	if !s.open {
		return 0, fmt.Errorf("%w: slot %d already submitted", ErrSlotSealed, s.index)
	}
	if err := r.device.Submit(s.Commands); err != nil {
		return 0, fmt.Errorf("submitting slot %d: %w", s.index, err)
	}

	s.open = false
	next := r.currentFence + 1
	if err := r.fence.Signal(next); err != nil {
		return 0, fmt.Errorf("signaling fence %d: %w", next, err)
	}
	r.currentFence = next
	s.fence = next
	return next, nil
}

// Discard abandons the current frame without submitting it. The slot keeps
// its previous fence value, so acquiring it again does not wait.
func (r *Ring) Discard() {
	r.slots[r.current].open = false
}

// Flush waits until all submitted frames have completed.
func (r *Ring) Flush(ctx context.Context) error {
	if r.currentFence == 0 || r.fence.CompletedValue() >= r.currentFence {
		return nil
	}
	return r.wait(ctx, r.currentFence)
}

// Close releases every slot's buffers. Callers should Flush first.
func (r *Ring) Close() error {
	var err error
	for _, s := range r.slots {
		err = multierr.Append(err, s.release())
	}
	r.slots = nil
	return err
}

func (r *Ring) wait(ctx context.Context, value uint64) error {
	waitCtx := ctx
	if r.config.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.config.WaitTimeout)
		defer cancel()
	}

	err := r.fence.WaitUntil(waitCtx, value)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		r.log.Error("fence wait timed out",
			zap.Uint64("fence", value),
			zap.Uint64("completed", r.fence.CompletedValue()),
			zap.Duration("timeout", r.config.WaitTimeout),
		)
		return fmt.Errorf("%w: fence %d, completed %d", ErrFenceTimeout, value, r.fence.CompletedValue())
	}
	return err
}
