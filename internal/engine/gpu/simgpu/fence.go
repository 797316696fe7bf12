package simgpu

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FenceMode controls when signaled fence values complete.
type FenceMode int

const (
	// Instant completes every signal immediately.
	Instant FenceMode = iota
	// Manual completes values only through Fence.Complete.
	Manual
	// Latency completes each signal after a fixed delay.
	Latency
)

// Fence is a simulated GPU timeline.
type Fence struct {
	mode    FenceMode
	latency time.Duration

	mu        sync.Mutex
	completed uint64
	signaled  uint64
	changed   chan struct{}
	waits     int
}

func newFence(mode FenceMode, latency time.Duration) *Fence {
	return &Fence{
		mode:    mode,
		latency: latency,
		changed: make(chan struct{}),
	}
}

// Signal enqueues value on the timeline.
func (f *Fence) Signal(value uint64) error {
	f.mu.Lock()
	if value <= f.signaled {
		f.mu.Unlock()
		return fmt.Errorf("simgpu: fence value %d not above last signaled %d", value, f.signaled)
	}
	f.signaled = value
	f.mu.Unlock()

	switch f.mode {
	case Instant:
		f.Complete(value)
	case Latency:
		time.AfterFunc(f.latency, func() { f.Complete(value) })
	}
	return nil
}

// Complete advances the completed value to value. Values never move backward.
func (f *Fence) Complete(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value <= f.completed {
		return
	}
	f.completed = value
	close(f.changed)
	f.changed = make(chan struct{})
}

// CompleteAll completes everything signaled so far.
func (f *Fence) CompleteAll() {
	f.mu.Lock()
	v := f.signaled
	f.mu.Unlock()
	f.Complete(v)
}

// CompletedValue returns the highest completed value.
func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Signaled returns the highest signaled value.
func (f *Fence) Signaled() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// Waits returns how many WaitUntil calls had to block.
func (f *Fence) Waits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}

// WaitUntil blocks until value completes or ctx is done.
func (f *Fence) WaitUntil(ctx context.Context, value uint64) error {
	f.mu.Lock()
	if f.completed >= value {
		f.mu.Unlock()
		return nil
	}
	f.waits++
	f.mu.Unlock()

	for {
		f.mu.Lock()
		if f.completed >= value {
			f.mu.Unlock()
			return nil
		}
		ch := f.changed
		f.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
