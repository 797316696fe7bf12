package glgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// pollInterval bounds a single driver wait so context cancellation is seen.
const pollInterval = time.Millisecond

type pendingSync struct {
	value uint64
	sync  uintptr
}

// Fence is a timeline built from one GL sync object per signaled value.
type Fence struct {
	completed uint64
	signaled  uint64
	pending   []pendingSync
}

func newFence() *Fence {
	return &Fence{}
}

// Signal inserts a sync object after all submitted commands.
func (f *Fence) Signal(value uint64) error {
	if value <= f.signaled {
		return fmt.Errorf("glgpu: fence value %d not above last signaled %d", value, f.signaled)
	}
	sync := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	if sync == 0 {
		return fmt.Errorf("glgpu: glFenceSync failed for value %d", value)
	}
	gl.Flush()
	f.signaled = value
	f.pending = append(f.pending, pendingSync{value: value, sync: sync})
	return nil
}

// CompletedValue polls pending syncs and returns the highest completed value.
func (f *Fence) CompletedValue() uint64 {
	f.poll(0)
	return f.completed
}

// WaitUntil blocks until value completes or ctx is done.
func (f *Fence) WaitUntil(ctx context.Context, value uint64) error {
	for {
		if f.completed >= value {
			return nil
		}
		if value > f.signaled {
			return fmt.Errorf("glgpu: waiting for unsignaled fence value %d", value)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		f.poll(uint64(pollInterval.Nanoseconds()))
	}
}

// poll retires completed syncs in order; the oldest pending sync waits up to
// timeout nanoseconds.
func (f *Fence) poll(timeout uint64) {
	for len(f.pending) > 0 {
		p := f.pending[0]
		status := gl.ClientWaitSync(p.sync, gl.SYNC_FLUSH_COMMANDS_BIT, timeout)
		if status != gl.ALREADY_SIGNALED && status != gl.CONDITION_SATISFIED {
			return
		}
		gl.DeleteSync(p.sync)
		f.completed = p.value
		f.pending = f.pending[1:]
		timeout = 0
	}
}

func (f *Fence) release() {
	for _, p := range f.pending {
		gl.DeleteSync(p.sync)
	}
	f.pending = nil
}
