package simgpu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Faultbox/slash/internal/engine/gpu"
)

func TestFenceInstant(t *testing.T) {
	f := newFence(Instant, 0)
	if err := f.Signal(1); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if f.CompletedValue() != 1 {
		t.Errorf("CompletedValue() = %d, want 1", f.CompletedValue())
	}
	if err := f.Signal(1); err == nil {
		t.Error("expected error re-signaling the same value")
	}
}

func TestFenceManualWait(t *testing.T) {
	f := newFence(Manual, 0)
	f.Signal(1)
	f.Signal(2)

	done := make(chan error, 1)
	go func() { done <- f.WaitUntil(context.Background(), 2) }()

	select {
	case <-done:
		t.Fatal("WaitUntil returned before the value completed")
	case <-time.After(20 * time.Millisecond):
	}

	f.Complete(1)
	select {
	case <-done:
		t.Fatal("WaitUntil returned after completing only 1")
	case <-time.After(20 * time.Millisecond):
	}

	f.Complete(2)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitUntil: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitUntil did not return after completion")
	}
	if f.Waits() != 1 {
		t.Errorf("Waits() = %d, want 1", f.Waits())
	}
}

func TestFenceWaitTimeout(t *testing.T) {
	f := newFence(Manual, 0)
	f.Signal(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.WaitUntil(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestFenceLatency(t *testing.T) {
	f := newFence(Latency, 5*time.Millisecond)
	f.Signal(1)
	if f.CompletedValue() != 0 {
		t.Fatal("latency fence completed immediately")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.WaitUntil(ctx, 1); err != nil {
		t.Fatalf("WaitUntil: %v", err)
	}
}

func TestFenceNeverGoesBackward(t *testing.T) {
	f := newFence(Manual, 0)
	f.Complete(5)
	f.Complete(3)
	if f.CompletedValue() != 5 {
		t.Errorf("CompletedValue() = %d, want 5", f.CompletedValue())
	}
}

func TestDeviceMemoryLimit(t *testing.T) {
	d := New(Config{MemoryLimit: 1024})

	b, err := d.NewUploadBuffer(1000)
	if err != nil {
		t.Fatalf("NewUploadBuffer: %v", err)
	}
	if _, err := d.NewUploadBuffer(100); !errors.Is(err, gpu.ErrOutOfMemory) {
		t.Errorf("expected ErrOutOfMemory, got %v", err)
	}

	if err := b.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if d.Allocated() != 0 {
		t.Errorf("Allocated() = %d after release, want 0", d.Allocated())
	}
	if err := b.Release(); err == nil {
		t.Error("expected error on double release")
	}
}

func TestBufferWriteBounds(t *testing.T) {
	d := New(Config{})
	b, _ := d.NewUploadBuffer(16)

	if err := b.Write(8, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := b.(*Buffer).Bytes()[8:12]; got[0] != 1 || got[3] != 4 {
		t.Errorf("buffer contents = %v", got)
	}
	if err := b.Write(14, []byte{1, 2, 3}); err == nil {
		t.Error("expected error writing past the end")
	}
}

func TestBufferAddressesDoNotOverlap(t *testing.T) {
	d := New(Config{})
	a, _ := d.NewUploadBuffer(300)
	b, _ := d.NewUploadBuffer(10)
	if b.Address() < a.Address()+300 {
		t.Errorf("addresses overlap: %#x (300 bytes) and %#x", a.Address(), b.Address())
	}
	if b.Address()%256 != 0 {
		t.Errorf("address %#x not 256-byte aligned", b.Address())
	}
}

func TestCommandListLifecycle(t *testing.T) {
	d := New(Config{})
	cl, _ := d.NewCommandList()

	if err := d.Submit(cl); err != nil {
		t.Fatalf("submitting an empty closed list: %v", err)
	}
	if err := cl.Reset("pso"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := cl.Reset(nil); err == nil {
		t.Error("expected error resetting an open list")
	}
	if err := d.Submit(cl); err == nil {
		t.Error("expected error submitting an open list")
	}

	cl.DrawIndexedInstanced(36, 1, 72, 24, 0)
	if err := cl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Submit(cl); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	subs := d.Submissions()
	draws := Draws(subs[len(subs)-1].Commands)
	want := Draw{IndexCount: 36, InstanceCount: 1, StartIndex: 72, BaseVertex: 24}
	if len(draws) != 1 || draws[0] != want {
		t.Errorf("draws = %+v, want [%+v]", draws, want)
	}
}

func TestGeometryStride(t *testing.T) {
	d := New(Config{})
	g, err := d.NewGeometry(make([]byte, 64), 32, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if g.VertexCount() != 2 || g.IndexCount() != 3 {
		t.Errorf("counts = %d/%d, want 2/3", g.VertexCount(), g.IndexCount())
	}
	if _, err := d.NewGeometry(make([]byte, 10), 32, nil); err == nil {
		t.Error("expected stride error")
	}
}
