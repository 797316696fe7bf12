// Package renderer drives one frame at a time through the frame resource
// ring: acquire a slot, cull and animate the scene, write constants, record
// draws and submit.
package renderer

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/engine/camera"
	"github.com/Faultbox/slash/internal/engine/cull"
	"github.com/Faultbox/slash/internal/engine/frame"
	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/scene"
	"github.com/Faultbox/slash/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Ring       frame.Config
	Culling    bool
	ClearColor [4]float32
	Width      int
	Height     int
	// Pipeline is bound at the start of every frame; nil binds nothing.
	Pipeline gpu.Pipeline
	Lighting Lighting
}

// DefaultConfig returns a renderer configuration with culling enabled.
func DefaultConfig() Config {
	return Config{
		Ring:       frame.DefaultConfig(),
		Culling:    true,
		ClearColor: [4]float32{0.69, 0.77, 0.87, 1},
		Width:      1280,
		Height:     720,
		Lighting:   DefaultLighting(),
	}
}

// Stats describes one rendered frame.
type Stats struct {
	Slot           int
	Fence          uint64
	Objects        int
	Visible        int
	Culled         int
	Draws          int
	MaterialWrites int
	// Waited reports whether acquiring the slot blocked on the GPU.
	Waited bool
}

// Renderer records and submits frames.
type Renderer struct {
	config    Config
	device    gpu.Device
	ring      *frame.Ring
	culler    *cull.Culler
	totalTime float32
	log       *zap.Logger
}

// New creates a renderer and its frame ring on dev.
func New(dev gpu.Device, cfg Config) (*Renderer, error) {
	ring, err := frame.NewRing(dev, cfg.Ring)
	if err != nil {
		return nil, fmt.Errorf("creating frame ring: %w", err)
	}

	r := &Renderer{
		config: cfg,
		device: dev,
		ring:   ring,
		culler: cull.New(),
		log:    logger.Named("renderer"),
	}
	r.culler.Enabled = cfg.Culling

	r.log.Info("renderer created",
		zap.Int("frame_resources", cfg.Ring.Slots),
		zap.Bool("culling", cfg.Culling),
	)
	return r, nil
}

// SetCulling turns frustum culling on or off.
func (r *Renderer) SetCulling(enabled bool) {
	if r.culler.Enabled != enabled {
		r.log.Info("frustum culling toggled", zap.Bool("enabled", enabled))
	}
	r.culler.Enabled = enabled
}

// Culling reports whether frustum culling is on.
func (r *Renderer) Culling() bool { return r.culler.Enabled }

// Resize updates the render target size used by the pass constants.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Ring returns the frame resource ring.
func (r *Renderer) Ring() *frame.Ring { return r.ring }

// RenderFrame renders sc from cam, advancing animation by dt seconds. On
// error the frame is discarded and nothing is submitted.
func (r *Renderer) RenderFrame(ctx context.Context, sc *scene.Scene, cam *camera.Camera, dt float32) (Stats, error) {
	waitsBefore := r.ring.Stats().Waits
	slot, err := r.ring.Advance(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats, err := r.record(slot, sc, cam, dt)
	if err != nil {
		// The list may still be open; closing it keeps the slot reusable.
		_ = slot.Commands.Close()
		r.ring.Discard()
		return Stats{}, err
	}

	fence, err := r.ring.Submit()
	if err != nil {
		r.ring.Discard()
		return Stats{}, err
	}

	r.totalTime += dt
	stats.Slot = slot.Index()
	stats.Fence = fence
	stats.Waited = r.ring.Stats().Waits > waitsBefore

	r.log.Debug("frame submitted",
		zap.Int("slot", stats.Slot),
		zap.Uint64("fence", stats.Fence),
		zap.Int("visible", stats.Visible),
		zap.Int("culled", stats.Culled),
	)
	return stats, nil
}

func (r *Renderer) record(slot *frame.Slot, sc *scene.Scene, cam *camera.Camera, dt float32) (Stats, error) {
	cmd := slot.Commands
	if err := cmd.Reset(r.config.Pipeline); err != nil {
		return Stats{}, fmt.Errorf("resetting command list: %w", err)
	}

	pass := buildPass(cam, r.config.Width, r.config.Height, r.totalTime, dt, r.config.Lighting)
	if err := slot.Pass.CopyData(0, pass); err != nil {
		return Stats{}, fmt.Errorf("writing pass constants: %w", err)
	}

	cmd.Barrier(gpu.StatePresent, gpu.StateRenderTarget)
	cmd.Clear(r.config.ClearColor)
	cmd.SetConstantBuffer(gpu.RootPass, slot.Pass.Address(0), slot.Pass.Stride())

	if err := r.culler.Begin(cam.View(), cam.Frustum()); err != nil {
		return Stats{}, err
	}
	fc := &scene.FrameContext{DeltaTime: dt, Culler: r.culler}

	objects := sc.Objects()
	stats := Stats{Objects: len(objects)}
	for _, obj := range objects {
		visible, err := obj.Update(fc)
		if err != nil {
			return Stats{}, fmt.Errorf("updating object %q: %w", obj.Base().Name, err)
		}
		if visible {
			stats.Visible++
		} else {
			stats.Culled++
		}
	}

	sub := NewSubmitter(slot)

	// Materials are shared, so every object writes its material whether or
	// not it is drawn. Scene order makes the last writer deterministic.
	for _, obj := range objects {
		if err := sub.WriteMaterial(obj.Base().Material); err != nil {
			return Stats{}, err
		}
	}

	for _, obj := range objects {
		if !obj.Base().Visible {
			continue
		}
		if err := obj.Render(sub); err != nil {
			return Stats{}, fmt.Errorf("rendering object %q: %w", obj.Base().Name, err)
		}
	}

	cmd.Barrier(gpu.StateRenderTarget, gpu.StatePresent)
	if err := cmd.Close(); err != nil {
		return Stats{}, fmt.Errorf("closing command list: %w", err)
	}

	stats.Draws = sub.draws
	stats.MaterialWrites = sub.materialWrites
	return stats, nil
}

// Close waits for submitted frames and releases the ring.
func (r *Renderer) Close(ctx context.Context) error {
	r.log.Info("closing renderer")
	return multierr.Append(r.ring.Flush(ctx), r.ring.Close())
}
