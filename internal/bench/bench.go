// Package bench drives the renderer headlessly against a simulated GPU and
// reports how the frame ring behaved.
package bench

import (
	"context"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/config"
	"github.com/Faultbox/slash/internal/engine/camera"
	"github.com/Faultbox/slash/internal/engine/gpu/simgpu"
	"github.com/Faultbox/slash/internal/engine/renderer"
	"github.com/Faultbox/slash/internal/engine/scene"
	"github.com/Faultbox/slash/internal/logger"
	"github.com/Faultbox/slash/pkg/math"
)

// Camera orbit around the scene origin.
const (
	orbitRadius = 30
	orbitHeight = 12
	orbitSpeed  = 0.5 // radians per second
)

// Report aggregates a bench run.
type Report struct {
	Frames   int
	Objects  int
	Visible  int
	Culled   int
	Draws    int
	Waits    int
	WaitTime time.Duration
	Fence    uint64
	Elapsed  time.Duration
}

// FrameTime returns the mean wall time per frame.
func (r Report) FrameTime() time.Duration {
	if r.Frames == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Frames)
}

// Run renders cfg.Bench.Frames frames of the configured scene on a simulated
// device whose fence completes cfg.Bench.GPULatency after each submit.
func Run(ctx context.Context, cfg *config.Config) (rep Report, err error) {
	log := logger.Named("bench")

	simCfg := simgpu.Config{FenceMode: simgpu.Instant}
	if cfg.Bench.GPULatency > 0 {
		simCfg = simgpu.Config{FenceMode: simgpu.Latency, Latency: cfg.Bench.GPULatency}
	}
	dev := simgpu.New(simCfg)

	sc, err := loadScene(ctx, cfg, dev)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		err = multierr.Append(err, sc.Release())
	}()

	r, err := renderer.New(dev, renderer.ConfigFrom(cfg))
	if err != nil {
		return Report{}, err
	}
	defer func() {
		err = multierr.Append(err, r.Close(context.Background()))
	}()

	cam, err := renderer.NewCamera(cfg, cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		return Report{}, err
	}

	dt := float32(cfg.Bench.DeltaTime.Seconds())
	rep.Objects = sc.Len()

	log.Info("bench started",
		zap.Int("frames", cfg.Bench.Frames),
		zap.Int("objects", rep.Objects),
		zap.Duration("gpu_latency", cfg.Bench.GPULatency),
		zap.Bool("culling", cfg.Render.Culling),
	)

	start := time.Now()
	for i := 0; i < cfg.Bench.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		orbit(cam, float32(i)*dt*orbitSpeed)
		stats, err := r.RenderFrame(ctx, sc, cam, dt)
		if err != nil {
			return rep, fmt.Errorf("frame %d: %w", i, err)
		}

		rep.Frames++
		rep.Visible += stats.Visible
		rep.Culled += stats.Culled
		rep.Draws += stats.Draws
	}
	rep.Elapsed = time.Since(start)

	rs := r.Ring().Stats()
	rep.Waits = rs.Waits
	rep.WaitTime = rs.WaitTime
	rep.Fence = rs.Fence

	log.Info("bench finished",
		zap.Int("frames", rep.Frames),
		zap.Duration("frame_time", rep.FrameTime()),
		zap.Int("visible", rep.Visible),
		zap.Int("culled", rep.Culled),
		zap.Int("draws", rep.Draws),
		zap.Int("waits", rep.Waits),
		zap.Duration("wait_time", rep.WaitTime),
		zap.Uint64("fence", rep.Fence),
	)
	return rep, nil
}

func loadScene(ctx context.Context, cfg *config.Config, dev *simgpu.Device) (*scene.Scene, error) {
	if cfg.Scene.Manifest != "" {
		return scene.Load(cfg.Scene.Manifest, dev)
	}
	return scene.BuildDemo(ctx, cfg.Scene.DemoRows, cfg.Scene.DemoColumns, dev)
}

func orbit(cam *camera.Camera, angle float32) {
	a := float64(angle)
	pos := math.Vec3{
		X: float32(gomath.Cos(a)) * orbitRadius,
		Y: orbitHeight,
		Z: float32(gomath.Sin(a)) * orbitRadius,
	}
	cam.LookAt(pos, math.Vec3{}, math.Vec3{Y: 1})
}
