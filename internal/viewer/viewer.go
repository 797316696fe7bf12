// Package viewer implements the interactive scene viewer loop.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/config"
	"github.com/Faultbox/slash/internal/engine/camera"
	"github.com/Faultbox/slash/internal/engine/debug"
	"github.com/Faultbox/slash/internal/engine/gpu/glgpu"
	"github.com/Faultbox/slash/internal/engine/input"
	"github.com/Faultbox/slash/internal/engine/renderer"
	"github.com/Faultbox/slash/internal/engine/scene"
	"github.com/Faultbox/slash/internal/engine/texture"
	"github.com/Faultbox/slash/internal/engine/window"
	"github.com/Faultbox/slash/internal/logger"
	"github.com/Faultbox/slash/pkg/math"
)

const (
	moveSpeed  = 10    // units per second
	lookSpeed  = 0.005 // radians per pixel
	maxFrameDt = 0.25  // seconds; longer stalls are clamped
)

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	device   *glgpu.Device
	pipeline *glgpu.Pipeline
	scene    *scene.Scene
	renderer *renderer.Renderer
	camera   *camera.Camera
	input    *input.Input
	log      *zap.Logger

	screenshots *debug.Screenshots
	capture     bool
}

// New creates the window, GPU device, scene and renderer.
func New(cfg *config.Config) (_ *Viewer, err error) {
	v := &Viewer{config: cfg, log: logger.Named("viewer")}
	defer func() {
		if err != nil {
			_ = v.Close()
		}
	}()

	v.window, err = window.New(window.Config{
		Title:      "slash",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device needs the GL context the window created.
	v.device, err = glgpu.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create GPU device: %w", err)
	}
	if err := v.createTextures(); err != nil {
		return nil, err
	}

	v.pipeline, err = v.device.NewDefaultPipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	v.scene, err = v.loadScene()
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	width, height := v.window.Size()
	v.device.Viewport(width, height)

	rc := renderer.ConfigFrom(cfg)
	rc.Width, rc.Height = width, height
	rc.Pipeline = v.pipeline
	v.renderer, err = renderer.New(v.device, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.camera, err = renderer.NewCamera(cfg, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}
	v.camera.LookAt(math.Vec3{Y: 12, Z: 30}, math.Vec3{}, math.Vec3{Y: 1})

	v.input = input.New()
	v.screenshots = debug.NewScreenshots("screenshots", "slash")

	v.log.Info("viewer initialized", zap.Int("objects", v.scene.Len()))
	return v, nil
}

// createTextures uploads the textures the built-in scene's materials index:
// 1 is brick and 2 is stone. Index 0 is the device's white fallback.
func (v *Viewer) createTextures() error {
	bricks, err := texture.Bricks(64, 8, color.RGBA{178, 84, 60, 255}, color.RGBA{210, 200, 190, 255})
	if err != nil {
		return err
	}
	stone, err := texture.Checker(64, 8, color.RGBA{140, 140, 150, 255}, color.RGBA{110, 110, 120, 255})
	if err != nil {
		return err
	}
	v.device.NewTexture(bricks)
	v.device.NewTexture(stone)
	return nil
}

func (v *Viewer) loadScene() (*scene.Scene, error) {
	if v.config.Scene.Manifest != "" {
		return scene.Load(v.config.Scene.Manifest, v.device)
	}
	return scene.BuildDemo(context.Background(), v.config.Scene.DemoRows, v.config.Scene.DemoColumns, v.device)
}

// Run starts the main loop. It returns when the window closes, Escape is
// pressed, or a frame fails.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var last renderer.Stats

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(gomath.Min(now.Sub(lastTime).Seconds(), maxFrameDt))
		lastTime = now

		if v.input.Update() {
			break
		}
		if err := v.handleInput(dt); err != nil {
			return err
		}
		if !v.running {
			break
		}

		stats, err := v.renderer.RenderFrame(ctx, v.scene, v.camera, dt)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		last = stats

		// Read back before the swap leaves the back buffer undefined.
		if v.capture {
			v.screenshot()
			v.capture = false
		}
		v.window.Present()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("slash - %d fps - %d/%d visible - culling %s",
				frameCount, last.Visible, last.Objects, onOff(v.renderer.Culling())))
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("visible", last.Visible),
				zap.Int("culled", last.Culled),
				zap.Uint64("fence", last.Fence),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleInput(dt float32) error {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			if err := v.resize(); err != nil {
				return err
			}
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_1:
				v.renderer.SetCulling(true)
			case sdl.SCANCODE_2:
				v.renderer.SetCulling(false)
			case sdl.SCANCODE_F12:
				v.capture = true
			}
		}
	}

	step := moveSpeed * dt
	if v.input.IsKeyDown(sdl.SCANCODE_W) {
		v.camera.Walk(step)
	}
	if v.input.IsKeyDown(sdl.SCANCODE_S) {
		v.camera.Walk(-step)
	}
	if v.input.IsKeyDown(sdl.SCANCODE_D) {
		v.camera.Strafe(step)
	}
	if v.input.IsKeyDown(sdl.SCANCODE_A) {
		v.camera.Strafe(-step)
	}

	if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
		dx, dy := v.input.MouseDelta()
		v.camera.Pitch(float32(dy) * lookSpeed)
		v.camera.RotateY(float32(dx) * lookSpeed)
	}
	return nil
}

// screenshot saves the frame just rendered. Failures are logged only.
func (v *Viewer) screenshot() {
	width, height := v.window.Size()
	path, err := v.screenshots.Save(v.device.ReadPixels(width, height), width, height)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// resize follows the drawable size, which differs from the window size on
// high-DPI displays.
func (v *Viewer) resize() error {
	width, height := v.window.Size()
	if width == 0 || height == 0 {
		return nil
	}
	if err := v.camera.SetAspect(float32(width) / float32(height)); err != nil {
		return err
	}
	v.device.Viewport(width, height)
	v.renderer.Resize(width, height)
	return nil
}

// Close waits for the GPU and releases everything in reverse creation order.
func (v *Viewer) Close() error {
	v.log.Info("closing viewer")

	var err error
	if v.renderer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), v.config.Render.FenceTimeout)
		err = multierr.Append(err, v.renderer.Close(ctx))
		cancel()
	}
	if v.scene != nil {
		err = multierr.Append(err, v.scene.Release())
	}
	if v.pipeline != nil {
		v.pipeline.Release()
	}
	if v.device != nil {
		err = multierr.Append(err, v.device.Close())
	}
	if v.window != nil {
		v.window.Close()
	}
	return err
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
