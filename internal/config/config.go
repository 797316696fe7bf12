// Package config handles viewer and bench configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Scene    SceneConfig    `yaml:"scene"`
	Bench    BenchConfig    `yaml:"bench"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// RenderConfig holds frame pipeline settings.
type RenderConfig struct {
	FrameResources int           `yaml:"frame_resources"` // Frames in flight
	Culling        bool          `yaml:"culling"`
	FenceTimeout   time.Duration `yaml:"fence_timeout"`
	MaxObjects     int           `yaml:"max_objects"`
	MaxMaterials   int           `yaml:"max_materials"`
	ClearColor     [4]float32    `yaml:"clear_color"`
	FovY           float32       `yaml:"fov_y"` // Degrees
	NearZ          float32       `yaml:"near_z"`
	FarZ           float32       `yaml:"far_z"`
}

// SceneConfig selects what to render.
type SceneConfig struct {
	Manifest string `yaml:"manifest"` // Empty renders the built-in demo scene
	// Demo grid dimensions for the built-in scene.
	DemoRows    int `yaml:"demo_rows"`
	DemoColumns int `yaml:"demo_columns"`
}

// BenchConfig holds headless benchmark settings.
type BenchConfig struct {
	Frames     int           `yaml:"frames"`
	GPULatency time.Duration `yaml:"gpu_latency"`
	DeltaTime  time.Duration `yaml:"delta_time"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	// JSON writes the log file as JSON lines.
	JSON bool `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			FrameResources: 3,
			Culling:        true,
			FenceTimeout:   2 * time.Second,
			MaxObjects:     256,
			MaxMaterials:   64,
			ClearColor:     [4]float32{0.69, 0.77, 0.87, 1},
			FovY:           45,
			NearZ:          1,
			FarZ:           1000,
		},
		Scene: SceneConfig{
			DemoRows:    5,
			DemoColumns: 5,
		},
		Bench: BenchConfig{
			Frames:     600,
			GPULatency: 20 * time.Millisecond,
			DeltaTime:  time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the renderer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Render.FrameResources < 1 {
		errs = append(errs, fmt.Errorf("render.frame_resources must be at least 1, got %d", c.Render.FrameResources))
	}
	if c.Render.MaxObjects <= 0 {
		errs = append(errs, fmt.Errorf("render.max_objects must be positive, got %d", c.Render.MaxObjects))
	}
	if c.Render.MaxMaterials <= 0 {
		errs = append(errs, fmt.Errorf("render.max_materials must be positive, got %d", c.Render.MaxMaterials))
	}
	if c.Render.FenceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("render.fence_timeout must be positive, got %v", c.Render.FenceTimeout))
	}
	if c.Render.NearZ <= 0 || c.Render.FarZ <= c.Render.NearZ {
		errs = append(errs, fmt.Errorf("render: invalid depth range [%g, %g]", c.Render.NearZ, c.Render.FarZ))
	}
	if c.Bench.Frames < 0 {
		errs = append(errs, fmt.Errorf("bench.frames must not be negative, got %d", c.Bench.Frames))
	}
	return errors.Join(errs...)
}
