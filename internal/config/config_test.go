package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test render defaults
	if cfg.Render.FrameResources != 3 {
		t.Errorf("expected 3 frame resources, got %d", cfg.Render.FrameResources)
	}
	if !cfg.Render.Culling {
		t.Error("expected culling to be enabled by default")
	}
	if cfg.Render.FenceTimeout != 2*time.Second {
		t.Errorf("expected fence timeout 2s, got %v", cfg.Render.FenceTimeout)
	}
	if cfg.Render.MaxObjects != 256 {
		t.Errorf("expected max objects 256, got %d", cfg.Render.MaxObjects)
	}
	if cfg.Render.MaxMaterials != 64 {
		t.Errorf("expected max materials 64, got %d", cfg.Render.MaxMaterials)
	}

	// Test scene defaults
	if cfg.Scene.Manifest != "" {
		t.Errorf("expected empty manifest, got %s", cfg.Scene.Manifest)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

render:
  frame_resources: 2
  culling: false
  fence_timeout: 500ms
  max_objects: 1024
  max_materials: 16
  clear_color: [0, 0, 0, 1]

scene:
  manifest: "scenes/skulls.yaml"

bench:
  frames: 120
  gpu_latency: 5ms

logging:
  level: "debug"
  log_file: "slash.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Render.FrameResources != 2 {
		t.Errorf("expected 2 frame resources, got %d", cfg.Render.FrameResources)
	}
	if cfg.Render.Culling {
		t.Error("expected culling to be disabled")
	}
	if cfg.Render.FenceTimeout != 500*time.Millisecond {
		t.Errorf("expected fence timeout 500ms, got %v", cfg.Render.FenceTimeout)
	}
	if cfg.Render.MaxObjects != 1024 {
		t.Errorf("expected max objects 1024, got %d", cfg.Render.MaxObjects)
	}
	if cfg.Render.ClearColor != [4]float32{0, 0, 0, 1} {
		t.Errorf("unexpected clear color %v", cfg.Render.ClearColor)
	}
	if cfg.Scene.Manifest != "scenes/skulls.yaml" {
		t.Errorf("expected manifest scenes/skulls.yaml, got %s", cfg.Scene.Manifest)
	}
	if cfg.Bench.Frames != 120 {
		t.Errorf("expected 120 bench frames, got %d", cfg.Bench.Frames)
	}
	if cfg.Bench.GPULatency != 5*time.Millisecond {
		t.Errorf("expected gpu latency 5ms, got %v", cfg.Bench.GPULatency)
	}
	if cfg.Logging.LogFile != "slash.log" {
		t.Errorf("expected log file 'slash.log', got %s", cfg.Logging.LogFile)
	}

	// Untouched keys keep their defaults.
	if cfg.Render.NearZ != 1 {
		t.Errorf("expected default near z 1, got %v", cfg.Render.NearZ)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "syntax",
			content: `
graphics:
  width: not a number
  invalid syntax here
`,
		},
		{
			name: "unknown key",
			content: `
render:
  frame_resource: 2
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Render.FrameResources != 3 {
		t.Errorf("expected defaults preserved, got %d frame resources", cfg.Render.FrameResources)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no frame resources", func(c *Config) { c.Render.FrameResources = 0 }, "frame_resources"},
		{"no objects", func(c *Config) { c.Render.MaxObjects = 0 }, "max_objects"},
		{"no materials", func(c *Config) { c.Render.MaxMaterials = -1 }, "max_materials"},
		{"no timeout", func(c *Config) { c.Render.FenceTimeout = 0 }, "fence_timeout"},
		{"depth range", func(c *Config) { c.Render.FarZ = 0.5 }, "depth range"},
		{"window size", func(c *Config) { c.Graphics.Width = 0 }, "graphics"},
		{"bench frames", func(c *Config) { c.Bench.Frames = -1 }, "bench.frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Render.FrameResources = 4
	cfg.Scene.Manifest = "demo.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Render.FrameResources != 4 {
		t.Errorf("expected 4 frame resources, got %d", loaded.Render.FrameResources)
	}
	if loaded.Scene.Manifest != "demo.yaml" {
		t.Errorf("expected manifest demo.yaml, got %s", loaded.Scene.Manifest)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only config.yaml in dir, got %d entries", len(entries))
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Render.FrameResources = 0
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected error saving invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config was written: %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "no-cull flag",
			setup: func() { *flagNoCull = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Culling {
					t.Error("expected culling disabled with no-cull flag")
				}
			},
			teardown: func() { *flagNoCull = false },
		},
		{
			name: "bench flags",
			setup: func() {
				*flagFrames = 42
				*flagLatency = 3 * time.Millisecond
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bench.Frames != 42 {
					t.Errorf("expected 42 frames, got %d", cfg.Bench.Frames)
				}
				if cfg.Bench.GPULatency != 3*time.Millisecond {
					t.Errorf("expected latency 3ms, got %v", cfg.Bench.GPULatency)
				}
			},
			teardown: func() {
				*flagFrames = 0
				*flagLatency = 0
			},
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "other.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Manifest != "other.yaml" {
					t.Errorf("expected manifest other.yaml, got %s", cfg.Scene.Manifest)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  frame_resources: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject frame_resources 0")
	}
}
