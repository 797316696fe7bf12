package renderer

import (
	gomath "math"

	"github.com/Faultbox/slash/internal/config"
	"github.com/Faultbox/slash/internal/engine/camera"
	"github.com/Faultbox/slash/internal/engine/frame"
)

// ConfigFrom maps application settings onto a renderer configuration. The
// pipeline is left unset.
func ConfigFrom(cfg *config.Config) Config {
	rc := DefaultConfig()
	rc.Ring = frame.Config{
		Slots:            cfg.Render.FrameResources,
		ObjectCapacity:   cfg.Render.MaxObjects,
		MaterialCapacity: cfg.Render.MaxMaterials,
		WaitTimeout:      cfg.Render.FenceTimeout,
	}
	rc.Culling = cfg.Render.Culling
	rc.ClearColor = cfg.Render.ClearColor
	rc.Width = cfg.Graphics.Width
	rc.Height = cfg.Graphics.Height
	return rc
}

// NewCamera returns a camera with the configured lens for a width x height
// target.
func NewCamera(cfg *config.Config, width, height int) (*camera.Camera, error) {
	cam := camera.New()
	fov := cfg.Render.FovY * gomath.Pi / 180
	if err := cam.SetLens(fov, aspect(width, height), cfg.Render.NearZ, cfg.Render.FarZ); err != nil {
		return nil, err
	}
	return cam, nil
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
