package renderer

import (
	"github.com/Faultbox/slash/internal/engine/camera"
	"github.com/Faultbox/slash/internal/engine/frame"
	"github.com/Faultbox/slash/internal/engine/lighting"
	"github.com/Faultbox/slash/pkg/math"
)

// Lighting holds the per-pass light setup.
type Lighting struct {
	Ambient [4]float32
	Lights  [frame.MaxLights]frame.Light
}

// DefaultLighting returns a three-point directional setup.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient: [4]float32{0.25, 0.25, 0.35, 1},
		Lights: [frame.MaxLights]frame.Light{
			{Direction: lighting.SunDirection(225, 35.26), Strength: lighting.Gray(0.6)},
			{Direction: lighting.SunDirection(135, 35.26), Strength: lighting.Gray(0.3)},
			{Direction: lighting.SunDirection(0, 45), Strength: lighting.Gray(0.15)},
		},
	}
}

func buildPass(cam *camera.Camera, width, height int, totalTime, dt float32, light Lighting) frame.PassConstants {
	view := cam.View()
	proj := cam.Proj()
	viewProj := proj.Mul(view)

	invView, _ := view.Invert()
	invProj, _ := proj.Invert()
	invViewProj, _ := viewProj.Invert()

	pc := frame.PassConstants{
		View:         view,
		InvView:      invView,
		Proj:         proj,
		InvProj:      invProj,
		ViewProj:     viewProj,
		InvViewProj:  invViewProj,
		EyePosW:      cam.Position(),
		NearZ:        cam.NearZ(),
		FarZ:         cam.FarZ(),
		TotalTime:    totalTime,
		DeltaTime:    dt,
		AmbientLight: light.Ambient,
		Lights:       light.Lights,
	}
	if width > 0 && height > 0 {
		pc.RenderTargetSize = math.Vec2{X: float32(width), Y: float32(height)}
		pc.InvRenderTargetSize = pc.RenderTargetSize.Reciprocal()
	}
	return pc
}
