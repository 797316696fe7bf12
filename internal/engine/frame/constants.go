package frame

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/slash/pkg/math"
)

// MaxLights is the number of lights in the pass constants.
const MaxLights = 3

// Record is a fixed-size constant record that encodes itself little-endian.
type Record interface {
	Size() int
	Encode(dst []byte)
}

// ObjectConstants is the per-object record. Matrices are stored column-major.
type ObjectConstants struct {
	World         math.Mat4
	TexTransform  math.Mat4
	MaterialIndex uint32
}

// Size returns the encoded size in bytes.
func (ObjectConstants) Size() int { return 64 + 64 + 16 }

// Encode writes the record into dst.
func (c ObjectConstants) Encode(dst []byte) {
	o := putMat4(dst, 0, c.World)
	o = putMat4(dst, o, c.TexTransform)
	putU32(dst, o, c.MaterialIndex)
}

// MaterialConstants is the per-material record.
type MaterialConstants struct {
	DiffuseAlbedo   [4]float32
	FresnelR0       math.Vec3
	Roughness       float32
	MatTransform    math.Mat4
	DiffuseMapIndex uint32
}

// Size returns the encoded size in bytes.
func (MaterialConstants) Size() int { return 16 + 16 + 64 + 16 }

// Encode writes the record into dst.
func (c MaterialConstants) Encode(dst []byte) {
	o := 0
	for _, v := range c.DiffuseAlbedo {
		o = putF32(dst, o, v)
	}
	o = putVec3(dst, o, c.FresnelR0)
	o = putF32(dst, o, c.Roughness)
	o = putMat4(dst, o, c.MatTransform)
	putU32(dst, o, c.DiffuseMapIndex)
}

// Light is a light entry of the pass constants.
type Light struct {
	Strength     math.Vec3
	FalloffStart float32
	Direction    math.Vec3
	FalloffEnd   float32
	Position     math.Vec3
	SpotPower    float32
}

// PassConstants is the per-frame record shared by every draw.
type PassConstants struct {
	View, InvView         math.Mat4
	Proj, InvProj         math.Mat4
	ViewProj, InvViewProj math.Mat4

	EyePosW             math.Vec3
	RenderTargetSize    math.Vec2
	InvRenderTargetSize math.Vec2

	NearZ, FarZ          float32
	TotalTime, DeltaTime float32

	AmbientLight [4]float32
	Lights       [MaxLights]Light
}

// Size returns the encoded size in bytes.
func (PassConstants) Size() int { return 6*64 + 16 + 16 + 16 + 16 + MaxLights*48 }

// Encode writes the record into dst.
func (c PassConstants) Encode(dst []byte) {
	o := 0
	for _, m := range []math.Mat4{c.View, c.InvView, c.Proj, c.InvProj, c.ViewProj, c.InvViewProj} {
		o = putMat4(dst, o, m)
	}
	o = putVec3(dst, o, c.EyePosW)
	o += 4
	o = putF32(dst, o, c.RenderTargetSize.X)
	o = putF32(dst, o, c.RenderTargetSize.Y)
	o = putF32(dst, o, c.InvRenderTargetSize.X)
	o = putF32(dst, o, c.InvRenderTargetSize.Y)
	o = putF32(dst, o, c.NearZ)
	o = putF32(dst, o, c.FarZ)
	o = putF32(dst, o, c.TotalTime)
	o = putF32(dst, o, c.DeltaTime)
	for _, v := range c.AmbientLight {
		o = putF32(dst, o, v)
	}
	for _, l := range c.Lights {
		o = putVec3(dst, o, l.Strength)
		o = putF32(dst, o, l.FalloffStart)
		o = putVec3(dst, o, l.Direction)
		o = putF32(dst, o, l.FalloffEnd)
		o = putVec3(dst, o, l.Position)
		o = putF32(dst, o, l.SpotPower)
	}
}

func putF32(dst []byte, o int, v float32) int {
	binary.LittleEndian.PutUint32(dst[o:], gomath.Float32bits(v))
	return o + 4
}

func putU32(dst []byte, o int, v uint32) int {
	binary.LittleEndian.PutUint32(dst[o:], v)
	return o + 4
}

func putVec3(dst []byte, o int, v math.Vec3) int {
	o = putF32(dst, o, v.X)
	o = putF32(dst, o, v.Y)
	return putF32(dst, o, v.Z)
}

func putMat4(dst []byte, o int, m math.Mat4) int {
	for _, v := range m {
		o = putF32(dst, o, v)
	}
	return o
}
