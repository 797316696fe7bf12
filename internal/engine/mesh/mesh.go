// Package mesh builds geometry for upload and wraps uploaded geometry with
// the information needed to draw it.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/slash/internal/engine/anim"
	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/pkg/bounds"
	"github.com/Faultbox/slash/pkg/math"
)

// VertexStride is the encoded size of a Vertex in bytes.
const VertexStride = 32

// Vertex is a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Data holds mesh data ready for GPU upload. Indices are relative to the
// first vertex of the range they are drawn with.
type Data struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the axis-aligned box around all vertices, as an oriented
// box with identity orientation.
func (d *Data) Bounds() bounds.OrientedBox {
	if len(d.Vertices) == 0 {
		return bounds.NewBox(math.Vec3{}, math.Vec3{})
	}

	lo := math.V3(d.Vertices[0].Position)
	hi := lo
	for _, v := range d.Vertices[1:] {
		p := math.V3(v.Position)
		lo = lo.Min(p)
		hi = hi.Max(p)
	}

	center := lo.Add(hi).Scale(0.5)
	extents := hi.Sub(lo).Scale(0.5)
	return bounds.NewBox(center, extents)
}

// EncodeVertices packs vertices little-endian at VertexStride bytes each.
func EncodeVertices(vertices []Vertex) []byte {
	out := make([]byte, len(vertices)*VertexStride)
	o := 0
	for _, v := range vertices {
		for _, f := range v.Position {
			binary.LittleEndian.PutUint32(out[o:], gomath.Float32bits(f))
			o += 4
		}
		for _, f := range v.Normal {
			binary.LittleEndian.PutUint32(out[o:], gomath.Float32bits(f))
			o += 4
		}
		for _, f := range v.TexCoord {
			binary.LittleEndian.PutUint32(out[o:], gomath.Float32bits(f))
			o += 4
		}
	}
	return out
}

// Static is uploaded geometry drawn with fixed arguments.
type Static struct {
	Geometry   gpu.Geometry
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
	Bounds     bounds.OrientedBox
}

// Baked is uploaded geometry holding every frame of every animation state,
// addressed through its keyframe table.
type Baked struct {
	Geometry gpu.Geometry
	Table    *anim.Table
	Bounds   bounds.OrientedBox
}

// NewStatic uploads data and draws all of its indices.
func NewStatic(dev gpu.Device, data *Data) (*Static, error) {
	if len(data.Indices) == 0 {
		return nil, errors.New("mesh: no indices")
	}
	geo, err := dev.NewGeometry(EncodeVertices(data.Vertices), VertexStride, data.Indices)
	if err != nil {
		return nil, fmt.Errorf("uploading static mesh: %w", err)
	}
	return &Static{
		Geometry:   geo,
		IndexCount: uint32(len(data.Indices)),
		Bounds:     data.Bounds(),
	}, nil
}

// NewBaked validates table against data and uploads data.
func NewBaked(dev gpu.Device, data *Data, table *anim.Table) (*Baked, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	for _, s := range table.States {
		if uint64(s.VertexBase)+uint64(s.VertexBlockSize) > uint64(len(data.Vertices)) {
			return nil, fmt.Errorf("%w: state %s vertex block exceeds %d vertices",
				anim.ErrInvalidTable, s.Name, len(data.Vertices))
		}
		if uint64(s.IndexBase)+uint64(s.IndexBlockSize) > uint64(len(data.Indices)) {
			return nil, fmt.Errorf("%w: state %s index block exceeds %d indices",
				anim.ErrInvalidTable, s.Name, len(data.Indices))
		}
	}

	geo, err := dev.NewGeometry(EncodeVertices(data.Vertices), VertexStride, data.Indices)
	if err != nil {
		return nil, fmt.Errorf("uploading baked mesh: %w", err)
	}
	return &Baked{
		Geometry: geo,
		Table:    table,
		Bounds:   data.Bounds(),
	}, nil
}
