// Package glgpu implements the gpu contracts on OpenGL 4.1 core.
//
// Upload buffers are uniform buffers. A buffer "address" packs the buffer
// name in the high 32 bits and a byte offset in the low 32 bits, and is bound
// with glBindBufferRange. Command lists record closures that run in order on
// Submit, on the goroutine that owns the GL context.
package glgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/engine/gpu"
	"github.com/Faultbox/slash/internal/engine/mesh"
	"github.com/Faultbox/slash/internal/engine/texture"
	"github.com/Faultbox/slash/internal/logger"
)

// Uniform block binding points per root slot.
var blockBindings = map[gpu.RootSlot]uint32{
	gpu.RootObject:   0,
	gpu.RootMaterial: 1,
	gpu.RootPass:     2,
}

// Device is an OpenGL-backed gpu.Device. All methods must be called on the
// thread owning the GL context.
type Device struct {
	fence    *Fence
	textures []uint32
	buffers  map[uint32]*Buffer
	log      *zap.Logger

	// MemoryLimit caps upload buffer bytes; 0 means unlimited.
	MemoryLimit int
	allocated   int
}

// New initializes OpenGL function pointers for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		fence:   newFence(),
		buffers: make(map[uint32]*Buffer),
		log:     logger.Named("glgpu"),
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var align int32
	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &align)
	if align > 256 {
		return nil, fmt.Errorf("glgpu: uniform offset alignment %d exceeds constant record alignment", align)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	// Texture 0 is the white fallback.
	d.NewSolidTexture(color.RGBA{255, 255, 255, 255})
	return d, nil
}

// Fence returns the device timeline.
func (d *Device) Fence() gpu.Fence { return d.fence }

// Viewport sets the render area, as on a window resize.
func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// NewUploadBuffer allocates a dynamic uniform buffer.
func (d *Device) NewUploadBuffer(size int) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("glgpu: invalid buffer size %d", size)
	}
	if d.MemoryLimit > 0 && d.allocated+size > d.MemoryLimit {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			gpu.ErrOutOfMemory, size, d.allocated, d.MemoryLimit)
	}

	var name uint32
	gl.GenBuffers(1, &name)
	gl.BindBuffer(gl.UNIFORM_BUFFER, name)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &name)
		if code == gl.OUT_OF_MEMORY {
			return nil, fmt.Errorf("%w: uniform buffer of %d bytes", gpu.ErrOutOfMemory, size)
		}
		return nil, fmt.Errorf("glgpu: creating buffer: GL error 0x%x", code)
	}

	b := &Buffer{device: d, name: name, size: size}
	d.buffers[name] = b
	d.allocated += size
	return b, nil
}

// NewGeometry uploads interleaved mesh vertices and 32-bit indices.
func (d *Device) NewGeometry(vertices []byte, stride int, indices []uint32) (gpu.Geometry, error) {
	if stride != mesh.VertexStride {
		return nil, fmt.Errorf("glgpu: unsupported vertex stride %d", stride)
	}
	if len(vertices) == 0 || len(vertices)%stride != 0 || len(indices) == 0 {
		return nil, errors.New("glgpu: empty or misaligned geometry")
	}

	g := &Geometry{vertices: len(vertices) / stride, indices: len(indices)}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(stride), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(stride), 12)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(stride), 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return g, nil
}

// NewCommandList creates a closed command list.
func (d *Device) NewCommandList() (gpu.CommandList, error) {
	return &CommandList{device: d, closed: true}, nil
}

// Submit replays a closed command list.
func (d *Device) Submit(cl gpu.CommandList) error {
	l, ok := cl.(*CommandList)
	if !ok {
		return fmt.Errorf("glgpu: foreign command list %T", cl)
	}
	if !l.closed {
		return errors.New("glgpu: submitting an open command list")
	}
	for _, op := range l.ops {
		op()
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		if code == gl.OUT_OF_MEMORY {
			return gpu.ErrDeviceLost
		}
		return fmt.Errorf("glgpu: GL error 0x%x during submit", code)
	}
	return nil
}

// NewTexture uploads img with mipmaps and returns its descriptor index.
func (d *Device) NewTexture(img *image.RGBA) gpu.TextureIndex {
	b := img.Bounds()
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.textures = append(d.textures, tex)
	d.log.Debug("texture created",
		zap.Int("index", len(d.textures)-1),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)
	return gpu.TextureIndex(len(d.textures) - 1)
}

// NewSolidTexture creates a 1x1 texture and returns its descriptor index.
func (d *Device) NewSolidTexture(c color.RGBA) gpu.TextureIndex {
	return d.NewTexture(texture.Solid(c))
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (d *Device) texture(idx gpu.TextureIndex) uint32 {
	if int(idx) < len(d.textures) {
		return d.textures[idx]
	}
	return d.textures[0]
}

// Close deletes textures and any buffers still alive.
func (d *Device) Close() error {
	var err error
	for _, b := range d.buffers {
		err = multierr.Append(err, b.Release())
	}
	if len(d.textures) > 0 {
		gl.DeleteTextures(int32(len(d.textures)), &d.textures[0])
		d.textures = nil
	}
	d.fence.release()
	return err
}

// Buffer is a uniform buffer.
type Buffer struct {
	device   *Device
	name     uint32
	size     int
	released bool
}

// Write copies data at offset.
func (b *Buffer) Write(offset int, data []byte) error {
	if b.released {
		return errors.New("glgpu: write to released buffer")
	}
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("glgpu: write [%d,%d) outside buffer of %d bytes", offset, offset+len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.name)
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return nil
}

// Address returns the packed buffer name and offset 0.
func (b *Buffer) Address() uint64 { return uint64(b.name) << 32 }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return b.size }

// Release deletes the buffer.
func (b *Buffer) Release() error {
	if b.released {
		return errors.New("glgpu: buffer already released")
	}
	b.released = true
	gl.DeleteBuffers(1, &b.name)
	delete(b.device.buffers, b.name)
	b.device.allocated -= b.size
	return nil
}

// Geometry is a vertex array with its vertex and index buffers.
type Geometry struct {
	vao, vbo, ebo uint32
	vertices      int
	indices       int
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return g.vertices }

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int { return g.indices }

// Release deletes the vertex array and its buffers.
func (g *Geometry) Release() error {
	if g.vao == 0 {
		return errors.New("glgpu: geometry already released")
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	g.vao, g.vbo, g.ebo = 0, 0, 0
	return nil
}
