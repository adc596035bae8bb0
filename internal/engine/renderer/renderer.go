// Package renderer provides the OpenGL implementation of gpu.Device.
package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/internal/logger"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// MaxAnisotropy is applied to mipmapped textures when > 1.
	MaxAnisotropy float32
	// MaxMipLevel caps TEXTURE_MAX_LEVEL of mipmapped textures when > 0.
	MaxMipLevel int32
	// Multisample enables MSAA rasterization; the window must provide the buffers.
	Multisample bool

	ClearColor [3]float32
}

// Renderer owns the GL state for one context and creates GPU resources.
type Renderer struct {
	config Config
}

var _ gpu.Device = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	if cfg.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	}
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)

	// Decoded rows are tightly packed, 1 and 3 component images are not 4-byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AspectRatio returns width/height of the current viewport.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) > 0 {
		gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	}
	return pixels, w, h
}

// CreateTexture uploads a 2D texture. On any GL error the texture is deleted
// before returning, so a failed upload never leaks a handle.
func (r *Renderer) CreateTexture(desc gpu.TextureDesc) (uint32, error) {
	if err := desc.Validate(); err != nil {
		return 0, err
	}

	format := glFormat(desc.Format)

	r.clearErrors()
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(desc.Width), int32(desc.Height), 0,
		format, gl.UNSIGNED_BYTE, unsafe.Pointer(&desc.Pixels[0]))

	if desc.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		if r.config.MaxMipLevel > 0 {
			gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, r.config.MaxMipLevel)
		}
		if r.config.MaxAnisotropy > 1 {
			gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, r.config.MaxAnisotropy)
		}
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(desc.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(desc.Wrap))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("texture upload %dx%d %v: gl error 0x%x", desc.Width, desc.Height, desc.Format, code)
	}
	return tex, nil
}

// DeleteTexture releases a texture. Zero handles are ignored.
func (r *Renderer) DeleteTexture(handle uint32) {
	if handle != 0 {
		gl.DeleteTextures(1, &handle)
	}
}

// BindTexture binds a texture to the given texture unit.
func (r *Renderer) BindTexture(unit int, handle uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, handle)
}

// CreateMesh uploads interleaved vertices and indices into a VAO.
// Attribute locations: 0 position, 1 normal, 2 texture coordinate.
func (r *Renderer) CreateMesh(data gpu.MeshData) (gpu.MeshHandle, error) {
	if len(data.Vertices)%gpu.VertexStride != 0 {
		return gpu.MeshHandle{}, fmt.Errorf("vertex data length %d is not a multiple of %d", len(data.Vertices), gpu.VertexStride)
	}
	if len(data.Vertices) == 0 || len(data.Indices) == 0 {
		return gpu.MeshHandle{}, nil
	}

	r.clearErrors()
	var h gpu.MeshHandle
	gl.GenVertexArrays(1, &h.VAO)
	gl.BindVertexArray(h.VAO)

	gl.GenBuffers(1, &h.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, unsafe.Pointer(&data.Vertices[0]), gl.STATIC_DRAW)

	const stride = int32(gpu.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &h.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, unsafe.Pointer(&data.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	h.Count = int32(len(data.Indices))

	if code := gl.GetError(); code != gl.NO_ERROR {
		r.DeleteMesh(h)
		return gpu.MeshHandle{}, fmt.Errorf("mesh upload: gl error 0x%x", code)
	}
	return h, nil
}

// DeleteMesh releases the buffers of a mesh.
func (r *Renderer) DeleteMesh(h gpu.MeshHandle) {
	if h.EBO != 0 {
		gl.DeleteBuffers(1, &h.EBO)
	}
	if h.VBO != 0 {
		gl.DeleteBuffers(1, &h.VBO)
	}
	if h.VAO != 0 {
		gl.DeleteVertexArrays(1, &h.VAO)
	}
}

// DrawMesh issues an indexed triangle draw. Empty meshes are skipped.
func (r *Renderer) DrawMesh(h gpu.MeshHandle) {
	if h.VAO == 0 || h.Count == 0 {
		return
	}
	gl.BindVertexArray(h.VAO)
	gl.DrawElementsWithOffset(gl.TRIANGLES, h.Count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// maxStaleErrors bounds the drain; a lost context can report errors forever.
const maxStaleErrors = 16

// clearErrors discards error flags left by earlier calls so the check after
// an upload only sees errors the upload raised.
func (r *Renderer) clearErrors() {
	if n := drainErrors(gl.GetError); n > 0 {
		logger.Debug("discarded stale gl errors", zap.Int("count", n))
	}
}

// drainErrors calls next until it reports no error and returns how many
// error flags it consumed.
func drainErrors(next func() uint32) int {
	n := 0
	for n < maxStaleErrors && next() != gl.NO_ERROR {
		n++
	}
	return n
}

func glFormat(f gpu.TextureFormat) uint32 {
	switch f {
	case gpu.FormatRed:
		return gl.RED
	case gpu.FormatRGB:
		return gl.RGB
	default:
		return gl.RGBA
	}
}

func glFilter(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func glWrap(w gpu.Wrap) int32 {
	if w == gpu.WrapClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}
