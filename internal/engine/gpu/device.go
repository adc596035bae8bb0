// Package gpu describes the GPU primitives the model loader needs.
// The OpenGL implementation lives in the renderer package.
package gpu

import "fmt"

// TextureFormat is the pixel layout of texture data.
type TextureFormat int

const (
	FormatRed TextureFormat = iota
	FormatRGB
	FormatRGBA
)

// Components returns the number of bytes per pixel.
func (f TextureFormat) Components() int {
	switch f {
	case FormatRed:
		return 1
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	}
	return 0
}

func (f TextureFormat) String() string {
	switch f {
	case FormatRed:
		return "red"
	case FormatRGB:
		return "rgb"
	case FormatRGBA:
		return "rgba"
	}
	return fmt.Sprintf("Unknown(%d)", int(f))
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterLinearMipmapLinear
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterLinearMipmapLinear:
		return "linear_mipmap_linear"
	}
	return fmt.Sprintf("Unknown(%d)", int(f))
}

// Wrap is a texture coordinate wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
)

// TextureDesc describes a 2D texture upload. Pixels are tightly packed rows,
// first row at the top of the image.
type TextureDesc struct {
	Width, Height int
	Format        TextureFormat
	Pixels        []byte

	MinFilter Filter
	MagFilter Filter
	Wrap      Wrap
	Mipmaps   bool
}

// Validate checks that the pixel buffer matches the dimensions and format.
func (d TextureDesc) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid texture size %dx%d", d.Width, d.Height)
	}
	n := d.Format.Components()
	if n == 0 {
		return fmt.Errorf("invalid texture format %v", d.Format)
	}
	if want := d.Width * d.Height * n; len(d.Pixels) != want {
		return fmt.Errorf("texture %dx%d %v needs %d bytes, got %d", d.Width, d.Height, d.Format, want, len(d.Pixels))
	}
	return nil
}

// FileTexture returns the sampling setup for textures decoded from image files:
// mipmapped, repeating, trilinear minification and linear magnification.
func FileTexture(width, height int, format TextureFormat, pixels []byte) TextureDesc {
	return TextureDesc{
		Width: width, Height: height, Format: format, Pixels: pixels,
		MinFilter: FilterLinearMipmapLinear,
		MagFilter: FilterLinear,
		Wrap:      WrapRepeat,
		Mipmaps:   true,
	}
}

// SolidTexture returns a 1x1 RGB texture with nearest filtering and no mipmaps.
func SolidTexture(rgb [3]byte) TextureDesc {
	return TextureDesc{
		Width: 1, Height: 1, Format: FormatRGB, Pixels: rgb[:],
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
		Wrap:      WrapClampToEdge,
	}
}

// VertexStride is the size in floats of one interleaved vertex:
// position (3), normal (3), texture coordinate (2).
const VertexStride = 8

// MeshData is interleaved vertex data plus triangle indices.
type MeshData struct {
	Vertices []float32
	Indices  []uint32
}

// MeshHandle identifies the GPU buffers of an uploaded mesh.
type MeshHandle struct {
	VAO, VBO, EBO uint32
	Count         int32
}

// Device creates, binds and releases GPU resources. All methods must be
// called on the thread that owns the GPU context.
type Device interface {
	CreateTexture(desc TextureDesc) (uint32, error)
	DeleteTexture(handle uint32)
	BindTexture(unit int, handle uint32)

	CreateMesh(data MeshData) (MeshHandle, error)
	DeleteMesh(h MeshHandle)
	DrawMesh(h MeshHandle)
}
