// Package model loads 3D model files into GPU meshes with resolved
// textures and materials, and draws them through a shader.
package model

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelview/pkg/formats"
)

// Vertex is one mesh vertex. Normal and TexCoord are zero when the source has none.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// TextureKind is the semantic slot of a texture.
type TextureKind int

const (
	KindDiffuse TextureKind = iota
	KindSpecular
)

// Kinds lists every texture kind in binding order.
var Kinds = [...]TextureKind{KindDiffuse, KindSpecular}

func (k TextureKind) String() string {
	switch k {
	case KindDiffuse:
		return "diffuse"
	case KindSpecular:
		return "specular"
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// Uniform returns the sampler name prefix of the kind. The n-th texture of a
// kind (1-based) is bound to Uniform()+n, e.g. texture_diffuse1.
func (k TextureKind) Uniform() string {
	return "texture_" + k.String()
}

func (k TextureKind) sourceType() formats.TextureType {
	switch k {
	case KindSpecular:
		return formats.TextureSpecular
	default:
		return formats.TextureDiffuse
	}
}

// Texture is a GPU texture with its slot and source path.
// Path is empty for synthesized solid-color textures.
type Texture struct {
	Handle uint32
	Kind   TextureKind
	Path   string
}

// Synthesized reports whether the texture was generated from a flat color.
func (t Texture) Synthesized() bool {
	return t.Path == ""
}

// DefaultShininess is used when a material has no usable shininess.
const DefaultShininess float32 = 32

// Material holds the lighting constants of a mesh. Colors are in [0, 1].
type Material struct {
	Diffuse   mgl32.Vec3
	Ambient   mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBounds returns an inverted box that any Extend call replaces.
func EmptyBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no point.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to include p.
func (b Bounds) Extend(p mgl32.Vec3) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Union returns the box enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Translate moves the box by d.
func (b Bounds) Translate(d mgl32.Vec3) Bounds {
	if b.Empty() {
		return b
	}
	return Bounds{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}
