// Package formats provides readers for 3D model file formats and the
// scene graph they produce.
package formats

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxTexCoordChannels is the number of texture coordinate channels a mesh can carry.
const MaxTexCoordChannels = 4

// SceneFlags describes the state of an imported scene.
type SceneFlags uint32

const (
	// SceneIncomplete marks a scene that holds no drawable meshes.
	SceneIncomplete SceneFlags = 1 << iota
)

// Scene is an imported model file: a node tree plus flat mesh and material arrays.
// Nodes reference meshes by index into Meshes, meshes reference materials by
// index into Materials.
type Scene struct {
	Flags     SceneFlags
	Root      *Node
	Meshes    []*Mesh
	Materials []*Material

	// Warnings collects non-fatal problems found while reading.
	Warnings []string
}

// Incomplete reports whether the scene is flagged incomplete.
func (s *Scene) Incomplete() bool {
	return s.Flags&SceneIncomplete != 0
}

func (s *Scene) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Node is one entry of the scene hierarchy.
type Node struct {
	Name     string
	Meshes   []int
	Children []*Node
}

// Walk visits n and all of its descendants depth-first in pre-order.
// Siblings are visited in the order of the Children slice.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			if cur.Children[i] != nil {
				stack = append(stack, cur.Children[i])
			}
		}
	}
}

// Face is one polygon of a mesh as a list of vertex indices.
type Face struct {
	Indices []uint32
}

// Mesh is an indexed vertex list with a single material.
type Mesh struct {
	Name          string
	Positions     []mgl32.Vec3
	Normals       []mgl32.Vec3
	TexCoords     [MaxTexCoordChannels][]mgl32.Vec2
	Faces         []Face
	MaterialIndex int
}

// HasNormals reports whether every vertex carries a normal.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Positions)
}

// HasTexCoords reports whether the given channel holds a coordinate for every vertex.
func (m *Mesh) HasTexCoords(channel int) bool {
	if channel < 0 || channel >= MaxTexCoordChannels {
		return false
	}
	uv := m.TexCoords[channel]
	return len(uv) > 0 && len(uv) == len(m.Positions)
}

// TextureType is the semantic slot a material texture is bound to.
type TextureType uint8

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureAmbient
	TextureNormal
)

// String returns the slot name.
func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureAmbient:
		return "ambient"
	case TextureNormal:
		return "normal"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Material property keys.
const (
	KeyColorDiffuse  = "$clr.diffuse"
	KeyColorAmbient  = "$clr.ambient"
	KeyColorSpecular = "$clr.specular"
	KeyColorEmissive = "$clr.emissive"
	KeyShininess     = "$mat.shininess"
	KeyOpacity       = "$mat.opacity"
)

// Material is a key-value property store plus per-slot texture path lists.
// Reads report whether the key is present.
type Material struct {
	Name string

	colors   map[string]mgl32.Vec3
	scalars  map[string]float32
	textures map[TextureType][]string
}

// NewMaterial creates an empty material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		colors:   make(map[string]mgl32.Vec3),
		scalars:  make(map[string]float32),
		textures: make(map[TextureType][]string),
	}
}

// SetColor stores an RGB color property.
func (m *Material) SetColor(key string, c mgl32.Vec3) {
	m.colors[key] = c
}

// Color returns an RGB color property.
func (m *Material) Color(key string) (mgl32.Vec3, bool) {
	c, ok := m.colors[key]
	return c, ok
}

// SetFloat stores a scalar property.
func (m *Material) SetFloat(key string, v float32) {
	m.scalars[key] = v
}

// Float returns a scalar property.
func (m *Material) Float(key string) (float32, bool) {
	v, ok := m.scalars[key]
	return v, ok
}

// AddTexture appends a texture path to the given slot.
func (m *Material) AddTexture(t TextureType, path string) {
	m.textures[t] = append(m.textures[t], path)
}

// TextureCount returns the number of textures in the given slot.
func (m *Material) TextureCount(t TextureType) int {
	return len(m.textures[t])
}

// Texture returns the i-th texture path of the given slot.
func (m *Material) Texture(t TextureType, i int) (string, bool) {
	paths := m.textures[t]
	if i < 0 || i >= len(paths) {
		return "", false
	}
	return paths[i], true
}
