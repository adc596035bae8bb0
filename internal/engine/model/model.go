package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelview/internal/engine/gpu"
)

// Shader receives texture unit and material uniforms during Draw.
type Shader interface {
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
}

// Model is a loaded model file: a flat list of meshes in scene-graph
// pre-order plus a position. Geometry, textures and materials do not change
// after Load.
type Model struct {
	path     string
	position mgl32.Vec3
	meshes   []*Mesh
	bounds   Bounds

	dev      gpu.Device
	textures []uint32
	err      error
	released bool
}

// Path returns the file the model was loaded from.
func (m *Model) Path() string { return m.path }

// Meshes returns the meshes in load order.
func (m *Model) Meshes() []*Mesh { return m.meshes }

// SetPosition moves the model. It touches no GPU state.
func (m *Model) SetPosition(p mgl32.Vec3) { m.position = p }

// SetPositionXYZ moves the model.
func (m *Model) SetPositionXYZ(x, y, z float32) { m.position = mgl32.Vec3{x, y, z} }

// Position returns the current position.
func (m *Model) Position() mgl32.Vec3 { return m.position }

// Matrix returns the model-to-world transform for the current position.
func (m *Model) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(m.position[0], m.position[1], m.position[2])
}

// Bounds returns the box around every mesh in model space.
func (m *Model) Bounds() Bounds { return m.bounds }

// WorldBounds returns Bounds moved to the current position.
func (m *Model) WorldBounds() Bounds { return m.bounds.Translate(m.position) }

// TextureCount returns the number of distinct GPU textures the model owns.
func (m *Model) TextureCount() int { return len(m.textures) }

// Err returns the combined non-fatal errors of the load (skipped textures,
// failed mesh uploads, dropped faces), or the import error of an empty model.
// Use multierr.Errors to split it.
func (m *Model) Err() error { return m.err }

// Draw draws every mesh in load order. No sorting is applied.
func (m *Model) Draw(s Shader) {
	if m.released {
		return
	}
	for _, mesh := range m.meshes {
		mesh.draw(m.dev, s)
	}
}

// Destroy releases every mesh buffer and every texture exactly once,
// including textures shared by several meshes. Calling it again does nothing.
func (m *Model) Destroy() {
	if m.released || m.dev == nil {
		m.released = true
		return
	}
	m.released = true

	for _, mesh := range m.meshes {
		m.dev.DeleteMesh(mesh.handle)
		mesh.handle = gpu.MeshHandle{}
	}
	for _, h := range m.textures {
		m.dev.DeleteTexture(h)
	}
	m.textures = nil
}
