package model

import (
	"fmt"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/pkg/formats"
)

// Mesh is one drawable submesh: vertices, triangle indices, textures
// (diffuse first, then specular) and a material.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Textures []Texture
	Material Material
	Bounds   Bounds

	handle gpu.MeshHandle
}

// Handle returns the GPU buffers of the mesh. It is zero for empty meshes
// and after the owning model is destroyed.
func (m *Mesh) Handle() gpu.MeshHandle {
	return m.handle
}

// TextureCount returns the number of textures of the given kind.
func (m *Mesh) TextureCount(kind TextureKind) int {
	n := 0
	for _, t := range m.Textures {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// buildGeometry converts an imported mesh into vertices and a flat index list.
// Missing normals and texture coordinates are zero; only texture channel 0 is
// read. Faces are copied in order; a face referencing a vertex outside the mesh
// is dropped and counted.
func buildGeometry(src *formats.Mesh) (vertices []Vertex, indices []uint32, dropped int) {
	hasNormals := src.HasNormals()
	hasUV := src.HasTexCoords(0)

	vertices = make([]Vertex, len(src.Positions))
	for i, p := range src.Positions {
		v := Vertex{Position: p}
		if hasNormals {
			v.Normal = src.Normals[i]
		}
		if hasUV {
			v.TexCoord = src.TexCoords[0][i]
		}
		vertices[i] = v
	}

	count := uint32(len(vertices))
	for _, f := range src.Faces {
		valid := true
		for _, idx := range f.Indices {
			if idx >= count {
				valid = false
				break
			}
		}
		if !valid {
			dropped++
			continue
		}
		indices = append(indices, f.Indices...)
	}
	return vertices, indices, dropped
}

// computeBounds returns the box around every vertex.
func computeBounds(vertices []Vertex) Bounds {
	b := EmptyBounds()
	for _, v := range vertices {
		b = b.Extend(v.Position)
	}
	return b
}

// interleave packs vertices as position, normal, texcoord floats.
func interleave(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*gpu.VertexStride)
	for _, v := range vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}

func (m *Mesh) upload(dev gpu.Device) error {
	h, err := dev.CreateMesh(gpu.MeshData{Vertices: interleave(m.Vertices), Indices: m.Indices})
	if err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	m.handle = h
	return nil
}

// draw binds textures to consecutive units, naming each sampler by kind and
// per-kind ordinal (texture_diffuse1, texture_diffuse2, texture_specular1...),
// sets texture_<kind>_count for every kind, uploads the material and issues
// the draw call. Samplers of a kind whose count is 0 are left stale.
func (m *Mesh) draw(dev gpu.Device, s Shader) {
	var counters [len(Kinds)]int
	for unit, t := range m.Textures {
		counters[t.Kind]++
		s.SetInt(fmt.Sprintf("%s%d", t.Kind.Uniform(), counters[t.Kind]), int32(unit))
		dev.BindTexture(unit, t.Handle)
	}
	for _, kind := range Kinds {
		s.SetInt(kind.Uniform()+"_count", int32(counters[kind]))
	}
	m.Material.Apply(s)
	dev.DrawMesh(m.handle)
}
