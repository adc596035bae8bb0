// glTF 2.0 (.gltf, .glb) reader.
package formats

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const extSpecular = "KHR_materials_specular"

// ReadGLTF reads a glTF 2.0 document. Every primitive becomes one mesh, the
// node tree of the default scene is kept and node transforms are ignored.
func ReadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filepath.Base(path), err)
	}

	s := &Scene{}
	for i, m := range doc.Materials {
		s.Materials = append(s.Materials, gltfMaterial(doc, i, m, s))
	}

	defaultMat := -1
	meshMap := make([][]int, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mesh, err := gltfPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("%w: mesh %d primitive %d: %v", ErrParse, mi, pi, err)
			}
			if mesh == nil {
				s.warnf("mesh %d primitive %d: mode %v skipped", mi, pi, prim.Mode)
				continue
			}
			mesh.Name = gm.Name
			if len(gm.Primitives) > 1 {
				mesh.Name = fmt.Sprintf("%s_%d", gm.Name, pi)
			}
			if prim.Material != nil {
				mesh.MaterialIndex = *prim.Material
			} else {
				if defaultMat < 0 {
					defaultMat = len(s.Materials)
					s.Materials = append(s.Materials, gltfDefaultMaterial())
				}
				mesh.MaterialIndex = defaultMat
			}
			meshMap[mi] = append(meshMap[mi], len(s.Meshes))
			s.Meshes = append(s.Meshes, mesh)
		}
	}

	s.Root = &Node{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	visited := make([]bool, len(doc.Nodes))
	for _, ni := range gltfRootNodes(doc, s) {
		if child := gltfNode(doc, ni, meshMap, visited, s); child != nil {
			s.Root.Children = append(s.Root.Children, child)
		}
	}
	return s, nil
}

// gltfRootNodes returns the top-level nodes of the default scene, or every
// parentless node when the document declares no scene. When every node has a
// parent the graph is cyclic and the walk starts at node 0.
func gltfRootNodes(doc *gltf.Document, s *Scene) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 && len(doc.Nodes) > 0 {
		s.warnf("no scene and no parentless node, cycle broken at node 0")
		roots = []int{0}
	}
	return roots
}

func gltfNode(doc *gltf.Document, idx int, meshMap [][]int, visited []bool, s *Scene) *Node {
	if idx < 0 || idx >= len(doc.Nodes) {
		s.warnf("node index %d out of range", idx)
		return nil
	}
	if visited[idx] {
		s.warnf("node %d visited twice, cycle broken", idx)
		return nil
	}
	visited[idx] = true

	gn := doc.Nodes[idx]
	n := &Node{Name: gn.Name}
	if n.Name == "" {
		n.Name = fmt.Sprintf("node%d", idx)
	}
	if gn.Mesh != nil && *gn.Mesh >= 0 && *gn.Mesh < len(meshMap) {
		n.Meshes = append(n.Meshes, meshMap[*gn.Mesh]...)
	}
	for _, c := range gn.Children {
		if child := gltfNode(doc, c, meshMap, visited, s); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// gltfPrimitive converts one primitive. It returns nil for point and line primitives.
func gltfPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	m := &Mesh{Positions: make([]mgl32.Vec3, len(positions))}
	for i, p := range positions {
		m.Positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		m.Normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			m.Normals[i] = n
		}
	}

	for ch := 0; ch < MaxTexCoordChannels; ch++ {
		idx, ok := prim.Attributes[fmt.Sprintf("TEXCOORD_%d", ch)]
		if !ok {
			continue
		}
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("texcoord %d: %w", ch, err)
		}
		m.TexCoords[ch] = make([]mgl32.Vec2, len(uvs))
		for i, uv := range uvs {
			m.TexCoords[ch][i] = uv
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m.Faces = gltfFaces(prim.Mode, indices)
	return m, nil
}

func gltfFaces(mode gltf.PrimitiveMode, indices []uint32) []Face {
	var faces []Face
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				faces = append(faces, Face{Indices: []uint32{indices[i], indices[i+1], indices[i+2]}})
			} else {
				faces = append(faces, Face{Indices: []uint32{indices[i+1], indices[i], indices[i+2]}})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, Face{Indices: []uint32{indices[0], indices[i], indices[i+1]}})
		}
	default:
		faces = make([]Face, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, Face{Indices: []uint32{indices[i], indices[i+1], indices[i+2]}})
		}
	}
	return faces
}

func gltfDefaultMaterial() *Material {
	m := NewMaterial(DefaultMaterialName)
	m.SetColor(KeyColorDiffuse, mgl32.Vec3{1, 1, 1})
	return m
}

func gltfMaterial(doc *gltf.Document, idx int, gm *gltf.Material, s *Scene) *Material {
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("material%d", idx)
	}
	m := NewMaterial(name)

	// glTF defaults baseColorFactor to opaque white.
	diffuse := mgl32.Vec3{1, 1, 1}
	opacity := float32(1)
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			diffuse = mgl32.Vec3{float32(f[0]), float32(f[1]), float32(f[2])}
			opacity = float32(f[3])
		}
		if pbr.BaseColorTexture != nil {
			if path, ok := gltfImagePath(doc, pbr.BaseColorTexture.Index, s); ok {
				m.AddTexture(TextureDiffuse, path)
			}
		}
	}
	m.SetColor(KeyColorDiffuse, diffuse)
	m.SetFloat(KeyOpacity, opacity)

	e := gm.EmissiveFactor
	if e[0] != 0 || e[1] != 0 || e[2] != 0 {
		m.SetColor(KeyColorEmissive, mgl32.Vec3{float32(e[0]), float32(e[1]), float32(e[2])})
	}

	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		if path, ok := gltfImagePath(doc, *gm.NormalTexture.Index, s); ok {
			m.AddTexture(TextureNormal, path)
		}
	}

	if raw, ok := gm.Extensions[extSpecular].(json.RawMessage); ok {
		var spec struct {
			SpecularColorFactor  *[3]float32 `json:"specularColorFactor"`
			SpecularColorTexture *struct {
				Index int `json:"index"`
			} `json:"specularColorTexture"`
		}
		if err := json.Unmarshal(raw, &spec); err != nil {
			s.warnf("material %q: %s: %v", name, extSpecular, err)
		} else {
			// The extension defaults specularColorFactor to white.
			factor := mgl32.Vec3{1, 1, 1}
			if spec.SpecularColorFactor != nil {
				factor = mgl32.Vec3(*spec.SpecularColorFactor)
			}
			m.SetColor(KeyColorSpecular, factor)
			if spec.SpecularColorTexture != nil {
				if path, ok := gltfImagePath(doc, spec.SpecularColorTexture.Index, s); ok {
					m.AddTexture(TextureSpecular, path)
				}
			}
		}
	}
	return m
}

// gltfImagePath returns the file path of a texture's image relative to the
// document. Embedded images have no path and are reported as warnings.
func gltfImagePath(doc *gltf.Document, texIdx int, s *Scene) (string, bool) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		s.warnf("texture index %d out of range", texIdx)
		return "", false
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		s.warnf("texture %d has no image source", texIdx)
		return "", false
	}
	img := doc.Images[*tex.Source]
	if img.BufferView != nil || img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		s.warnf("image %d is embedded, skipped", *tex.Source)
		return "", false
	}
	p, err := url.PathUnescape(img.URI)
	if err != nil {
		p = img.URI
	}
	return p, true
}
