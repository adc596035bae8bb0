package formats

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// writeGLB builds a document with two triangle meshes placed on a three level
// node tree (root -> child -> grandchild) and saves it as a binary glTF.
func writeGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()

	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	pos := modeler.WritePosition(doc, positions)
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Images = []*gltf.Image{{URI: "tex%20a.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "painted",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{0.5, 0.25, 1, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}

	doc.Meshes = []*gltf.Mesh{
		{Name: "textured", Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.NORMAL: nrm, gltf.TEXCOORD_0: uv},
			Material:   gltf.Index(0),
		}}},
		{Name: "plain", Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
		}}},
	}

	doc.Nodes = []*gltf.Node{
		{Name: "top", Mesh: gltf.Index(0), Children: []int{1}},
		{Name: "middle", Children: []int{2}},
		{Name: "bottom", Mesh: gltf.Index(1)},
	}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(dir, "tree.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("failed to save glb: %v", err)
	}
	return path
}

func TestImportGLTF(t *testing.T) {
	path := writeGLB(t, t.TempDir())

	s, err := Import(path, Triangulate|FlipUVs)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if len(s.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(s.Meshes))
	}

	var order []string
	s.Root.Walk(func(n *Node) {
		for _, mi := range n.Meshes {
			order = append(order, s.Meshes[mi].Name)
		}
	})
	if len(order) != 2 || order[0] != "textured" || order[1] != "plain" {
		t.Errorf("unexpected mesh visit order %v", order)
	}

	textured := s.Meshes[0]
	if len(textured.Faces) != 1 || len(textured.Faces[0].Indices) != 3 {
		t.Errorf("expected a single triangle, got %v", textured.Faces)
	}
	if !textured.HasNormals() || !textured.HasTexCoords(0) {
		t.Error("expected normals and uvs on textured mesh")
	}
	if textured.TexCoords[0][0] != (mgl32.Vec2{0, 1}) {
		t.Errorf("expected flipped uv (0, 1), got %v", textured.TexCoords[0][0])
	}

	mat := s.Materials[textured.MaterialIndex]
	if c, _ := mat.Color(KeyColorDiffuse); c != (mgl32.Vec3{0.5, 0.25, 1}) {
		t.Errorf("expected diffuse (0.5, 0.25, 1), got %v", c)
	}
	if p, _ := mat.Texture(TextureDiffuse, 0); p != "tex a.png" {
		t.Errorf("expected unescaped texture path, got %q", p)
	}
	if _, ok := mat.Float(KeyShininess); ok {
		t.Error("expected no shininess on a glTF material")
	}

	plain := s.Meshes[1]
	if len(plain.Faces) != 1 {
		t.Errorf("expected non-indexed primitive to produce 1 face, got %d", len(plain.Faces))
	}
	if got := s.Materials[plain.MaterialIndex].Name; got != DefaultMaterialName {
		t.Errorf("expected default material, got %s", got)
	}
}

func TestGLTFFaces(t *testing.T) {
	tests := []struct {
		name string
		mode gltf.PrimitiveMode
		idx  []uint32
		want [][]uint32
	}{
		{"list", gltf.PrimitiveTriangles, []uint32{0, 1, 2, 3, 4, 5}, [][]uint32{{0, 1, 2}, {3, 4, 5}}},
		{"strip", gltf.PrimitiveTriangleStrip, []uint32{0, 1, 2, 3}, [][]uint32{{0, 1, 2}, {2, 1, 3}}},
		{"fan", gltf.PrimitiveTriangleFan, []uint32{0, 1, 2, 3}, [][]uint32{{0, 1, 2}, {0, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces := gltfFaces(tt.mode, tt.idx)
			if len(faces) != len(tt.want) {
				t.Fatalf("expected %d faces, got %d", len(tt.want), len(faces))
			}
			for i, w := range tt.want {
				for j := range w {
					if faces[i].Indices[j] != w[j] {
						t.Errorf("face %d: expected %v, got %v", i, w, faces[i].Indices)
						break
					}
				}
			}
		})
	}
}

// triangleDoc returns a document holding one indexed triangle, plus the
// accessor indices of its positions and indices. Meshes, nodes and scenes are
// left for the caller.
func triangleDoc() (doc *gltf.Document, pos, idx int) {
	doc = gltf.NewDocument()
	pos = modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx = modeler.WriteIndices(doc, []uint16{0, 1, 2})
	return doc, pos, idx
}

func trianglePrimitive(pos, idx int) *gltf.Primitive {
	return &gltf.Primitive{
		Indices:    gltf.Index(idx),
		Attributes: map[string]int{gltf.POSITION: pos},
	}
}

func TestReadGLTF_Features(t *testing.T) {
	tests := []struct {
		name  string
		build func(doc *gltf.Document, pos, idx int)
		check func(t *testing.T, s *Scene)
	}{
		{
			name: "specular extension",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Images = []*gltf.Image{{URI: "spec.png"}}
				doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
				doc.Materials = []*gltf.Material{{
					Name: "shiny",
					Extensions: gltf.Extensions{
						extSpecular: json.RawMessage(`{"specularColorFactor":[0.5,0.25,1],"specularColorTexture":{"index":0}}`),
					},
				}}
				prim := trianglePrimitive(pos, idx)
				prim.Material = gltf.Index(0)
				doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{prim}}}
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
			},
			check: func(t *testing.T, s *Scene) {
				mat := s.Materials[s.Meshes[0].MaterialIndex]
				if c, ok := mat.Color(KeyColorSpecular); !ok || c != (mgl32.Vec3{0.5, 0.25, 1}) {
					t.Errorf("expected specular (0.5, 0.25, 1), got %v (present %v)", c, ok)
				}
				if p, _ := mat.Texture(TextureSpecular, 0); p != "spec.png" {
					t.Errorf("expected specular map spec.png, got %q", p)
				}
			},
		},
		{
			name: "specular extension without factor",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Materials = []*gltf.Material{{
					Name:       "default-spec",
					Extensions: gltf.Extensions{extSpecular: json.RawMessage(`{}`)},
				}}
				prim := trianglePrimitive(pos, idx)
				prim.Material = gltf.Index(0)
				doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{prim}}}
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
			},
			check: func(t *testing.T, s *Scene) {
				if c, _ := s.Materials[0].Color(KeyColorSpecular); c != (mgl32.Vec3{1, 1, 1}) {
					t.Errorf("expected white specular, got %v", c)
				}
			},
		},
		{
			name: "point and line primitives skipped",
			build: func(doc *gltf.Document, pos, idx int) {
				lines := trianglePrimitive(pos, idx)
				lines.Mode = gltf.PrimitiveLines
				points := trianglePrimitive(pos, idx)
				points.Mode = gltf.PrimitivePoints
				doc.Meshes = []*gltf.Mesh{
					{Name: "tri", Primitives: []*gltf.Primitive{trianglePrimitive(pos, idx)}},
					{Name: "wire", Primitives: []*gltf.Primitive{lines, points}},
				}
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}, {Mesh: gltf.Index(1)}}
				doc.Scenes[0].Nodes = []int{0, 1}
			},
			check: func(t *testing.T, s *Scene) {
				if len(s.Meshes) != 1 || s.Meshes[0].Name != "tri" {
					t.Fatalf("expected only the triangle mesh, got %d meshes", len(s.Meshes))
				}
				if !containsWarning(s.Warnings, "mesh 1 primitive 0") || !containsWarning(s.Warnings, "mesh 1 primitive 1") {
					t.Errorf("expected a warning per skipped primitive, got %v", s.Warnings)
				}
			},
		},
		{
			name: "embedded images skipped",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Images = []*gltf.Image{
					{URI: "data:image/png;base64,iVBORw0KGgo="},
					{BufferView: doc.Accessors[idx].BufferView, MimeType: "image/png"},
				}
				doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}, {Source: gltf.Index(1)}}
				doc.Materials = []*gltf.Material{{
					Name:                 "packed",
					PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
					NormalTexture:        &gltf.NormalTexture{Index: gltf.Index(1)},
				}}
				prim := trianglePrimitive(pos, idx)
				prim.Material = gltf.Index(0)
				doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{prim}}}
				doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
				doc.Scenes[0].Nodes = []int{0}
			},
			check: func(t *testing.T, s *Scene) {
				mat := s.Materials[0]
				if n := mat.TextureCount(TextureDiffuse) + mat.TextureCount(TextureNormal); n != 0 {
					t.Errorf("expected no texture paths, got %d", n)
				}
				if !containsWarning(s.Warnings, "image 0 is embedded") || !containsWarning(s.Warnings, "image 1 is embedded") {
					t.Errorf("expected embedded image warnings, got %v", s.Warnings)
				}
			},
		},
		{
			name: "node cycle broken",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{trianglePrimitive(pos, idx)}}}
				doc.Nodes = []*gltf.Node{
					{Name: "a", Mesh: gltf.Index(0), Children: []int{1}},
					{Name: "b", Children: []int{0}},
				}
				doc.Scenes[0].Nodes = []int{0}
			},
			check: func(t *testing.T, s *Scene) {
				if !containsWarning(s.Warnings, "cycle broken") {
					t.Errorf("expected cycle warning, got %v", s.Warnings)
				}
				visits := 0
				s.Root.Walk(func(n *Node) { visits += len(n.Meshes) })
				if visits != 1 {
					t.Errorf("expected mesh visited once, got %d", visits)
				}
			},
		},
		{
			name: "parentless roots without scene",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Meshes = []*gltf.Mesh{
					{Name: "first", Primitives: []*gltf.Primitive{trianglePrimitive(pos, idx)}},
					{Name: "second", Primitives: []*gltf.Primitive{trianglePrimitive(pos, idx)}},
				}
				doc.Nodes = []*gltf.Node{
					{Name: "child", Mesh: gltf.Index(1)},
					{Name: "top", Mesh: gltf.Index(0), Children: []int{0}},
					{Name: "lonely"},
				}
				doc.Scene = nil
				doc.Scenes = nil
			},
			check: func(t *testing.T, s *Scene) {
				var names []string
				for _, c := range s.Root.Children {
					names = append(names, c.Name)
				}
				if len(names) != 2 || names[0] != "top" || names[1] != "lonely" {
					t.Errorf("expected roots [top lonely], got %v", names)
				}
				var order []string
				s.Root.Walk(func(n *Node) {
					for _, mi := range n.Meshes {
						order = append(order, s.Meshes[mi].Name)
					}
				})
				if len(order) != 2 || order[0] != "first" || order[1] != "second" {
					t.Errorf("expected visit order [first second], got %v", order)
				}
			},
		},
		{
			name: "every node has a parent without scene",
			build: func(doc *gltf.Document, pos, idx int) {
				doc.Meshes = []*gltf.Mesh{{Name: "m", Primitives: []*gltf.Primitive{trianglePrimitive(pos, idx)}}}
				doc.Nodes = []*gltf.Node{
					{Name: "a", Children: []int{1}},
					{Name: "b", Mesh: gltf.Index(0), Children: []int{0}},
				}
				doc.Scene = nil
				doc.Scenes = nil
			},
			check: func(t *testing.T, s *Scene) {
				if !containsWarning(s.Warnings, "no parentless node") {
					t.Errorf("expected missing root warning, got %v", s.Warnings)
				}
				visits := 0
				s.Root.Walk(func(n *Node) { visits += len(n.Meshes) })
				if visits != 1 {
					t.Errorf("expected mesh reachable once, got %d", visits)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, pos, idx := triangleDoc()
			tt.build(doc, pos, idx)

			path := filepath.Join(t.TempDir(), "case.glb")
			if err := gltf.SaveBinary(doc, path); err != nil {
				t.Fatalf("failed to save glb: %v", err)
			}

			s, err := ReadGLTF(path)
			if err != nil {
				t.Fatalf("ReadGLTF failed: %v", err)
			}
			tt.check(t, s)
		})
	}
}
