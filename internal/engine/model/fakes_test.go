package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/internal/engine/texture"
	"github.com/Faultbox/modelview/pkg/formats"
)

// fakeDevice records every GPU call instead of talking to a driver.
type fakeDevice struct {
	next uint32

	textures       map[uint32]gpu.TextureDesc
	deletedTexture map[uint32]int
	failTextures   bool

	meshes        []gpu.MeshData
	deletedMeshes []gpu.MeshHandle

	binds []bindCall
	draws []gpu.MeshHandle
}

type bindCall struct {
	unit   int
	handle uint32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures:       make(map[uint32]gpu.TextureDesc),
		deletedTexture: make(map[uint32]int),
	}
}

func (d *fakeDevice) CreateTexture(desc gpu.TextureDesc) (uint32, error) {
	if d.failTextures {
		return 0, errors.New("out of texture memory")
	}
	if err := desc.Validate(); err != nil {
		return 0, err
	}
	d.next++
	d.textures[d.next] = desc
	return d.next, nil
}

func (d *fakeDevice) DeleteTexture(handle uint32) {
	d.deletedTexture[handle]++
}

func (d *fakeDevice) BindTexture(unit int, handle uint32) {
	d.binds = append(d.binds, bindCall{unit, handle})
}

func (d *fakeDevice) CreateMesh(data gpu.MeshData) (gpu.MeshHandle, error) {
	d.meshes = append(d.meshes, data)
	d.next++
	return gpu.MeshHandle{VAO: d.next, VBO: d.next, EBO: d.next, Count: int32(len(data.Indices))}, nil
}

func (d *fakeDevice) DeleteMesh(h gpu.MeshHandle) {
	d.deletedMeshes = append(d.deletedMeshes, h)
}

func (d *fakeDevice) DrawMesh(h gpu.MeshHandle) {
	d.draws = append(d.draws, h)
}

// fakeShader records uniform uploads.
type fakeShader struct {
	ints   map[string]int32
	floats map[string]float32
	vecs   map[string]mgl32.Vec3
}

func newFakeShader() *fakeShader {
	return &fakeShader{
		ints:   make(map[string]int32),
		floats: make(map[string]float32),
		vecs:   make(map[string]mgl32.Vec3),
	}
}

func (s *fakeShader) SetInt(name string, v int32)       { s.ints[name] = v }
func (s *fakeShader) SetFloat(name string, v float32)   { s.floats[name] = v }
func (s *fakeShader) SetVec3(name string, v mgl32.Vec3) { s.vecs[name] = v }

// countingDecoder serves fixed images by path and counts decode calls.
type countingDecoder struct {
	images map[string]texture.Image
	calls  map[string]int
}

func newCountingDecoder() *countingDecoder {
	return &countingDecoder{
		images: make(map[string]texture.Image),
		calls:  make(map[string]int),
	}
}

func (c *countingDecoder) add(path string, components int) {
	c.images[path] = texture.Image{
		Pix:        make([]byte, 2*2*components),
		Width:      2,
		Height:     2,
		Components: components,
	}
}

func (c *countingDecoder) decode(path string) (texture.Image, error) {
	c.calls[path]++
	img, ok := c.images[path]
	if !ok {
		return texture.Image{}, fmt.Errorf("open %s: no such file", path)
	}
	return img, nil
}

func (c *countingDecoder) total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// sceneImporter returns a fixed scene.
func sceneImporter(s *formats.Scene, err error) formats.Importer {
	return formats.ImporterFunc(func(string, formats.PostProcess) (*formats.Scene, error) {
		return s, err
	})
}

// triangle returns a 3-vertex mesh using the given material.
func triangle(name string, material int) *formats.Mesh {
	return &formats.Mesh{
		Name:          name,
		Positions:     []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:         []formats.Face{{Indices: []uint32{0, 1, 2}}},
		MaterialIndex: material,
	}
}

// flatScene puts every mesh on the root node.
func flatScene(meshes []*formats.Mesh, materials ...*formats.Material) *formats.Scene {
	root := &formats.Node{Name: "root"}
	for i := range meshes {
		root.Meshes = append(root.Meshes, i)
	}
	return &formats.Scene{Root: root, Meshes: meshes, Materials: materials}
}

func loadScene(s *formats.Scene, dev *fakeDevice, dec *countingDecoder, opts ...Option) (*Model, error) {
	opts = append([]Option{WithImporter(sceneImporter(s, nil)), WithDecoder(dec.decode)}, opts...)
	return Load("models/test.obj", dev, opts...)
}
