// Wavefront OBJ (.obj) and material library (.mtl) reader.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterialName names the material assigned to faces without a usable usemtl.
const DefaultMaterialName = "DefaultMaterial"

type objFace struct {
	v, vt, vn []int // -1 when absent
	material  string
	line      int
}

type objObject struct {
	name  string
	faces []objFace
}

type objReader struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2

	objects  []*objObject
	current  *objObject
	material string
	matlibs  []string

	line  int
	scene *Scene
}

// ReadOBJ reads a Wavefront OBJ file and the material libraries it references.
// The root node is named after the file; each o/g statement becomes a child
// node holding one mesh per material used by that object.
func ReadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &objReader{scene: &Scene{}}
	if err := r.parse(f); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	matIndex := make(map[string]int)
	for _, lib := range r.matlibs {
		if err := readMTL(filepath.Join(dir, lib), r.scene, matIndex); err != nil {
			r.scene.warnf("material library %s: %v", lib, err)
		}
	}

	if err := r.build(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), matIndex); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return r.scene, nil
}

func (r *objReader) parse(src io.Reader) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		r.line++
		if err := r.parseLine(sc.Text()); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrParse, r.line, err)
		}
	}
	return sc.Err()
}

func (r *objReader) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		r.positions = append(r.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		r.normals = append(r.normals, v)
	case "vt":
		if len(fields) < 2 {
			return fmt.Errorf("vt with no coordinates")
		}
		var uv mgl32.Vec2
		for i := 0; i < 2 && i+1 < len(fields); i++ {
			f, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return err
			}
			uv[i] = float32(f)
		}
		r.uvs = append(r.uvs, uv)
	case "f":
		return r.parseFace(fields[1:])
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		if name == "" {
			name = fmt.Sprintf("unnamed%d", r.line)
		}
		if r.current != nil && len(r.current.faces) == 0 {
			r.current.name = name
			return nil
		}
		r.current = &objObject{name: name}
		r.objects = append(r.objects, r.current)
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("usemtl with no name")
		}
		r.material = strings.Join(fields[1:], " ")
	case "mtllib":
		r.matlibs = append(r.matlibs, fields[1:]...)
	case "s", "l", "p", "vp":
		// smoothing groups, lines, points and parameter space are not used
	default:
		r.scene.warnf("obj line %d: unsupported statement %q", r.line, fields[0])
	}
	return nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
// Negative indices are relative to the last element read so far.
func (r *objReader) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face with %d vertices", len(fields))
	}
	if r.current == nil {
		r.current = &objObject{name: "default"}
		r.objects = append(r.objects, r.current)
	}

	face := objFace{
		v:        make([]int, len(fields)),
		vt:       make([]int, len(fields)),
		vn:       make([]int, len(fields)),
		material: r.material,
		line:     r.line,
	}

	for i, f := range fields {
		parts := strings.Split(f, "/")

		idx, err := resolveIndex(parts[0], len(r.positions))
		if err != nil {
			return fmt.Errorf("vertex index: %v", err)
		}
		face.v[i] = idx

		face.vt[i] = -1
		if len(parts) > 1 && parts[1] != "" {
			if face.vt[i], err = resolveIndex(parts[1], len(r.uvs)); err != nil {
				return fmt.Errorf("uv index: %v", err)
			}
		}

		face.vn[i] = -1
		if len(parts) > 2 && parts[2] != "" {
			if face.vn[i], err = resolveIndex(parts[2], len(r.normals)); err != nil {
				return fmt.Errorf("normal index: %v", err)
			}
		}
	}

	r.current.faces = append(r.current.faces, face)
	return nil
}

func resolveIndex(s string, count int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case v > 0:
		return v - 1, nil
	case v < 0:
		if count+v < 0 {
			return 0, fmt.Errorf("relative index %d with %d elements", v, count)
		}
		return count + v, nil
	default:
		return 0, fmt.Errorf("index 0")
	}
}

type objVertexKey [3]int

type objMeshBuilder struct {
	mesh        *Mesh
	seen        map[objVertexKey]uint32
	missingUV   bool
	missingNorm bool
}

func (r *objReader) build(rootName string, matIndex map[string]int) error {
	s := r.scene
	s.Root = &Node{Name: rootName}

	defaultMat := -1
	unknown := make(map[string]bool)
	materialFor := func(name string) int {
		if idx, ok := matIndex[name]; ok {
			return idx
		}
		if name != "" && !unknown[name] {
			unknown[name] = true
			s.warnf("material %q not found, using default", name)
		}
		if defaultMat < 0 {
			defaultMat = len(s.Materials)
			s.Materials = append(s.Materials, NewMaterial(DefaultMaterialName))
		}
		return defaultMat
	}

	for _, obj := range r.objects {
		if len(obj.faces) == 0 {
			continue
		}
		node := &Node{Name: obj.name}

		var order []int
		builders := make(map[int]*objMeshBuilder)
		for _, face := range obj.faces {
			mat := materialFor(face.material)
			b, ok := builders[mat]
			if !ok {
				b = &objMeshBuilder{
					mesh: &Mesh{Name: obj.name, MaterialIndex: mat},
					seen: make(map[objVertexKey]uint32),
				}
				builders[mat] = b
				order = append(order, mat)
			}
			if err := r.addFace(b, face); err != nil {
				return err
			}
		}

		for _, mat := range order {
			b := builders[mat]
			if b.missingNorm {
				b.mesh.Normals = nil
			}
			if b.missingUV {
				b.mesh.TexCoords[0] = nil
			}
			if len(order) > 1 {
				b.mesh.Name = fmt.Sprintf("%s_%s", obj.name, s.Materials[mat].Name)
			}
			node.Meshes = append(node.Meshes, len(s.Meshes))
			s.Meshes = append(s.Meshes, b.mesh)
		}
		s.Root.Children = append(s.Root.Children, node)
	}
	return nil
}

func (r *objReader) addFace(b *objMeshBuilder, face objFace) error {
	indices := make([]uint32, len(face.v))
	for i := range face.v {
		key := objVertexKey{face.v[i], face.vt[i], face.vn[i]}
		if idx, ok := b.seen[key]; ok {
			indices[i] = idx
			continue
		}

		if key[0] < 0 || key[0] >= len(r.positions) {
			return fmt.Errorf("%w: line %d: vertex %d out of range", ErrParse, face.line, key[0]+1)
		}
		if key[1] >= len(r.uvs) {
			return fmt.Errorf("%w: line %d: uv %d out of range", ErrParse, face.line, key[1]+1)
		}
		if key[2] >= len(r.normals) {
			return fmt.Errorf("%w: line %d: normal %d out of range", ErrParse, face.line, key[2]+1)
		}

		m := b.mesh
		idx := uint32(len(m.Positions))
		m.Positions = append(m.Positions, r.positions[key[0]])

		var uv mgl32.Vec2
		if key[1] >= 0 {
			uv = r.uvs[key[1]]
		} else {
			b.missingUV = true
		}
		m.TexCoords[0] = append(m.TexCoords[0], uv)

		var n mgl32.Vec3
		if key[2] >= 0 {
			n = r.normals[key[2]]
		} else {
			b.missingNorm = true
		}
		m.Normals = append(m.Normals, n)

		b.seen[key] = idx
		indices[i] = idx
	}
	b.mesh.Faces = append(b.mesh.Faces, Face{Indices: indices})
	return nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// readMTL appends the materials of an .mtl file to s and records their indices by name.
func readMTL(path string, s *Scene, index map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cur *Material
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] == "newmtl" {
			name := strings.Join(fields[1:], " ")
			cur = NewMaterial(name)
			index[name] = len(s.Materials)
			s.Materials = append(s.Materials, cur)
			continue
		}
		if cur == nil {
			s.warnf("mtl line %d: %q before newmtl", line, fields[0])
			continue
		}

		if err := parseMTLStatement(cur, fields); err != nil {
			s.warnf("mtl line %d: %v", line, err)
		}
	}
	return sc.Err()
}

func parseMTLStatement(m *Material, fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "Kd", "Ka", "Ks", "Ke":
		c, err := parseVec3(args)
		if err != nil {
			return fmt.Errorf("%s: %v", fields[0], err)
		}
		m.SetColor(map[string]string{
			"Kd": KeyColorDiffuse,
			"Ka": KeyColorAmbient,
			"Ks": KeyColorSpecular,
			"Ke": KeyColorEmissive,
		}[fields[0]], c)
	case "Ns", "d", "Tr":
		if len(args) < 1 {
			return fmt.Errorf("%s with no value", fields[0])
		}
		v, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return fmt.Errorf("%s: %v", fields[0], err)
		}
		switch fields[0] {
		case "Ns":
			m.SetFloat(KeyShininess, float32(v))
		case "d":
			m.SetFloat(KeyOpacity, float32(v))
		case "Tr":
			m.SetFloat(KeyOpacity, 1-float32(v))
		}
	case "map_Kd", "map_Ks", "map_Ka", "map_Bump", "map_bump", "bump", "norm":
		if len(args) < 1 {
			return fmt.Errorf("%s with no file", fields[0])
		}
		// Options such as -s or -bm precede the file name.
		path := args[len(args)-1]
		switch fields[0] {
		case "map_Kd":
			m.AddTexture(TextureDiffuse, path)
		case "map_Ks":
			m.AddTexture(TextureSpecular, path)
		case "map_Ka":
			m.AddTexture(TextureAmbient, path)
		default:
			m.AddTexture(TextureNormal, path)
		}
	case "illum", "Ni", "Tf":
		// lighting model parameters are not used
	default:
		return fmt.Errorf("unsupported statement %q", fields[0])
	}
	return nil
}
