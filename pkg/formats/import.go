package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Import errors.
var (
	ErrUnknownFormat = errors.New("unknown model format")
	ErrInvalidScene  = errors.New("invalid scene")
	ErrParse         = errors.New("parse error")
)

// PostProcess selects the steps applied to a scene after reading.
type PostProcess uint32

const (
	// Triangulate splits every face with more than 3 indices into a triangle fan.
	Triangulate PostProcess = 1 << iota
	// FlipUVs replaces v with 1-v on every texture coordinate channel.
	FlipUVs
)

// Importer reads a model file into a Scene.
type Importer interface {
	Import(path string, flags PostProcess) (*Scene, error)
}

// ImporterFunc adapts a function to the Importer interface.
type ImporterFunc func(path string, flags PostProcess) (*Scene, error)

// Import calls f(path, flags).
func (f ImporterFunc) Import(path string, flags PostProcess) (*Scene, error) {
	return f(path, flags)
}

// DefaultImporter dispatches on file extension to the built-in readers.
var DefaultImporter Importer = ImporterFunc(Import)

// Extensions lists the file extensions Import understands.
func Extensions() []string {
	return []string{".obj", ".gltf", ".glb"}
}

// Import reads the model file at path, applies the requested post-processing
// and validates the result.
func Import(path string, flags PostProcess) (*Scene, error) {
	var (
		s   *Scene
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		s, err = ReadOBJ(path)
	case ".gltf", ".glb":
		s, err = ReadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if flags&Triangulate != 0 {
		TriangulateScene(s)
	}
	if flags&FlipUVs != 0 {
		FlipSceneUVs(s)
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// TriangulateScene splits polygons into triangle fans. Points and lines are left untouched.
func TriangulateScene(s *Scene) {
	for _, m := range s.Meshes {
		needed := false
		for _, f := range m.Faces {
			if len(f.Indices) > 3 {
				needed = true
				break
			}
		}
		if !needed {
			continue
		}

		faces := make([]Face, 0, len(m.Faces))
		for _, f := range m.Faces {
			if len(f.Indices) <= 3 {
				faces = append(faces, f)
				continue
			}
			for k := 1; k+1 < len(f.Indices); k++ {
				faces = append(faces, Face{Indices: []uint32{f.Indices[0], f.Indices[k], f.Indices[k+1]}})
			}
		}
		m.Faces = faces
	}
}

// FlipSceneUVs flips the v coordinate of every texture channel of every mesh.
func FlipSceneUVs(s *Scene) {
	for _, m := range s.Meshes {
		for ch := range m.TexCoords {
			for i := range m.TexCoords[ch] {
				m.TexCoords[ch][i][1] = 1 - m.TexCoords[ch][i][1]
			}
		}
	}
}

// Validate checks index consistency and sets SceneIncomplete when the scene
// has nothing to draw.
func Validate(s *Scene) error {
	for i, m := range s.Meshes {
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
			return fmt.Errorf("%w: mesh %d references material %d of %d", ErrInvalidScene, i, m.MaterialIndex, len(s.Materials))
		}
	}

	var bad error
	s.Root.Walk(func(n *Node) {
		if bad != nil {
			return
		}
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				bad = fmt.Errorf("%w: node %q references mesh %d of %d", ErrInvalidScene, n.Name, mi, len(s.Meshes))
				return
			}
		}
	})
	if bad != nil {
		return bad
	}

	if len(s.Meshes) == 0 {
		s.Flags |= SceneIncomplete
	}
	return nil
}
