package model

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/internal/engine/texture"
	"github.com/Faultbox/modelview/pkg/formats"
)

// Load imports the model file at path and creates its GPU resources on dev.
// It must run on the thread owning the GPU context.
//
// Load always returns a non-nil Model. When the file cannot be imported the
// model has no meshes and the returned error wraps ErrImport. Failures after a
// successful import (bad textures, dropped faces) leave a drawable model and
// are reported by Model.Err.
func Load(path string, dev gpu.Device, opts ...Option) (*Model, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger().With(zap.String("path", path))
	start := time.Now()

	m := &Model{path: path, position: o.position, dev: dev, bounds: EmptyBounds()}

	scene, err := o.importer.Import(path, o.flags)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	case scene == nil:
		err = fmt.Errorf("%w: %s: no scene", ErrImport, path)
	case scene.Incomplete():
		err = fmt.Errorf("%w: %s: incomplete scene", ErrImport, path)
	case scene.Root == nil:
		err = fmt.Errorf("%w: %s: no root node", ErrImport, path)
	}
	if err != nil {
		log.Error("model import failed", zap.Error(err))
		m.err = err
		return m, err
	}
	for _, w := range scene.Warnings {
		log.Warn("import warning", zap.String("detail", w))
	}

	lc := newLoadContext(texture.Dir(path), dev, o.decode, log)
	scene.Root.Walk(func(n *formats.Node) {
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(scene.Meshes) {
				lc.errs = multierr.Append(lc.errs, fmt.Errorf("node %q: mesh index %d out of range", n.Name, mi))
				continue
			}
			mesh := lc.buildMesh(scene.Meshes[mi], scene)
			m.meshes = append(m.meshes, mesh)
			m.bounds = m.bounds.Union(mesh.Bounds)
		}
	})

	m.textures = lc.owned
	m.err = lc.errs

	log.Info("model loaded",
		zap.Int("meshes", len(m.meshes)),
		zap.Int("textures", len(m.textures)),
		zap.Int("errors", len(multierr.Errors(m.err))),
		zap.Duration("took", time.Since(start)),
	)
	return m, nil
}

// buildMesh converts one imported mesh: geometry, textures (diffuse maps then
// specular maps, with a synthesized diffuse texture when there is no diffuse
// map), material and GPU buffers.
func (lc *loadContext) buildMesh(src *formats.Mesh, scene *formats.Scene) *Mesh {
	vertices, indices, dropped := buildGeometry(src)
	if dropped > 0 {
		lc.errs = multierr.Append(lc.errs, fmt.Errorf("mesh %q: %d faces reference missing vertices", src.Name, dropped))
		lc.log.Warn("faces dropped", zap.String("mesh", src.Name), zap.Int("count", dropped))
	}

	var mat *formats.Material
	if src.MaterialIndex >= 0 && src.MaterialIndex < len(scene.Materials) {
		mat = scene.Materials[src.MaterialIndex]
	}

	textures := lc.resolveTexturesOfKind(mat, KindDiffuse)
	if len(textures) == 0 {
		tex, err := lc.synthesizeDiffuseTexture(mat)
		if err != nil {
			lc.errs = multierr.Append(lc.errs, err)
			lc.log.Warn("solid texture failed", zap.String("mesh", src.Name), zap.Error(err))
		} else {
			textures = append(textures, tex)
		}
	}
	textures = append(textures, lc.resolveTexturesOfKind(mat, KindSpecular)...)

	mesh := &Mesh{
		Name:     src.Name,
		Vertices: vertices,
		Indices:  indices,
		Textures: textures,
		Material: resolveMaterial(mat),
		Bounds:   computeBounds(vertices),
	}
	if err := mesh.upload(lc.dev); err != nil {
		lc.errs = multierr.Append(lc.errs, err)
		lc.log.Warn("mesh upload failed", zap.Error(err))
	}
	return mesh
}
