package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/internal/engine/texture"
	"github.com/Faultbox/modelview/pkg/formats"
)

// loadContext is the state of one Load call. Nothing in it outlives the load
// except the handles moved into the Model.
type loadContext struct {
	dir    string
	dev    gpu.Device
	decode DecodeFunc
	log    *zap.Logger

	// loaded maps a material texture path, exactly as written in the file,
	// to the texture created for it.
	loaded map[string]Texture
	// failed remembers paths that could not be decoded or uploaded.
	failed map[string]error

	// owned lists every texture handle created, each once.
	owned []uint32
	errs  error
}

func newLoadContext(dir string, dev gpu.Device, decode DecodeFunc, log *zap.Logger) *loadContext {
	return &loadContext{
		dir:    dir,
		dev:    dev,
		decode: decode,
		log:    log,
		loaded: make(map[string]Texture),
		failed: make(map[string]error),
	}
}

// resolveTexturesOfKind returns one texture per slot of the given kind on the
// material, reusing textures already loaded from the same path. Slots that
// fail are skipped and recorded.
func (lc *loadContext) resolveTexturesOfKind(mat *formats.Material, kind TextureKind) []Texture {
	if mat == nil {
		return nil
	}
	typ := kind.sourceType()
	n := mat.TextureCount(typ)

	var out []Texture
	for i := 0; i < n; i++ {
		rel, _ := mat.Texture(typ, i)

		if tex, ok := lc.loaded[rel]; ok {
			lc.log.Debug("texture cache hit", zap.String("path", rel), zap.Stringer("kind", kind))
			tex.Kind = kind
			out = append(out, tex)
			continue
		}
		if _, ok := lc.failed[rel]; ok {
			continue
		}

		tex, err := lc.loadTexture(rel, kind)
		if err != nil {
			lc.failed[rel] = err
			lc.errs = multierr.Append(lc.errs, err)
			lc.log.Warn("texture skipped", zap.String("path", rel), zap.Error(err))
			continue
		}
		lc.loaded[rel] = tex
		out = append(out, tex)
	}
	return out
}

// loadTexture decodes an image file and uploads it. The image is decoded
// before any GPU allocation, so a decode failure holds no handle.
func (lc *loadContext) loadTexture(rel string, kind TextureKind) (Texture, error) {
	full := texture.ResolvePath(lc.dir, rel)
	lc.log.Debug("decoding texture", zap.String("path", full))

	img, err := lc.decode(full)
	if err != nil {
		return Texture{}, fmt.Errorf("%w: %s: %w", ErrTextureDecode, rel, err)
	}
	format, err := formatForComponents(img.Components)
	if err != nil {
		return Texture{}, fmt.Errorf("%s: %w", rel, err)
	}

	handle, err := lc.dev.CreateTexture(gpu.FileTexture(img.Width, img.Height, format, img.Pix))
	if err != nil {
		return Texture{}, fmt.Errorf("%w: %s: %w", ErrTextureDecode, rel, err)
	}
	lc.owned = append(lc.owned, handle)
	return Texture{Handle: handle, Kind: kind, Path: rel}, nil
}

// synthesizeDiffuseTexture creates a 1x1 texture of the material's diffuse
// color, white when the material has none. Synthesized textures are never
// shared: two materials of the same color get two textures.
func (lc *loadContext) synthesizeDiffuseTexture(mat *formats.Material) (Texture, error) {
	color := mgl32.Vec3{1, 1, 1}
	if mat != nil {
		if c, ok := mat.Color(formats.KeyColorDiffuse); ok {
			color = c
		}
	}
	rgb := QuantizeColor(color)

	handle, err := lc.dev.CreateTexture(gpu.SolidTexture(rgb))
	if err != nil {
		return Texture{}, fmt.Errorf("solid texture %v: %w", rgb, err)
	}
	lc.owned = append(lc.owned, handle)
	lc.log.Debug("synthesized diffuse texture", zap.Uint8s("rgb", rgb[:]))
	return Texture{Handle: handle, Kind: KindDiffuse}, nil
}

// formatForComponents maps a decoded channel count to a texture format.
func formatForComponents(n int) (gpu.TextureFormat, error) {
	switch n {
	case 1:
		return gpu.FormatRed, nil
	case 3:
		return gpu.FormatRGB, nil
	case 4:
		return gpu.FormatRGBA, nil
	}
	return 0, fmt.Errorf("%w: %d components", ErrUnsupportedFormat, n)
}
