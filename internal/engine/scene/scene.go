// Package scene holds the models shown by the viewer and draws them with one
// shader program and a directional light.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/engine/gpu"
	"github.com/Faultbox/modelview/internal/engine/lighting"
	"github.com/Faultbox/modelview/internal/engine/model"
	"github.com/Faultbox/modelview/internal/engine/picking"
	"github.com/Faultbox/modelview/internal/logger"
)

// Program is a shader program that accepts model and camera matrices.
type Program interface {
	model.Shader
	SetMat4(name string, m mgl32.Mat4)
}

// Config contains scene configuration options.
type Config struct {
	// Sun angles in degrees, see lighting.SunDirection.
	LightLongitude float32
	LightLatitude  float32
	LightColor     mgl32.Vec3

	// LoadOptions are passed to every model.Load call.
	LoadOptions []model.Option
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		LightLongitude: 45,
		LightLatitude:  50,
		LightColor:     mgl32.Vec3{1, 1, 1},
	}
}

// Scene owns a list of models and the GPU device they were loaded on.
type Scene struct {
	config Config
	dev    gpu.Device
	log    *zap.Logger

	models []*model.Model

	// Lighting
	LightDir   mgl32.Vec3
	LightColor mgl32.Vec3
}

// New creates an empty scene.
func New(dev gpu.Device, cfg Config) *Scene {
	return &Scene{
		config:     cfg,
		dev:        dev,
		log:        logger.Named("scene"),
		LightDir:   lighting.SunDirection(cfg.LightLongitude, cfg.LightLatitude),
		LightColor: cfg.LightColor,
	}
}

// Load loads a model at the given position and adds it to the scene. The
// model is added even when loading fails, in which case it draws nothing.
func (s *Scene) Load(path string, pos mgl32.Vec3, opts ...model.Option) (*model.Model, error) {
	all := make([]model.Option, 0, len(s.config.LoadOptions)+len(opts)+1)
	all = append(all, s.config.LoadOptions...)
	all = append(all, model.WithPosition(pos))
	all = append(all, opts...)

	m, err := model.Load(path, s.dev, all...)
	s.models = append(s.models, m)
	if err != nil {
		return m, err
	}
	if lerr := m.Err(); lerr != nil {
		s.log.Warn("model loaded with errors", zap.String("path", path), zap.Error(lerr))
	}
	return m, nil
}

// Add adds an already loaded model. The scene takes ownership.
func (s *Scene) Add(m *model.Model) {
	s.models = append(s.models, m)
}

// Models returns the models in draw order.
func (s *Scene) Models() []*model.Model {
	return s.models
}

// Bounds returns the world-space box around every model.
func (s *Scene) Bounds() model.Bounds {
	b := model.EmptyBounds()
	for _, m := range s.models {
		b = b.Union(m.WorldBounds())
	}
	return b
}

// Pick returns the model whose world bounds the ray enters first, or nil.
func (s *Scene) Pick(r picking.Ray) *model.Model {
	var (
		best  *model.Model
		bestT float32
	)
	for _, m := range s.models {
		b := m.WorldBounds()
		if b.Empty() {
			continue
		}
		if t, hit := r.IntersectBox(b.Min, b.Max); hit && (best == nil || t < bestT) {
			best, bestT = m, t
		}
	}
	return best
}

// Draw uploads camera and light uniforms, then draws every model with its
// own model matrix. The program must already be in use.
func (s *Scene) Draw(p Program, view, projection mgl32.Mat4) {
	p.SetMat4("view", view)
	p.SetMat4("projection", projection)
	p.SetVec3("viewPos", view.Inv().Col(3).Vec3())
	p.SetVec3("lightDir", s.LightDir)
	p.SetVec3("lightColor", s.LightColor)

	for _, m := range s.models {
		p.SetMat4("model", m.Matrix())
		m.Draw(p)
	}
}

// Destroy releases the GPU resources of every model.
func (s *Scene) Destroy() {
	for _, m := range s.models {
		m.Destroy()
	}
	s.models = nil
}
