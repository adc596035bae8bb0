package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/modelview/internal/config"
	"github.com/Faultbox/modelview/internal/engine/camera"
	"github.com/Faultbox/modelview/internal/engine/debug"
	"github.com/Faultbox/modelview/internal/engine/input"
	"github.com/Faultbox/modelview/internal/engine/model"
	"github.com/Faultbox/modelview/internal/engine/picking"
	"github.com/Faultbox/modelview/internal/engine/renderer"
	"github.com/Faultbox/modelview/internal/engine/scene"
	"github.com/Faultbox/modelview/internal/engine/scene/shaders"
	"github.com/Faultbox/modelview/internal/engine/shader"
	"github.com/Faultbox/modelview/internal/engine/window"
	"github.com/Faultbox/modelview/internal/logger"
	"github.com/Faultbox/modelview/pkg/formats"
)

// viewer ties the window, renderer, scene and camera together.
type viewer struct {
	cfg *config.Config

	win     *window.Window
	render  *renderer.Renderer
	program *shader.Program
	scene   *scene.Scene
	camera  *camera.OrbitCamera
	input   *input.Input
	shots   *debug.ScreenshotCapture

	// Set by the screenshot key; the back buffer is read before the next swap.
	wantShot bool

	// Paths picked in the file dialog, loaded on the main thread.
	pending chan string
}

func newViewer(cfg *config.Config) (*viewer, error) {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	width, height := win.DrawableSize()
	r, err := renderer.New(renderer.Config{
		Width:         width,
		Height:        height,
		MaxAnisotropy: cfg.Textures.MaxAnisotropy,
		MaxMipLevel:   cfg.Textures.MaxMipLevel,
		Multisample:   win.Samples() > 0,
		ClearColor:    [3]float32{0.2, 0.2, 0.25},
	})
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	program, err := shader.NewProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("compiling model shader: %w", err)
	}

	sceneCfg := scene.DefaultConfig()
	sceneCfg.LightLongitude = cfg.Light.Longitude
	sceneCfg.LightLatitude = cfg.Light.Latitude
	sceneCfg.LoadOptions = []model.Option{model.WithFlags(loaderFlags(cfg.Loader))}

	v := &viewer{
		cfg:     cfg,
		win:     win,
		render:  r,
		program: program,
		scene:   scene.New(r, sceneCfg),
		camera:  camera.NewOrbitCamera(),
		input:   input.New(),
		shots:   debug.NewScreenshotCapture("screenshots", "modelview"),
		pending: make(chan string, 1),
	}

	for _, mc := range cfg.Models {
		v.load(mc.Path, mgl32.Vec3(mc.Position))
	}
	if len(cfg.Models) == 0 {
		v.openDialog()
	}
	v.frame()

	return v, nil
}

// loaderFlags converts loader settings to importer post-process flags.
func loaderFlags(lc config.LoaderConfig) formats.PostProcess {
	var flags formats.PostProcess
	if lc.Triangulate {
		flags |= formats.Triangulate
	}
	if lc.FlipUVs {
		flags |= formats.FlipUVs
	}
	return flags
}

func (v *viewer) load(path string, pos mgl32.Vec3) {
	m, err := v.scene.Load(path, pos)
	if err != nil {
		dialog.Message("Could not open %s:\n%v", path, err).Title("Open Model").Error()
		return
	}
	name := filepath.Base(path)
	v.win.SetTitle(fmt.Sprintf("%s - %s", v.cfg.Window.Title, name))
	v.shots.SetPrefix(strings.TrimSuffix(name, filepath.Ext(name)))
	logger.Info("model ready",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes())),
		zap.Int("textures", m.TextureCount()))
}

// openDialog shows the file picker without blocking the render loop.
func (v *viewer) openDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("3D Models", "obj", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case v.pending <- filename:
		default:
		}
	}()
}

// frame points the camera at everything in the scene.
func (v *viewer) frame() {
	b := v.scene.Bounds()
	if b.Empty() {
		return
	}
	v.camera.FitToBounds(b.Min, b.Max)
}

// Run processes input and draws until the window is closed.
func (v *viewer) Run() {
	for {
		if v.input.Update() {
			return
		}
		v.handleEvents()

		select {
		case path := <-v.pending:
			v.load(path, mgl32.Vec3{})
			v.frame()
		default:
		}

		v.render.Begin()
		v.program.Use()
		v.scene.Draw(v.program, v.camera.ViewMatrix(), v.camera.ProjectionMatrix(v.render.AspectRatio()))
		if v.wantShot {
			v.screenshot()
			v.wantShot = false
		}
		v.win.SwapBuffers()
	}
}

func (v *viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventDrag:
			v.camera.HandleDrag(e.DX, e.DY)
		case input.EventScroll:
			v.camera.HandleZoom(e.DY)
		case input.EventWindowResize:
			v.render.Resize(v.win.DrawableSize())
		case input.EventFileDrop:
			if isModelFile(e.Path) {
				v.load(e.Path, mgl32.Vec3{})
				v.frame()
			} else {
				logger.Warn("ignoring dropped file", zap.String("path", e.Path))
			}
		case input.EventPick:
			v.pick(e.X, e.Y)
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_F:
				v.frame()
			case sdl.SCANCODE_O:
				v.openDialog()
			case sdl.SCANCODE_P:
				v.wantShot = true
			}
		}
	}
}

// pick frames the model under the cursor. Cursor coordinates are in window
// points, which differ from drawable pixels on high-DPI displays.
func (v *viewer) pick(x, y float32) {
	w, h := v.win.GetSize()
	if w == 0 || h == 0 {
		return
	}
	view := v.camera.ViewMatrix()
	proj := v.camera.ProjectionMatrix(v.render.AspectRatio())
	ray := picking.ScreenToRay(x, y, float32(w), float32(h), proj.Mul4(view).Inv())

	m := v.scene.Pick(ray)
	if m == nil {
		return
	}
	b := m.WorldBounds()
	v.camera.FitToBounds(b.Min, b.Max)
	logger.Info("model picked", zap.String("path", m.Path()), zap.Int("meshes", len(m.Meshes())))
}

// screenshot saves the frame drawn into the back buffer.
func (v *viewer) screenshot() {
	pixels, w, h := v.render.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func isModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".gltf", ".glb":
		return true
	}
	return false
}

// Close releases GPU resources and the window.
func (v *viewer) Close() {
	v.scene.Destroy()
	v.program.Delete()
	v.win.Close()
}
