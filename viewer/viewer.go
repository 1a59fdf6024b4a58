// Package viewer builds the demo scene, inserts the loaded model and renders
// throttled frames with a performance overlay.
//
// A Viewer is driven from a single host goroutine: Step at every refresh
// opportunity, Resize on viewport changes, and the input methods on user
// interaction.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"osmview/loader"
	"osmview/loop"
	"osmview/softgl"
	"osmview/stats"
)

var ErrModelLoaded = errors.New("viewer: model already loaded")

// Scene constants.
var (
	clearColor   = softgl.Hex(0x777777)
	fogColor     = softgl.Hex(0xf5f5ff)
	ambientColor = softgl.Hex(0x2f2f2a)
	keyColor     = softgl.Hex(0xffeeee)
	fillColor    = softgl.Hex(0xeeeeff)
	groundColor  = softgl.Hex(0x121301)
	modelColor   = softgl.Hex(0xaaaaaa)
)

const (
	cameraFOV  = 20
	cameraNear = 1
	cameraFar  = 2000
	cameraZ    = 1000

	fogNear = 500
	fogFar  = 5000

	groundSize = 1000
	groundY    = -200

	shadowBias       = 0.0039
	shadowDarkness   = 0.5
	shadowCameraNear = 3

	modelReflectivity = 0.8
)

type Viewer struct {
	cfg Config
	log *slog.Logger

	Camera   *softgl.PerspectiveCamera
	Scene    *softgl.Scene
	Renderer *softgl.Renderer
	Ambient  *softgl.AmbientLight
	Key      *softgl.DirectionalLight
	Fill     *softgl.DirectionalLight
	Ground   *softgl.Mesh
	Controls *softgl.OrbitController
	Stats    *stats.Stats
	Loop     *loop.Loop

	model   *softgl.Mesh
	loader  *loader.Loader
	pending <-chan loader.Result
	loadErr error
	changed bool
}

// New bootstraps camera, scene, lights, ground plane and renderer for a
// width x height viewport.
func New(cfg Config, width, height int, log *slog.Logger) (*Viewer, error) {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()

	r, err := softgl.NewRenderer(width, height)
	if err != nil {
		return nil, fmt.Errorf("viewer: bootstrap: %w", err)
	}
	r.ClearColor = clearColor
	r.GammaInput = true
	r.GammaOutput = true
	r.SetWorkers(cfg.Workers)
	r.ShadowMap = softgl.ShadowMapConfig{
		Enabled:    !cfg.NoShadows,
		Bias:       shadowBias,
		Darkness:   shadowDarkness,
		CameraNear: shadowCameraNear,
		CameraFar:  cameraFar,
	}
	if cfg.Wireframe {
		r.SetRenderMode(softgl.RenderWireframe)
	}
	env := fogColor
	r.Environment = &env

	cam := softgl.NewPerspectiveCamera(cameraFOV, float32(width)/float32(height), cameraNear, cameraFar)
	cam.Position = softgl.V3(0, 0, cameraZ)
	cam.LookAt(softgl.V3(0, 0, 0))

	scene := softgl.NewScene()
	scene.Fog = &softgl.Fog{Color: fogColor, Near: fogNear, Far: fogFar}

	ambient := softgl.NewAmbientLight(ambientColor)
	ambient.Name = "ambient"

	key := softgl.NewDirectionalLight(keyColor, 1)
	key.Name = "key"
	key.SetPosition(200, 200, 200)
	key.CastShadow = true
	key.ShadowMapWidth, key.ShadowMapHeight = cfg.ShadowMapSize, cfg.ShadowMapSize

	fill := softgl.NewDirectionalLight(fillColor, 0.7)
	fill.Name = "fill"
	fill.SetPosition(-200, 200, -200)

	ground := softgl.NewMesh(softgl.PlaneGeometry(groundSize, groundSize), softgl.NewLambertMaterial(groundColor))
	ground.Name = "ground"
	ground.Rotation.X = -softgl.DegToRad(90)
	ground.SetPosition(0, groundY, 0)
	ground.ReceiveShadow = true

	scene.Add(ambient, key, fill, ground)

	v := &Viewer{
		cfg:      cfg,
		log:      log,
		Camera:   cam,
		Scene:    scene,
		Renderer: r,
		Ambient:  ambient,
		Key:      key,
		Fill:     fill,
		Ground:   ground,
		Controls: softgl.NewOrbitController(cam),
		Stats:    stats.New(),
		loader:   loader.New(loader.WithWorker(cfg.UseWorker)),
	}
	v.Loop = loop.New(cfg.Interval, v.Frame)
	log.Info("viewer: scene ready", "width", width, "height", height, "children", scene.ChildCount())
	return v, nil
}

func (v *Viewer) Config() Config { return v.cfg }

// Model returns the loaded mesh, or nil before a successful load.
func (v *Viewer) Model() *softgl.Mesh { return v.model }

// LoadErr returns the failure of the asset load, if it failed.
func (v *Viewer) LoadErr() error { return v.loadErr }

// Loading reports whether an asset load is still outstanding.
func (v *Viewer) Loading() bool { return v.pending != nil }

// Start kicks off the asset load and arms the render loop at now.
func (v *Viewer) Start(ctx context.Context, now time.Time) error {
	v.Load(ctx, v.cfg.Asset)
	return v.Loop.Start(now)
}

// Load requests an asset. The result is picked up by Poll.
func (v *Viewer) Load(ctx context.Context, path string) {
	v.log.Info("viewer: loading", "asset", path, "worker", v.loader.UseWorker())
	v.pending = v.loader.Load(ctx, path)
}

// Poll checks for a finished load without blocking and reports whether one
// was handled.
func (v *Viewer) Poll() bool {
	if v.pending == nil {
		return false
	}
	select {
	case res, ok := <-v.pending:
		v.pending = nil
		if !ok {
			return false
		}
		v.handle(res)
		return true
	default:
		return false
	}
}

func (v *Viewer) handle(res loader.Result) {
	g, err := res.Resolve()
	if err != nil {
		v.loadErr = err
		v.log.Error("viewer: load failed", "asset", res.Path, "err", err)
		return
	}
	if _, err := v.AddModel(g, v.cfg.Model); err != nil {
		v.loadErr = err
		v.log.Warn("viewer: load result ignored", "asset", res.Path, "err", err)
		return
	}
	v.log.Info("viewer: model added", "asset", res.Path, "triangles", g.TriangleCount(), "elapsed", res.Elapsed)
}

// AddModel inserts the loaded mesh. Only one model is ever added.
func (v *Viewer) AddModel(g *softgl.Geometry, p ModelParams) (*softgl.Mesh, error) {
	if v.model != nil {
		return nil, ErrModelLoaded
	}
	if g == nil {
		return nil, errors.New("viewer: nil geometry")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("viewer: model: %w", err)
	}
	mat := softgl.NewLambertMaterial(modelColor)
	mat.Reflectivity = modelReflectivity

	m := softgl.NewMesh(g, mat)
	m.Name = "model"
	m.SetScale(p.Scale)
	m.Position = p.Position
	m.Rotation.X = p.RotationX
	m.Rotation.Z = p.RotationZ
	m.CastShadow = true
	m.ReceiveShadow = true

	v.Scene.Add(m)
	v.model = m
	v.changed = true
	return m, nil
}

// Resize updates the renderer output and camera projection. Non-positive
// sizes and the current size are ignored.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if w, h := v.Renderer.Size(); w == width && h == height {
		return
	}
	v.Camera.Aspect = float32(width) / float32(height)
	v.Camera.UpdateProjectionMatrix()
	if err := v.Renderer.SetSize(width, height); err != nil {
		v.log.Warn("viewer: resize", "err", err)
		return
	}
	v.changed = true
	v.log.Debug("viewer: resized", "width", width, "height", height)
}

// Step is the refresh-opportunity entry point: it polls the loader, then
// either ticks the loop or, when the view changed outside the cadence,
// renders without counting a frame.
func (v *Viewer) Step(now time.Time) error {
	v.Poll()
	ran, err := v.Loop.Tick(now)
	if err != nil {
		return err
	}
	if !ran && v.changed && v.Loop.State() == loop.Running {
		return v.Render()
	}
	return nil
}

// Frame renders the scene and updates the overlay. It is the loop's frame.
func (v *Viewer) Frame(time.Time) error {
	if err := v.renderScene(); err != nil {
		return err
	}
	v.Stats.Update()
	v.drawOverlay()
	return nil
}

// Render redraws the scene without touching the frame statistics.
func (v *Viewer) Render() error {
	if err := v.renderScene(); err != nil {
		return err
	}
	v.drawOverlay()
	return nil
}

func (v *Viewer) renderScene() error {
	v.changed = false
	if err := v.Renderer.Render(v.Scene, v.Camera); err != nil {
		return fmt.Errorf("viewer: render: %w", err)
	}
	return nil
}

func (v *Viewer) drawOverlay() {
	if !v.cfg.HideStats {
		v.Stats.Draw(v.Renderer.Surface())
	}
}

// Surface is the most recently rendered frame.
func (v *Viewer) Surface() *image.RGBA { return v.Renderer.Surface() }
