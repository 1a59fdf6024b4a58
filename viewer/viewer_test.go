package viewer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"osmview/ctm"
	"osmview/loader"
	"osmview/loop"
	"osmview/softgl"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() Config {
	return Config{Workers: 2, ShadowMapSize: 64}
}

func newTestViewer(t *testing.T, cfg Config, w, h int) *Viewer {
	t.Helper()
	v, err := New(cfg, w, h, quietLog)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func writeCTM(t *testing.T) string {
	t.Helper()
	m := &ctm.Mesh{
		Vertices: []float32{
			-50, 0, -50, 50, 0, -50, 0, 100, 0, 0, 0, 50,
		},
		Indices: []uint32{0, 1, 2, 1, 3, 2, 3, 0, 2, 0, 3, 1},
		Comment: "a",
	}
	var buf bytes.Buffer
	if err := ctm.Encode(&buf, m, ctm.MethodMG1); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.ctm")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func waitLoaded(t *testing.T, v *Viewer) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for v.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the load result")
		}
		if !v.Poll() {
			time.Sleep(time.Millisecond)
		}
	}
}

func TestBootstrap(t *testing.T) {
	v := newTestViewer(t, testConfig(), 160, 90)

	if got := v.Scene.ChildCount(); got != 4 {
		t.Fatalf("ChildCount() = %d, want 4", got)
	}
	if got := len(v.Scene.AmbientLights()); got != 1 {
		t.Fatalf("ambient lights = %d, want 1", got)
	}
	if got := len(v.Scene.DirectionalLights()); got != 2 {
		t.Fatalf("directional lights = %d, want 2", got)
	}
	if ms := v.Scene.Meshes(); len(ms) != 1 || ms[0] != v.Ground {
		t.Fatalf("meshes = %v, want only the ground plane", ms)
	}
	if !v.Ground.ReceiveShadow || v.Ground.Position != softgl.V3(0, -200, 0) {
		t.Fatalf("ground = %+v", v.Ground.Object3D)
	}
	if v.Ground.Material.Reflectivity != 0 {
		t.Fatalf("ground reflectivity = %v, want 0 so the fog environment leaves it alone", v.Ground.Material.Reflectivity)
	}
	if !v.Key.CastShadow || v.Fill.CastShadow {
		t.Fatalf("CastShadow key=%v fill=%v, want true false", v.Key.CastShadow, v.Fill.CastShadow)
	}
	if w, h := v.Renderer.Size(); w != 160 || h != 90 {
		t.Fatalf("Renderer.Size() = %dx%d, want 160x90", w, h)
	}
	if v.Camera.FOV != 20 || v.Camera.Near != 1 || v.Camera.Far != 2000 {
		t.Fatalf("camera = fov %v near %v far %v", v.Camera.FOV, v.Camera.Near, v.Camera.Far)
	}
	if v.Camera.Aspect != float32(160)/90 {
		t.Fatalf("Aspect = %v, want %v", v.Camera.Aspect, float32(160)/90)
	}
	if v.Camera.Position != softgl.V3(0, 0, 1000) {
		t.Fatalf("camera position = %v", v.Camera.Position)
	}
	if v.Model() != nil {
		t.Fatal("Model() != nil before load")
	}
	if v.Loop.State() != loop.Idle {
		t.Fatalf("Loop.State() = %v, want idle", v.Loop.State())
	}
}

func TestBootstrapInvalidViewport(t *testing.T) {
	if _, err := New(testConfig(), 0, 100, quietLog); !errors.Is(err, softgl.ErrSize) {
		t.Fatalf("New(0x100) error = %v, want ErrSize", err)
	}
}

func TestLoadAddsModel(t *testing.T) {
	for _, worker := range []bool{true, false} {
		cfg := testConfig()
		cfg.UseWorker = worker
		v := newTestViewer(t, cfg, 64, 48)
		before := v.Scene.ChildCount()

		v.Load(context.Background(), writeCTM(t))
		waitLoaded(t, v)

		if v.LoadErr() != nil {
			t.Fatalf("worker=%v: LoadErr() = %v", worker, v.LoadErr())
		}
		if got := v.Scene.ChildCount(); got != before+1 {
			t.Fatalf("worker=%v: ChildCount() = %d, want %d", worker, got, before+1)
		}
		m := v.Model()
		if m == nil {
			t.Fatalf("worker=%v: Model() = nil", worker)
		}
		if m.Position != softgl.V3(0, -200, 0) {
			t.Fatalf("Position = %v, want (0,-200,0)", m.Position)
		}
		if m.Scale != softgl.V3(1, 1, 1) {
			t.Fatalf("Scale = %v, want 1", m.Scale)
		}
		if m.Rotation != (softgl.Euler{}) {
			t.Fatalf("Rotation = %v, want zero", m.Rotation)
		}
		if m.Material.Reflectivity != 0.8 || !m.CastShadow || !m.ReceiveShadow {
			t.Fatalf("model material/shadow = %+v cast=%v receive=%v", *m.Material, m.CastShadow, m.ReceiveShadow)
		}
	}
}

func TestAtMostOneModel(t *testing.T) {
	v := newTestViewer(t, testConfig(), 64, 48)
	g := softgl.TorusGeometry(50, 20, 8, 6)
	if _, err := v.AddModel(g, DefaultModelParams()); err != nil {
		t.Fatalf("AddModel() error = %v", err)
	}
	if _, err := v.AddModel(g, DefaultModelParams()); !errors.Is(err, ErrModelLoaded) {
		t.Fatalf("second AddModel() = %v, want ErrModelLoaded", err)
	}
	if got := len(v.Scene.Meshes()); got != 2 {
		t.Fatalf("meshes = %d, want 2", got)
	}
}

func TestFailedLoadKeepsRunning(t *testing.T) {
	cfg := testConfig()
	cfg.Asset = filepath.Join(t.TempDir(), "missing.ctm")
	cfg.Interval = time.Millisecond
	v := newTestViewer(t, cfg, 64, 48)

	start := time.Now()
	if err := v.Start(context.Background(), start); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitLoaded(t, v)

	var lerr *loader.Error
	if !errors.As(v.LoadErr(), &lerr) || lerr.Op != "fetch" {
		t.Fatalf("LoadErr() = %v, want fetch *loader.Error", v.LoadErr())
	}
	if v.Model() != nil || len(v.Scene.Meshes()) != 1 {
		t.Fatalf("meshes = %d, want only the ground", len(v.Scene.Meshes()))
	}
	for i := 0; i < 3; i++ {
		if err := v.Step(start.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	if v.Loop.State() != loop.Running || v.Loop.Frames() != 3 {
		t.Fatalf("loop = %v with %d frames, want running with 3", v.Loop.State(), v.Loop.Frames())
	}
}

func TestResizeLastWins(t *testing.T) {
	v := newTestViewer(t, testConfig(), 64, 48)
	sizes := []image.Point{{100, 50}, {30, 90}, {0, 10}, {-4, -4}, {120, 80}, {120, 80}}
	for _, s := range sizes {
		v.Resize(s.X, s.Y)
	}
	if w, h := v.Renderer.Size(); w != 120 || h != 80 {
		t.Fatalf("Renderer.Size() = %dx%d, want 120x80", w, h)
	}
	if v.Camera.Aspect != 1.5 {
		t.Fatalf("Aspect = %v, want 1.5", v.Camera.Aspect)
	}
	if b := v.Surface().Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("Surface().Bounds() = %v", b)
	}
	if err := v.Render(); err != nil {
		t.Fatalf("Render() after resize: %v", err)
	}
}

func TestOverlayUpdatesMatchRenders(t *testing.T) {
	v := newTestViewer(t, testConfig(), 64, 48)
	start := time.Unix(1_700_000_000, 0)
	if err := v.Loop.Start(start); err != nil {
		t.Fatalf("Loop.Start() error = %v", err)
	}
	for i := 0; i < 50; i++ {
		if err := v.Step(start.Add(time.Duration(i) * 16 * time.Millisecond)); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	frames := v.Loop.Frames()
	if frames != 8 {
		t.Fatalf("Frames() = %d, want 8 over 800ms at 100ms", frames)
	}
	if got := v.Stats.Updates(); got != frames {
		t.Fatalf("Stats.Updates() = %d, want %d", got, frames)
	}
	if got := v.Renderer.Info().Frame; got != frames {
		t.Fatalf("Renderer.Info().Frame = %d, want %d", got, frames)
	}
}

func TestInputRendersOutsideCadence(t *testing.T) {
	v := newTestViewer(t, testConfig(), 64, 48)
	start := time.Unix(1_700_000_000, 0)
	v.Loop.Start(start)
	v.Step(start)

	before := v.Camera.Position
	v.Orbit(10, 0)
	if v.Camera.Position == before {
		t.Fatal("Orbit() did not move the camera")
	}
	if err := v.Step(start.Add(time.Millisecond)); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got := v.Renderer.Info().Frame; got != 2 {
		t.Fatalf("rendered %d times, want 2", got)
	}
	if got := v.Stats.Updates(); got != 1 {
		t.Fatalf("Stats.Updates() = %d, want 1", got)
	}

	v.ResetView()
	if v.Camera.Position != softgl.V3(0, 0, 1000) {
		t.Fatalf("ResetView() position = %v", v.Camera.Position)
	}
	v.Zoom(2)
	if d := softgl.Len(v.Camera.Position); d >= 1000 {
		t.Fatalf("Zoom(2) distance = %v, want closer than 1000", d)
	}
}

func TestRenderWithoutModel(t *testing.T) {
	for _, wire := range []bool{false, true} {
		cfg := testConfig()
		cfg.Wireframe = wire
		v := newTestViewer(t, cfg, 64, 48)
		if err := v.Frame(time.Now()); err != nil {
			t.Fatalf("wireframe=%v: Frame() error = %v", wire, err)
		}
		if v.Renderer.Info().Meshes != 1 {
			t.Fatalf("Info().Meshes = %d, want 1", v.Renderer.Info().Meshes)
		}
	}
}

func TestToggles(t *testing.T) {
	v := newTestViewer(t, testConfig(), 64, 48)
	v.ToggleWireframe()
	if v.Renderer.Mode != softgl.RenderWireframe {
		t.Fatalf("Mode = %v, want wireframe", v.Renderer.Mode)
	}
	v.ToggleWireframe()
	if v.Renderer.Mode != softgl.RenderSolid {
		t.Fatalf("Mode = %v, want solid", v.Renderer.Mode)
	}
	v.ToggleStats()
	if !v.Config().HideStats {
		t.Fatal("ToggleStats() did not hide the overlay")
	}
}

func TestDrawFailure(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	DrawFailure(img, errors.New("loop: frame 3: viewer: render: softgl: nil scene"))
	white, dark := 0, 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0xFF {
			white++
		} else {
			dark++
		}
	}
	if white == 0 || dark == 0 {
		t.Fatalf("white=%d dark=%d, want background and text", white, dark)
	}
	DrawFailure(image.NewRGBA(image.Rect(0, 0, 2, 2)), errors.New("x"))
}
