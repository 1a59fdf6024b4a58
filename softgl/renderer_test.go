package softgl

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func newTestCamera(pos Vec3, w, h int) *PerspectiveCamera {
	cam := NewPerspectiveCamera(60, float32(w)/float32(h), 0.5, 100)
	cam.Position = pos
	cam.LookAt(Vec3{})
	return cam
}

func facingPlane(size float32, c Color) *Mesh {
	m := NewMesh(PlaneGeometry(size, size), NewLambertMaterial(c))
	return m
}

func TestNewRendererRejectsEmptySize(t *testing.T) {
	if _, err := NewRenderer(0, 10); !errors.Is(err, ErrSize) {
		t.Fatalf("NewRenderer(0, 10) err = %v, want ErrSize", err)
	}
}

func TestRendererSetSizeSameIsNoop(t *testing.T) {
	r, err := NewRenderer(8, 8)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	before := r.Surface()
	if err := r.SetSize(8, 8); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if r.Surface() != before {
		t.Fatalf("SetSize with the same size replaced the surface")
	}
	if err := r.SetSize(16, 4); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if w, h := r.Size(); w != 16 || h != 4 {
		t.Fatalf("Size() = %dx%d, want 16x4", w, h)
	}
	if b := r.Surface().Bounds(); b.Dx() != 16 || b.Dy() != 4 {
		t.Fatalf("surface bounds = %v, want 16x4", b)
	}
}

func TestRenderNilArguments(t *testing.T) {
	r, _ := NewRenderer(4, 4)
	if err := r.Render(nil, NewPerspectiveCamera(45, 1, 1, 10)); !errors.Is(err, ErrNilScene) {
		t.Fatalf("Render(nil scene) err = %v, want ErrNilScene", err)
	}
	if err := r.Render(NewScene(), nil); !errors.Is(err, ErrNilCamera) {
		t.Fatalf("Render(nil camera) err = %v, want ErrNilCamera", err)
	}
}

func TestRenderEmptySceneClears(t *testing.T) {
	r, _ := NewRenderer(16, 12)
	r.ClearColor = Hex(0x777777)
	if err := r.Render(NewScene(), newTestCamera(V3(0, 0, 10), 16, 12)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := color.RGBA{0x77, 0x77, 0x77, 0xFF}
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			if got := r.Surface().RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if info := r.Info(); info.Frame != 1 || info.Triangles != 0 {
		t.Fatalf("Info() = %+v, want frame 1 and no triangles", info)
	}
}

func TestRenderAmbientOnly(t *testing.T) {
	r, _ := NewRenderer(64, 64)
	s := NewScene()
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(4, RGB(0xFF, 0x00, 0x00)))

	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 64, 64)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := r.Surface().RGBAAt(32, 32), (color.RGBA{0xFF, 0, 0, 0xFF}); got != want {
		t.Fatalf("center = %v, want %v", got, want)
	}
	if got, want := r.Surface().RGBAAt(0, 0), (color.RGBA{0, 0, 0, 0xFF}); got != want {
		t.Fatalf("corner = %v, want clear color %v", got, want)
	}
	if info := r.Info(); info.Triangles != 2 || info.Meshes != 1 {
		t.Fatalf("Info() = %+v, want 2 triangles of 1 mesh", info)
	}
}

func TestRenderDirectionalIntensity(t *testing.T) {
	r, _ := NewRenderer(32, 32)
	s := NewScene()
	l := NewDirectionalLight(RGB(0xFF, 0xFF, 0xFF), 0.5)
	l.Position = V3(0, 0, 1)
	s.Add(l, facingPlane(4, RGB(0xFF, 0xFF, 0xFF)))

	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 32, 32)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.Surface().RGBAAt(16, 16); got.R != 128 || got.G != 128 || got.B != 128 {
		t.Fatalf("center = %v, want 128 grey", got)
	}
}

func TestRenderFog(t *testing.T) {
	r, _ := NewRenderer(32, 32)
	s := NewScene()
	s.Fog = &Fog{Color: RGB(0xFF, 0, 0), Near: 0, Far: 5}
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(4, RGB(0, 0, 0xFF)))

	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 32, 32)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := r.Surface().RGBAAt(16, 16), (color.RGBA{0xFF, 0, 0, 0xFF}); got != want {
		t.Fatalf("fogged center = %v, want %v", got, want)
	}
}

func shadowScene(enabled bool) (*Renderer, *Scene, *PerspectiveCamera) {
	r, _ := NewRenderer(64, 64)
	r.ShadowMap = ShadowMapConfig{Enabled: enabled, Bias: 0.001, Darkness: 0.5}

	s := NewScene()
	l := NewDirectionalLight(RGB(0xFF, 0xFF, 0xFF), 1)
	l.Position = V3(0, 0, 50)
	l.CastShadow = true
	l.ShadowMapWidth, l.ShadowMapHeight = 64, 64
	l.ShadowCamera = ShadowCamera{Left: -10, Right: 10, Top: 10, Bottom: -10, Near: 1, Far: 100}

	ground := facingPlane(20, RGB(0xFF, 0xFF, 0xFF))
	ground.ReceiveShadow = true

	occluder := facingPlane(2, RGB(0xFF, 0xFF, 0xFF))
	occluder.Position = V3(0, 0, 5)
	occluder.CastShadow = true

	s.Add(l, ground, occluder)
	return r, s, newTestCamera(V3(6, 0, 20), 64, 64)
}

func TestRenderShadowDarkensReceiver(t *testing.T) {
	r, s, cam := shadowScene(false)
	if err := r.Render(s, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.Surface().RGBAAt(32, 32); got.R != 0xFF {
		t.Fatalf("unshadowed center = %v, want full white", got)
	}

	r, s, cam = shadowScene(true)
	if err := r.Render(s, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.Surface().RGBAAt(32, 32); got.R != 128 {
		t.Fatalf("shadowed center = %v, want R=128", got)
	}
}

func TestRenderWorkersMatchSerial(t *testing.T) {
	r1, s, cam := shadowScene(true)
	if err := r1.Render(s, cam); err != nil {
		t.Fatalf("Render serial: %v", err)
	}
	r4, _, _ := shadowScene(true)
	r4.SetWorkers(4)
	if err := r4.Render(s, cam); err != nil {
		t.Fatalf("Render parallel: %v", err)
	}
	if !bytes.Equal(r1.Surface().Pix, r4.Surface().Pix) {
		t.Fatalf("4-worker frame differs from serial frame")
	}
}

func TestRenderWireframeLeavesInteriorClear(t *testing.T) {
	r, _ := NewRenderer(64, 64)
	r.Mode = RenderWireframe
	s := NewScene()
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(4, RGB(0xFF, 0xFF, 0xFF)))
	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 64, 64)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// (25,30) is inside the upper-left triangle, off every edge.
	if got := r.Surface().RGBAAt(25, 30); got.R != 0 {
		t.Fatalf("interior pixel = %v, want clear", got)
	}
}

type countingTarget struct {
	w, h   int
	pixels int
	clears int
}

func (c *countingTarget) Size() (int, int)         { return c.w, c.h }
func (c *countingTarget) SetPixel(int, int, Color) { c.pixels++ }
func (c *countingTarget) Clear(Color)              { c.clears++ }

func TestRenderToCustomTarget(t *testing.T) {
	r, _ := NewRenderer(8, 8)
	s := NewScene()
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(4, RGB(0xFF, 0xFF, 0xFF)))
	tgt := &countingTarget{w: 32, h: 32}
	if err := r.RenderTo(tgt, s, newTestCamera(V3(0, 0, 10), 32, 32)); err != nil {
		t.Fatalf("RenderTo: %v", err)
	}
	if tgt.clears != 1 || tgt.pixels == 0 {
		t.Fatalf("target clears=%d pixels=%d, want 1 clear and some pixels", tgt.clears, tgt.pixels)
	}
}

// obliqueCamera looks down at the origin at a shallow angle, so vertex
// depths across a large ground plane differ widely.
func obliqueCamera(w, h int) *PerspectiveCamera {
	return newTestCamera(V3(15, 0, 8), w, h)
}

func TestRenderShadowObliqueCamera(t *testing.T) {
	r, s, _ := shadowScene(true)
	if err := r.Render(s, obliqueCamera(64, 64)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// The center ray reaches the ground at the origin, under the occluder's shadow.
	if got := r.Surface().RGBAAt(32, 32); got.R != 128 {
		t.Fatalf("shadowed center = %v, want R=128", got)
	}
}

func TestRenderFogObliqueCamera(t *testing.T) {
	r, _ := NewRenderer(64, 64)
	s := NewScene()
	s.Fog = &Fog{Color: RGB(0xFF, 0, 0), Near: 0, Far: 100}
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(20, RGB(0, 0, 0xFF)))

	cam := obliqueCamera(64, 64)
	if err := r.Render(s, cam); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// The origin is Len(cam.Position) = 17 units along the view axis.
	wantR := 255 * Len(cam.Position) / 100
	got := r.Surface().RGBAAt(32, 32)
	if d := float32(got.R) - wantR; d < -2 || d > 2 {
		t.Fatalf("fogged center = %v, want R near %.1f", got, wantR)
	}
}

func TestRenderClipsNearPlane(t *testing.T) {
	r, _ := NewRenderer(64, 64)
	s := NewScene()
	s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), facingPlane(20, RGB(0xFF, 0, 0)))

	// Every triangle of the ground has a corner behind the eye.
	if err := r.Render(s, newTestCamera(V3(0, -9, 2), 64, 64)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := r.Surface().RGBAAt(32, 32), (color.RGBA{0xFF, 0, 0, 0xFF}); got != want {
		t.Fatalf("center = %v, want %v", got, want)
	}
	if got := r.Surface().RGBAAt(32, 63); got.R != 0xFF {
		t.Fatalf("bottom row = %v, want ground", got)
	}
	if info := r.Info(); info.Triangles != 3 {
		t.Fatalf("Info().Triangles = %d, want 3 after clipping", info.Triangles)
	}
}

func TestClipNear(t *testing.T) {
	in := [3]clipVert{
		{clip: Vec4{0, 0, 0, 1}},
		{clip: Vec4{1, 0, 0, 1}},
		{clip: Vec4{0, 0, -3, 1}}, // z+w = -2
	}
	out := clipNear(&in, nil)
	if len(out) != 4 {
		t.Fatalf("clipNear kept %d vertices, want 4", len(out))
	}
	for i, v := range out {
		if d := v.clip.Z + v.clip.W; d < -1e-6 {
			t.Fatalf("vertex %d has z+w = %v, want >= 0", i, d)
		}
	}

	for k := range in {
		in[k].clip.Z = -3
	}
	if out := clipNear(&in, nil); len(out) != 0 {
		t.Fatalf("clipNear kept %d vertices of a triangle behind the eye", len(out))
	}
}

func TestRenderUsesVertexNormals(t *testing.T) {
	r, _ := NewRenderer(64, 64)
	s := NewScene()
	l := NewDirectionalLight(RGB(0xFF, 0xFF, 0xFF), 1)
	l.Position = V3(0, 0, 1)
	plane := facingPlane(4, RGB(0xFF, 0xFF, 0xFF))
	g := plane.Geometry
	// Left column faces the light; the right column leans 45 degrees away.
	for i, p := range g.Positions {
		if p.X < 0 {
			g.Normals[i] = V3(0, 0, 1)
		} else {
			g.Normals[i] = Normalize(V3(1, 0, 1))
		}
	}
	s.Add(l, plane)

	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 64, 64)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	left, right := r.Surface().RGBAAt(24, 32), r.Surface().RGBAAt(40, 32)
	if left.R <= right.R {
		t.Fatalf("left = %v, right = %v, want the left side brighter", left, right)
	}
	if right.R < 180 || left.R == 0xFF {
		t.Fatalf("left = %v, right = %v, want a blend between 180 and 255", left, right)
	}
}

func TestRenderTiltedNormalsShadeFacingPlane(t *testing.T) {
	r, _ := NewRenderer(32, 32)
	s := NewScene()
	l := NewDirectionalLight(RGB(0xFF, 0xFF, 0xFF), 1)
	l.Position = V3(0, 0, 1)
	plane := facingPlane(4, RGB(0xFF, 0xFF, 0xFF))
	for i := range plane.Geometry.Normals {
		plane.Geometry.Normals[i] = V3(0.8660254, 0, 0.5) // 60 degrees off the light
	}
	s.Add(l, plane)

	if err := r.Render(s, newTestCamera(V3(0, 0, 10), 32, 32)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.Surface().RGBAAt(16, 16); got.R < 127 || got.R > 128 {
		t.Fatalf("center = %v, want half intensity from the vertex normals", got)
	}
}

func TestRenderEnvironmentIsOptIn(t *testing.T) {
	env := RGB(0, 0, 0xFF)
	render := func(reflectivity float32) color.RGBA {
		t.Helper()
		r, _ := NewRenderer(32, 32)
		r.Environment = &env
		s := NewScene()
		plane := facingPlane(4, RGB(0xFF, 0xFF, 0xFF))
		plane.Material.Reflectivity = reflectivity
		s.Add(NewAmbientLight(RGB(0xFF, 0xFF, 0xFF)), plane)
		if err := r.Render(s, newTestCamera(V3(0, 0, 10), 32, 32)); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return r.Surface().RGBAAt(16, 16)
	}

	if got, want := render(0), (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}); got != want {
		t.Fatalf("default material center = %v, want %v untouched by the environment", got, want)
	}
	if got, want := render(1), (color.RGBA{0, 0, 0xFF, 0xFF}); got != want {
		t.Fatalf("reflective center = %v, want %v", got, want)
	}
}
