package softgl

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrNilScene  = errors.New("softgl: nil scene")
	ErrNilCamera = errors.New("softgl: nil camera")
	ErrNilTarget = errors.New("softgl: nil target")
	ErrSize      = errors.New("softgl: invalid size")
)

// RenderInfo describes the last rendered frame.
type RenderInfo struct {
	Frame     uint64
	Meshes    int
	Triangles int
}

// Renderer is a fixed-pipeline software renderer that owns its output surface.
// Triangles are clipped to the camera near plane and shaded per vertex from
// the geometry normals, or from the face normal when a geometry has none.
//
// Create it once and reuse it; buffers are kept between frames.
type Renderer struct {
	Mode        RenderMode
	ClearColor  Color
	GammaInput  bool
	GammaOutput bool
	ShadowMap   ShadowMapConfig

	// Environment, when set, is mixed into lit colors by material reflectivity.
	Environment *Color

	width, height int
	surface       *image.RGBA
	depth         []float32
	workers       int

	shadow shadowMap
	tris   []preparedTri
	info   RenderInfo
}

// NewRenderer creates a renderer with a w x h output surface.
func NewRenderer(w, h int) (*Renderer, error) {
	r := &Renderer{
		Mode:       RenderSolid,
		ClearColor: RGB(0, 0, 0),
		workers:    1,
	}
	if err := r.SetSize(w, h); err != nil {
		return nil, err
	}
	return r, nil
}

// SetSize resizes the output surface. Setting the current size is a no-op.
func (r *Renderer) SetSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	if r.surface != nil && w == r.width && h == r.height {
		return nil
	}
	r.width, r.height = w, h
	r.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	RGBATarget{Img: r.surface}.Clear(r.ClearColor)
	Logger().Debug("softgl: renderer resized", "width", w, "height", h)
	return nil
}

func (r *Renderer) Size() (w, h int) { return r.width, r.height }

// Surface returns the output image. It is replaced by SetSize.
func (r *Renderer) Surface() *image.RGBA { return r.surface }

// SetWorkers sets how many goroutines share rasterization. Values below 1 mean 1.
func (r *Renderer) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	r.workers = n
}

func (r *Renderer) Workers() int { return r.workers }

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

func (r *Renderer) Info() RenderInfo { return r.info }

// Render draws the scene from the camera into the renderer's surface.
func (r *Renderer) Render(s *Scene, cam *PerspectiveCamera) error {
	return r.RenderTo(RGBATarget{Img: r.surface}, s, cam)
}

// RenderTo draws the scene from the camera into t.
func (r *Renderer) RenderTo(t Target, s *Scene, cam *PerspectiveCamera) error {
	if t == nil {
		return ErrNilTarget
	}
	if s == nil {
		return ErrNilScene
	}
	if cam == nil {
		return ErrNilCamera
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: target %dx%d", ErrSize, w, h)
	}

	t.Clear(r.ClearColor)
	if cap(r.depth) < w*h {
		r.depth = make([]float32, w*h)
	}
	r.depth = r.depth[:w*h]

	meshes := s.Meshes()
	dirs := s.DirectionalLights()

	var sm *shadowMap
	if r.ShadowMap.Enabled {
		if l := shadowLight(dirs); l != nil {
			if err := r.shadow.build(l, r.ShadowMap, meshes, r.workers); err != nil {
				return fmt.Errorf("softgl: shadow pass: %w", err)
			}
			sm = &r.shadow
		}
	}

	lights := r.lightSetup(s, dirs, sm)
	vp := Mat4Mul(cam.ProjectionMatrix(), cam.ViewMatrix())

	r.tris = r.tris[:0]
	drawn := 0
	for _, m := range meshes {
		if !m.Visible || m.Geometry == nil {
			continue
		}
		drawn++
		r.prepareMesh(m, vp, cam, lights, w, h)
	}

	if r.Mode == RenderWireframe {
		r.drawWireframe(t)
	} else {
		fog := s.Fog
		var fogColor rgb
		if fog != nil {
			fogColor = fog.Color.linear(r.GammaInput)
		}
		err := forBands(h, r.workers, func(lo, hi int) {
			r.rasterBand(t, w, lo, hi, sm, fog, fogColor)
		})
		if err != nil {
			return fmt.Errorf("softgl: raster: %w", err)
		}
	}

	r.info = RenderInfo{Frame: r.info.Frame + 1, Meshes: drawn, Triangles: len(r.tris)}
	return nil
}

// lighting is the per-frame light state in linear color.
type lighting struct {
	ambient  rgb
	dirs     []dirLight
	shadowAt int // index into dirs of the shadowing light, or -1
	darkness float32
	env      *rgb
}

type dirLight struct {
	dir   Vec3
	color rgb
}

func (r *Renderer) lightSetup(s *Scene, dirs []*DirectionalLight, sm *shadowMap) lighting {
	lt := lighting{shadowAt: -1, darkness: Clamp01(r.ShadowMap.Darkness)}
	for _, a := range s.AmbientLights() {
		if !a.Visible {
			continue
		}
		lt.ambient = lt.ambient.add(a.Color.linear(r.GammaInput).scale(a.Intensity))
	}
	for _, d := range dirs {
		if !d.Visible {
			continue
		}
		if sm != nil && sm.light == d {
			lt.shadowAt = len(lt.dirs)
		}
		lt.dirs = append(lt.dirs, dirLight{
			dir:   d.Direction(),
			color: d.Color.linear(r.GammaInput).scale(d.Intensity),
		})
	}
	if r.Environment != nil {
		env := r.Environment.linear(r.GammaInput)
		lt.env = &env
	}
	return lt
}

// preparedTri is a projected, Gouraud-shaded triangle ready for rasterization.
type preparedTri struct {
	sx, sy  [3]float32
	z       [3]float32 // depth 0..1
	invW    [3]float32 // 1/clip.W, the weights for perspective-correct blending
	world   [3]Vec3
	lit     [3]rgb
	shaded  [3]rgb // lit with the shadowing light darkened
	flat    bool   // all vertices share one color
	receive bool
}

// clipVert is a vertex after the model-view-projection transform.
type clipVert struct {
	clip   Vec4
	world  Vec3
	lit    rgb
	shaded rgb
}

func (a clipVert) lerp(b clipVert, t float32) clipVert {
	return clipVert{
		clip: Vec4{
			X: a.clip.X + (b.clip.X-a.clip.X)*t,
			Y: a.clip.Y + (b.clip.Y-a.clip.Y)*t,
			Z: a.clip.Z + (b.clip.Z-a.clip.Z)*t,
			W: a.clip.W + (b.clip.W-a.clip.W)*t,
		},
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		lit:    a.lit.lerp(b.lit, t),
		shaded: a.shaded.lerp(b.shaded, t),
	}
}

// clipNear clips a triangle to the near plane (z >= -w) and appends the
// surviving polygon to out. The polygon has 0, 3 or 4 vertices.
func clipNear(in *[3]clipVert, out []clipVert) []clipVert {
	for i := 0; i < 3; i++ {
		a, b := in[i], in[(i+1)%3]
		da, db := a.clip.Z+a.clip.W, b.clip.Z+b.clip.W
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, a.lerp(b, da/(da-db)))
		}
	}
	return out
}

// shade returns the color of a surface with normal n under lt, both fully lit
// and with the shadowing light darkened.
func (lt *lighting) shade(base rgb, n Vec3, refl float32) (lit, shaded rgb) {
	full := lt.ambient
	dark := lt.ambient
	for li, d := range lt.dirs {
		amount := Dot(n, d.dir)
		if amount <= 0 {
			continue
		}
		c := d.color.scale(amount)
		full = full.add(c)
		if li == lt.shadowAt {
			c = c.scale(1 - lt.darkness)
		}
		dark = dark.add(c)
	}
	lit = base.mul(full)
	shaded = base.mul(dark)
	if lt.env != nil && refl > 0 {
		lit = lit.lerp(lit.mul(*lt.env), refl)
		shaded = shaded.lerp(shaded.mul(*lt.env), refl)
	}
	return lit, shaded
}

func (r *Renderer) prepareMesh(m *Mesh, vp Mat4, cam *PerspectiveCamera, lt lighting, w, h int) {
	model := m.Matrix()
	g := m.Geometry
	mat := m.Material
	if mat == nil {
		mat = NewLambertMaterial(RGB(0xCC, 0xCC, 0xCC))
	}
	base := mat.Color.linear(r.GammaInput)
	refl := Clamp01(mat.Reflectivity)
	n := uint32(len(g.Positions))
	smooth := len(g.Normals) == len(g.Positions)
	var normalMat Mat4
	if smooth {
		normalMat = m.NormalMatrix()
	}
	receive := m.ReceiveShadow && lt.shadowAt >= 0

	var verts [3]clipVert
	poly := make([]clipVert, 0, 4)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		idx := [3]uint32{g.Indices[i], g.Indices[i+1], g.Indices[i+2]}
		if idx[0] >= n || idx[1] >= n || idx[2] >= n {
			continue
		}

		behind := 0
		for k, vi := range idx {
			wp := Mat4MulPoint(model, g.Positions[vi])
			verts[k] = clipVert{clip: Mat4MulV4(vp, Vec4{wp.X, wp.Y, wp.Z, 1}), world: wp}
			if verts[k].clip.Z+verts[k].clip.W < 0 {
				behind++
			}
		}
		if behind == 3 {
			continue
		}

		face := Normalize(Cross(verts[1].world.Sub(verts[0].world), verts[2].world.Sub(verts[0].world)))
		if Dot(face, cam.Position.Sub(verts[0].world)) < 0 {
			face = face.Mul(-1)
		}
		for k, vi := range idx {
			nv := face
			if smooth {
				if vn := Normalize(Mat4MulDir(normalMat, g.Normals[vi])); vn != (Vec3{}) {
					if Dot(vn, face) < 0 {
						vn = vn.Mul(-1)
					}
					nv = vn
				}
			}
			verts[k].lit, verts[k].shaded = lt.shade(base, nv, refl)
		}

		poly = clipNear(&verts, poly[:0])
		for k := 1; k+1 < len(poly); k++ {
			if tri, ok := project(poly[0], poly[k], poly[k+1], w, h); ok {
				tri.receive = receive
				r.tris = append(r.tris, tri)
			}
		}
	}
}

func project(a, b, c clipVert, w, h int) (preparedTri, bool) {
	var tri preparedTri
	for k, v := range [3]clipVert{a, b, c} {
		x, y, z, ok := clipToScreen(v.clip, w, h)
		if !ok {
			return tri, false
		}
		tri.sx[k], tri.sy[k], tri.z[k] = x, y, z
		tri.invW[k] = 1 / v.clip.W
		tri.world[k] = v.world
		tri.lit[k], tri.shaded[k] = v.lit, v.shaded
	}
	tri.flat = tri.lit[0] == tri.lit[1] && tri.lit[1] == tri.lit[2] &&
		tri.shaded[0] == tri.shaded[1] && tri.shaded[1] == tri.shaded[2]
	return tri, true
}

func blend3(v *[3]rgb, b0, b1, b2 float32) rgb {
	return v[0].scale(b0).add(v[1].scale(b1)).add(v[2].scale(b2))
}

func (r *Renderer) rasterBand(t Target, w, lo, hi int, sm *shadowMap, fog *Fog, fogColor rgb) {
	for i := lo * w; i < hi*w; i++ {
		r.depth[i] = 1
	}
	bias := r.ShadowMap.Bias
	for ti := range r.tris {
		tri := &r.tris[ti]
		rasterTriangle(tri.sx[0], tri.sy[0], tri.sx[1], tri.sy[1], tri.sx[2], tri.sy[2], w, lo, hi, func(x, y int, a0, a1, a2 float32) {
			// Screen-space depth is affine; everything else is divided by w.
			z := a0*tri.z[0] + a1*tri.z[1] + a2*tri.z[2]
			idx := y*w + x
			if z < 0 || z >= r.depth[idx] {
				return
			}
			r.depth[idx] = z

			b0, b1, b2 := a0*tri.invW[0], a1*tri.invW[1], a2*tri.invW[2]
			sum := b0 + b1 + b2
			if sum <= 0 {
				return
			}
			b0, b1, b2 = b0/sum, b1/sum, b2/sum

			shadowed := false
			if tri.receive && sm != nil {
				p := tri.world[0].Mul(b0).Add(tri.world[1].Mul(b1)).Add(tri.world[2].Mul(b2))
				shadowed = sm.occluded(p, bias)
			}
			var c rgb
			switch {
			case tri.flat && shadowed:
				c = tri.shaded[0]
			case tri.flat:
				c = tri.lit[0]
			case shadowed:
				c = blend3(&tri.shaded, b0, b1, b2)
			default:
				c = blend3(&tri.lit, b0, b1, b2)
			}
			if fog != nil {
				c = c.lerp(fogColor, fog.factor(1/sum))
			}
			t.SetPixel(x, y, c.color(r.GammaOutput))
		})
	}
}

// maxLineCoord bounds wireframe endpoints so near-eye vertices cannot
// produce unbounded Bresenham walks.
const maxLineCoord = 1 << 14

func (r *Renderer) drawWireframe(t Target) {
	for ti := range r.tris {
		tri := &r.tris[ti]
		if !withinLineBounds(tri) {
			continue
		}
		c := tri.lit[0].color(r.GammaOutput)
		x0, y0 := int(tri.sx[0]), int(tri.sy[0])
		x1, y1 := int(tri.sx[1]), int(tri.sy[1])
		x2, y2 := int(tri.sx[2]), int(tri.sy[2])
		drawLine(t, x0, y0, x1, y1, c)
		drawLine(t, x1, y1, x2, y2, c)
		drawLine(t, x2, y2, x0, y0, c)
	}
}

func withinLineBounds(tri *preparedTri) bool {
	for k := 0; k < 3; k++ {
		if tri.sx[k] < -maxLineCoord || tri.sx[k] > maxLineCoord || tri.sy[k] < -maxLineCoord || tri.sy[k] > maxLineCoord {
			return false
		}
	}
	return true
}
