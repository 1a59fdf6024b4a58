package softgl

import "golang.org/x/sync/errgroup"

// ShadowMapConfig holds renderer-wide shadow settings.
type ShadowMapConfig struct {
	Enabled bool

	// Bias is subtracted from a receiver's light-space depth (0..1) before
	// comparing it with the map.
	Bias float32

	// Darkness is how much of the shadowing light is removed in shadow, 0..1.
	Darkness float32

	// CameraNear and CameraFar override the light's ShadowCamera planes when
	// non-zero.
	CameraNear float32
	CameraFar  float32
}

// shadowMap is a depth image rendered from a directional light.
type shadowMap struct {
	light *DirectionalLight
	w, h  int
	depth []float32
	vp    Mat4
}

func (sm *shadowMap) resize(w, h int) {
	if w <= 0 {
		w = 512
	}
	if h <= 0 {
		h = 512
	}
	sm.w, sm.h = w, h
	if cap(sm.depth) < w*h {
		sm.depth = make([]float32, w*h)
		Logger().Debug("softgl: shadow map allocated", "width", w, "height", h)
	} else {
		sm.depth = sm.depth[:w*h]
	}
}

// shadowLight returns the first directional light that casts shadows.
func shadowLight(lights []*DirectionalLight) *DirectionalLight {
	for _, l := range lights {
		if l.CastShadow && l.Visible {
			return l
		}
	}
	return nil
}

func lightView(l *DirectionalLight) Mat4 {
	up := V3(0, 1, 0)
	dir := Normalize(l.Target.Sub(l.Position))
	if d := Dot(dir, up); d > 0.999 || d < -0.999 {
		up = V3(0, 0, 1)
	}
	return Mat4LookAt(l.Position, l.Target, up)
}

// build renders the depth of every shadow caster as seen from the light.
func (sm *shadowMap) build(l *DirectionalLight, cfg ShadowMapConfig, meshes []*Mesh, workers int) error {
	sm.light = l
	sm.resize(l.ShadowMapWidth, l.ShadowMapHeight)

	cam := l.ShadowCamera
	if cfg.CameraNear != 0 {
		cam.Near = cfg.CameraNear
	}
	if cfg.CameraFar != 0 {
		cam.Far = cfg.CameraFar
	}
	sm.vp = Mat4Mul(Mat4Ortho(cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far), lightView(l))

	var tris [][3]Vec3
	for _, m := range meshes {
		if !m.Visible || !m.CastShadow || m.Geometry == nil {
			continue
		}
		model := m.Matrix()
		g := m.Geometry
		n := uint32(len(g.Positions))
		for i := 0; i+2 < len(g.Indices); i += 3 {
			i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
			if i0 >= n || i1 >= n || i2 >= n {
				continue
			}
			var s [3]Vec3
			ok := true
			for k, idx := range [3]uint32{i0, i1, i2} {
				wp := Mat4MulPoint(model, g.Positions[idx])
				x, y, z, vis := clipToScreen(Mat4MulV4(sm.vp, Vec4{wp.X, wp.Y, wp.Z, 1}), sm.w, sm.h)
				if !vis {
					ok = false
					break
				}
				s[k] = V3(x, y, z)
			}
			if ok {
				tris = append(tris, s)
			}
		}
	}

	return forBands(sm.h, workers, func(lo, hi int) {
		for i := lo * sm.w; i < hi*sm.w; i++ {
			sm.depth[i] = 1
		}
		for _, s := range tris {
			rasterTriangle(s[0].X, s[0].Y, s[1].X, s[1].Y, s[2].X, s[2].Y, sm.w, lo, hi, func(x, y int, a0, a1, a2 float32) {
				z := a0*s[0].Z + a1*s[1].Z + a2*s[2].Z
				idx := y*sm.w + x
				if z >= 0 && z < sm.depth[idx] {
					sm.depth[idx] = z
				}
			})
		}
	})
}

// occluded reports whether world point p is behind a caster from the light.
// Points outside the map are lit.
func (sm *shadowMap) occluded(p Vec3, bias float32) bool {
	x, y, z, ok := clipToScreen(Mat4MulV4(sm.vp, Vec4{p.X, p.Y, p.Z, 1}), sm.w, sm.h)
	if !ok || z < 0 || z > 1 {
		return false
	}
	ix, iy := int(x), int(y)
	if x < 0 || y < 0 || ix >= sm.w || iy >= sm.h {
		return false
	}
	return z-bias > sm.depth[iy*sm.w+ix]
}

// forBands splits rows [0,h) into one band per worker and waits for all of them.
func forBands(h, workers int, fn func(lo, hi int)) error {
	if workers <= 1 || h < 2*workers {
		fn(0, h)
		return nil
	}
	band := (h + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < h; lo += band {
		lo, hi := lo, min(lo+band, h)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}
