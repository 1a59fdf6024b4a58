package softgl

import "math"

// plotFunc receives a covered pixel and its barycentric weights.
type plotFunc func(x, y int, a0, a1, a2 float32)

// rasterTriangle walks the pixel centers covered by a screen-space triangle,
// limited to columns [0,w) and rows [rowLo,rowHi). Either winding is accepted.
func rasterTriangle(x0, y0, x1, y1, x2, y2 float32, w, rowLo, rowHi int, plot plotFunc) {
	minX := int(math.Floor(float64(min(x0, x1, x2))))
	maxX := int(math.Ceil(float64(max(x0, x1, x2))))
	minY := int(math.Floor(float64(min(y0, y1, y2))))
	maxY := int(math.Ceil(float64(max(y0, y1, y2))))
	if minX < 0 {
		minX = 0
	}
	if minY < rowLo {
		minY = rowLo
	}
	if maxX >= w {
		maxX = w - 1
	}
	if maxY >= rowHi {
		maxY = rowHi - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	invArea := 1 / area

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			a0 := edgeFn(x1, y1, x2, y2, px, py) * invArea
			a1 := edgeFn(x2, y2, x0, y0, px, py) * invArea
			a2 := edgeFn(x0, y0, x1, y1, px, py) * invArea
			if a0 < 0 || a1 < 0 || a2 < 0 {
				continue
			}
			plot(x, y, a0, a1, a2)
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y float32) float32 {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

// drawLine is Bresenham without depth testing.
func drawLine(t Target, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clipToScreen projects a clip-space point to pixel coordinates and a 0..1 depth.
// ok is false for points on or behind the eye plane.
func clipToScreen(p Vec4, w, h int) (sx, sy, depth float32, ok bool) {
	if p.W <= 1e-6 {
		return 0, 0, 0, false
	}
	inv := 1 / p.W
	nx, ny, nz := p.X*inv, p.Y*inv, p.Z*inv
	sx = (nx*0.5 + 0.5) * float32(w)
	sy = (1 - (ny*0.5 + 0.5)) * float32(h)
	return sx, sy, nz*0.5 + 0.5, true
}
