package softgl

import "image/color"

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex converts a 0xRRGGBB literal to an opaque Color.
func Hex(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

func (c Color) MulScalar(s float32) Color {
	t := Clamp01(s)
	mul := func(ch uint8) uint8 {
		return uint8(float32(ch)*t + 0.5)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

// NRGBA returns the color as an image/color value.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// rgb is a linear color used by the shading stages.
type rgb struct {
	r, g, b float32
}

// linear converts c to 0..1 floats, squaring each channel when gamma is set.
func (c Color) linear(gamma bool) rgb {
	v := rgb{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	if gamma {
		v = rgb{v.r * v.r, v.g * v.g, v.b * v.b}
	}
	return v
}

func (a rgb) add(b rgb) rgb         { return rgb{a.r + b.r, a.g + b.g, a.b + b.b} }
func (a rgb) mul(b rgb) rgb         { return rgb{a.r * b.r, a.g * b.g, a.b * b.b} }
func (a rgb) scale(s float32) rgb   { return rgb{a.r * s, a.g * s, a.b * s} }
func (a rgb) lerp(b rgb, t float32) rgb {
	return rgb{a.r + (b.r-a.r)*t, a.g + (b.g-a.g)*t, a.b + (b.b-a.b)*t}
}

// color converts back to 8-bit, taking the square root when gamma is set.
func (a rgb) color(gamma bool) Color {
	r, g, b := Clamp01(a.r), Clamp01(a.g), Clamp01(a.b)
	if gamma {
		r, g, b = sqrt32(r), sqrt32(g), sqrt32(b)
	}
	return Color{R: uint8(r*255 + 0.5), G: uint8(g*255 + 0.5), B: uint8(b*255 + 0.5), A: 0xFF}
}
