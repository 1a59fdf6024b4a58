package viewer

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// DrawFailure replaces dst with a white screen listing err, one wrapped line
// per line of the message.
func DrawFailure(dst *image.RGBA, err error) {
	if dst == nil || err == nil {
		return
	}
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0xFF, 0xFF, 0xFF, 0xFF
	}

	font := &proggy.TinySZ8pt7b
	lineH := int16(font.GetYAdvance())
	_, outbox := tinyfont.LineWidth(font, "0")
	charW := int16(outbox)
	if lineH <= 0 || charW <= 0 {
		return
	}

	d := surfaceDisplay{img: dst}
	w, h := d.Size()
	cols := (w - 8) / charW
	if cols <= 0 {
		cols = 1
	}
	fg := color.RGBA{A: 0xFF}

	lines := []string{"render stopped:"}
	for _, part := range strings.Split(err.Error(), ": ") {
		lines = append(lines, "  "+part)
	}

	y := lineH
	for _, line := range lines {
		for len(line) > 0 {
			if y > h {
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 4, y, chunk, fg)
			y += lineH
			line = strings.TrimLeft(rest, " ")
		}
	}
}

type surfaceDisplay struct {
	img *image.RGBA
}

var _ drivers.Displayer = surfaceDisplay{}

func (d surfaceDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d surfaceDisplay) SetPixel(x, y int16, c color.RGBA) {
	b := d.img.Bounds()
	p := image.Pt(b.Min.X+int(x), b.Min.Y+int(y))
	if p.In(b) {
		d.img.SetRGBA(p.X, p.Y, c)
	}
}

func (surfaceDisplay) Display() error { return nil }

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
