// Package stats tracks frame timing and draws a small performance panel.
package stats

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	PanelWidth  = 80
	PanelHeight = 48

	graphHeight = 16
)

var (
	panelBG = color.RGBA{R: 0x00, G: 0x00, B: 0x22, A: 0xE0}
	textFG  = color.RGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
	graphFG = color.RGBA{R: 0x00, G: 0x88, B: 0xFF, A: 0xFF}
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	FPS, MinFPS, MaxFPS float64
	MS, MinMS, MaxMS    float64
	Updates             uint64
}

// Stats counts frames between Begin and End. FPS is recomputed once per
// second from the frames counted in that second.
type Stats struct {
	now func() time.Time

	begin  time.Time
	prev   time.Time
	frames int

	fps, minFPS, maxFPS float64
	ms, minMS, maxMS    float64
	updates             uint64

	history [PanelWidth - 6]float64
	head    int

	font tinyfont.Fonter
}

type Option func(*Stats)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Stats) { s.now = now } }

func New(opts ...Option) *Stats {
	s := &Stats{
		now:    time.Now,
		minFPS: math.Inf(1),
		minMS:  math.Inf(1),
		font:   &proggy.TinySZ8pt7b,
	}
	for _, opt := range opts {
		opt(s)
	}
	t := s.now()
	s.begin, s.prev = t, t
	return s
}

func (s *Stats) Begin() { s.begin = s.now() }

// End closes the frame opened by Begin and returns the end time.
func (s *Stats) End() time.Time {
	t := s.now()
	s.frames++

	s.ms = float64(t.Sub(s.begin)) / float64(time.Millisecond)
	s.minMS = math.Min(s.minMS, s.ms)
	s.maxMS = math.Max(s.maxMS, s.ms)

	if elapsed := t.Sub(s.prev); elapsed >= time.Second {
		s.fps = float64(s.frames) * float64(time.Second) / float64(elapsed)
		s.minFPS = math.Min(s.minFPS, s.fps)
		s.maxFPS = math.Max(s.maxFPS, s.fps)
		s.history[s.head] = s.fps
		s.head = (s.head + 1) % len(s.history)
		s.prev = t
		s.frames = 0
	}
	return t
}

// Update ends the current frame and begins the next one.
func (s *Stats) Update() {
	s.begin = s.End()
	s.updates++
}

func (s *Stats) Updates() uint64 { return s.updates }

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		FPS: s.fps, MinFPS: s.minFPS, MaxFPS: s.maxFPS,
		MS: s.ms, MinMS: s.minMS, MaxMS: s.maxMS,
		Updates: s.updates,
	}
	if math.IsInf(snap.MinFPS, 1) {
		snap.MinFPS = 0
	}
	if math.IsInf(snap.MinMS, 1) {
		snap.MinMS = 0
	}
	return snap
}

// Draw paints the panel into the top-left corner of dst, clipped to dst.
func (s *Stats) Draw(dst *image.RGBA) {
	if dst == nil {
		return
	}
	panel := image.Rect(0, 0, PanelWidth, PanelHeight).Add(dst.Rect.Min).Intersect(dst.Rect)
	if panel.Empty() {
		return
	}
	draw.Draw(dst, panel, image.NewUniform(panelBG), image.Point{}, draw.Over)

	snap := s.Snapshot()
	d := &panelDisplayer{img: dst, rect: panel}
	lineH := int16(s.font.GetYAdvance())
	tinyfont.WriteLine(d, s.font, 3, lineH, fmt.Sprintf("%.0f FPS (%.0f-%.0f)", snap.FPS, snap.MinFPS, snap.MaxFPS), textFG)
	tinyfont.WriteLine(d, s.font, 3, 2*lineH, fmt.Sprintf("%.0f MS (%.0f-%.0f)", snap.MS, snap.MinMS, snap.MaxMS), textFG)

	s.drawGraph(d)
}

func (s *Stats) drawGraph(d *panelDisplayer) {
	top := int16(PanelHeight - graphHeight - 3)
	scale := s.maxFPS
	if scale <= 0 {
		return
	}
	n := len(s.history)
	for i := 0; i < n; i++ {
		v := s.history[(s.head+i)%n]
		bar := int16(math.Round(v / scale * graphHeight))
		x := int16(3 + i)
		for y := int16(0); y < bar; y++ {
			d.SetPixel(x, top+graphHeight-1-y, graphFG)
		}
	}
}

// panelDisplayer exposes a clipped region of an RGBA image as a display.
type panelDisplayer struct {
	img  *image.RGBA
	rect image.Rectangle
}

var _ drivers.Displayer = (*panelDisplayer)(nil)

func (d *panelDisplayer) Size() (x, y int16) {
	return int16(d.rect.Dx()), int16(d.rect.Dy())
}

func (d *panelDisplayer) SetPixel(x, y int16, c color.RGBA) {
	p := image.Pt(d.rect.Min.X+int(x), d.rect.Min.Y+int(y))
	if !p.In(d.rect) {
		return
	}
	d.img.SetRGBA(p.X, p.Y, c)
}

func (d *panelDisplayer) Display() error { return nil }
