package stats

import (
	"image"
	"image/color"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFPSOncePerSecond(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := New(WithClock(clk.now))

	for i := 0; i < 9; i++ {
		clk.advance(100 * time.Millisecond)
		s.Update()
	}
	if got := s.Snapshot().FPS; got != 0 {
		t.Fatalf("FPS before one second = %v, want 0", got)
	}
	clk.advance(100 * time.Millisecond)
	s.Update()

	snap := s.Snapshot()
	if snap.FPS != 10 {
		t.Fatalf("FPS = %v, want 10", snap.FPS)
	}
	if snap.Updates != 10 {
		t.Fatalf("Updates = %d, want 10", snap.Updates)
	}
	if snap.MS != 100 {
		t.Fatalf("MS = %v, want 100", snap.MS)
	}
}

func TestBeginEndMeasuresFrame(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := New(WithClock(clk.now))

	s.Begin()
	clk.advance(5 * time.Millisecond)
	s.End()
	s.Begin()
	clk.advance(20 * time.Millisecond)
	s.End()

	snap := s.Snapshot()
	if snap.MS != 20 || snap.MinMS != 5 || snap.MaxMS != 20 {
		t.Fatalf("MS = %v (%v-%v), want 20 (5-20)", snap.MS, snap.MinMS, snap.MaxMS)
	}
	if s.Updates() != 0 {
		t.Fatalf("Updates() = %d, want 0 without Update", s.Updates())
	}
}

func TestSnapshotBeforeFirstFrame(t *testing.T) {
	snap := New().Snapshot()
	if snap.MinFPS != 0 || snap.MinMS != 0 {
		t.Fatalf("Snapshot() = %+v, want zero minimums", snap)
	}
}

func TestDrawStaysInPanel(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := New(WithClock(clk.now))
	for i := 0; i < 30; i++ {
		clk.advance(100 * time.Millisecond)
		s.Update()
	}

	bg := color.RGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xFF}
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	s.Draw(img)

	if got := img.RGBAAt(1, 1); got == bg {
		t.Fatalf("panel pixel = %v, want overlay", got)
	}
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			if x < PanelWidth && y < PanelHeight {
				continue
			}
			if got := img.RGBAAt(x, y); got != bg {
				t.Fatalf("pixel (%d,%d) = %v outside the panel", x, y, got)
			}
		}
	}
}

func TestDrawSmallTarget(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 4))
	New().Draw(img)
	New().Draw(nil)
}
