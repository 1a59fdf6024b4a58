//go:build cgo

package hal

import (
	"context"
	"errors"
	"time"

	"osmview/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// WindowConfig controls the desktop window host.
type WindowConfig struct {
	Title         string
	Width, Height int // initial viewport; 960x540
	TPS           int // refresh opportunities per second; 60

	// OnFailure, when set, keeps the window open on a failed Step and paints
	// the error instead; the error is returned once the window closes.
	OnFailure FailureFunc
}

// RunWindow opens a resizable window whose client area is the app's viewport.
// It blocks until the window closes, Escape is pressed or ctx is done.
func RunWindow(ctx context.Context, newApp NewApp, cfg WindowConfig) error {
	if cfg.Title == "" {
		cfg.Title = "osmview"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 960, 540
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	app, err := newApp(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	g := &hostGame{ctx: ctx, app: app, cfg: cfg}
	g.controls, _ = app.(Controls)

	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(cfg.TPS)

	if err := app.Start(ctx, time.Now()); err != nil {
		return err
	}
	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	ctx      context.Context
	app      App
	controls Controls
	cfg      WindowConfig

	pointer pointerInput
	frame   *ebiten.Image
	failed  error
}

func (g *hostGame) exit() error {
	if g.failed != nil {
		return g.failed
	}
	return ebiten.Termination
}

func (g *hostGame) Update() error {
	if ebiten.IsWindowBeingClosed() || g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return g.exit()
	}
	if g.failed != nil {
		return nil
	}
	if g.controls != nil {
		g.pointer.poll(g.controls)
	}
	if err := g.app.Step(time.Now()); err != nil {
		if g.cfg.OnFailure == nil {
			return err
		}
		g.failed = err
		g.cfg.OnFailure(g.app.Surface(), err)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	src := g.app.Surface()
	if src == nil {
		return
	}
	size := src.Bounds().Size()
	if g.frame == nil || g.frame.Bounds().Size() != size {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(size.X, size.Y)
	}
	g.frame.WritePixels(src.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.failed == nil {
		g.app.Resize(outsideWidth, outsideHeight)
	}
	if src := g.app.Surface(); src != nil {
		b := src.Bounds()
		return b.Dx(), b.Dy()
	}
	return outsideWidth, outsideHeight
}
