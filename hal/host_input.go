//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// arrowStep is the drag distance in pixels one arrow key press stands for.
const arrowStep = 20

// pointerInput turns mouse drags, wheel and keys into Controls calls.
// Left drag orbits, right drag pans, the wheel zooms.
type pointerInput struct {
	lastX, lastY int
}

func (p *pointerInput) poll(c Controls) {
	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		p.lastX, p.lastY = x, y
	}
	dx, dy := float32(x-p.lastX), float32(y-p.lastY)
	p.lastX, p.lastY = x, y

	if dx != 0 || dy != 0 {
		switch {
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
			c.Orbit(dx, dy)
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
			c.Pan(dx, dy)
		}
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		c.Zoom(float32(wy))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		c.Orbit(-arrowStep, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		c.Orbit(arrowStep, 0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		c.Orbit(0, -arrowStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		c.Orbit(0, arrowStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		c.ToggleWireframe()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		c.ToggleStats()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		c.ResetView()
	}
}
