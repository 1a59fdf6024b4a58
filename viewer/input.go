package viewer

import (
	"math"

	"osmview/softgl"
)

// zoomStep is the radius factor per wheel notch.
const zoomStep = 0.95

// Orbit rotates the camera around its target by a pointer drag in pixels.
// A drag across the full viewport height is one full turn.
func (v *Viewer) Orbit(dx, dy float32) {
	_, h := v.Renderer.Size()
	turn := 2 * math.Pi / float32(h)
	v.Controls.Rotate(-dx*turn, -dy*turn)
	v.applyControls()
}

// Zoom dollies by wheel notches; positive notches move closer.
func (v *Viewer) Zoom(notches float32) {
	if notches == 0 {
		return
	}
	v.Controls.Zoom(float32(math.Pow(zoomStep, float64(notches))))
	v.applyControls()
}

// Pan shifts the target so the scene follows a pointer drag in pixels.
func (v *Viewer) Pan(dx, dy float32) {
	_, h := v.Renderer.Size()
	dist := softgl.Len(v.Camera.Position.Sub(v.Camera.Target))
	perPixel := 2 * dist * float32(math.Tan(float64(softgl.DegToRad(v.Camera.FOV)/2))) / float32(h)
	v.Controls.Pan(v.Camera, -dx*perPixel, dy*perPixel)
	v.applyControls()
}

func (v *Viewer) applyControls() {
	v.Controls.Apply(v.Camera)
	v.changed = true
}

func (v *Viewer) ToggleWireframe() {
	if v.Renderer.Mode == softgl.RenderWireframe {
		v.Renderer.SetRenderMode(softgl.RenderSolid)
	} else {
		v.Renderer.SetRenderMode(softgl.RenderWireframe)
	}
	v.changed = true
}

func (v *Viewer) ToggleStats() {
	v.cfg.HideStats = !v.cfg.HideStats
	v.changed = true
}

// ResetView puts the camera back at its startup placement.
func (v *Viewer) ResetView() {
	v.Camera.Position = softgl.V3(0, 0, cameraZ)
	v.Camera.LookAt(softgl.V3(0, 0, 0))
	v.Controls = softgl.NewOrbitController(v.Camera)
	v.changed = true
}
