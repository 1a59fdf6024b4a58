package softgl

import "math"

// OrbitController provides orbit/zoom/pan interactions for a camera.
//
// It does not depend on any input system; hosts translate pointer motion into
// Rotate, Zoom and Pan calls and then Apply the result.
type OrbitController struct {
	Target Vec3
	Yaw    float32
	Pitch  float32
	Radius float32

	MinRadius float32
	MaxRadius float32
}

// NewOrbitController derives yaw, pitch and radius from the camera's current placement.
func NewOrbitController(cam *PerspectiveCamera) *OrbitController {
	c := &OrbitController{}
	if cam == nil {
		return c
	}
	c.Target = cam.Target
	off := cam.Position.Sub(cam.Target)
	c.Radius = Len(off)
	if c.Radius > 0 {
		c.Yaw = float32(math.Atan2(float64(off.X), float64(off.Z)))
		c.Pitch = -float32(math.Asin(float64(Clamp(off.Y/c.Radius, -1, 1))))
	}
	return c
}

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.01

func (c *OrbitController) Apply(cam *PerspectiveCamera) {
	if cam == nil {
		return
	}
	r := c.Radius
	if r == 0 {
		r = 3
	}
	if c.MinRadius != 0 && r < c.MinRadius {
		r = c.MinRadius
	}
	if c.MaxRadius != 0 && r > c.MaxRadius {
		r = c.MaxRadius
	}

	m := Mat4Mul(Mat4RotateY(c.Yaw), Mat4RotateX(c.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = c.Target.Add(V3(p.X, p.Y, p.Z))
	cam.Target = c.Target
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch = Clamp(c.Pitch+deltaPitch, -maxPitch, maxPitch)
}

// Zoom scales the radius; factors above 1 move away from the target.
func (c *OrbitController) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Radius *= factor
	if c.MinRadius != 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}
}

// Pan moves the target in the camera's screen plane.
func (c *OrbitController) Pan(cam *PerspectiveCamera, dx, dy float32) {
	if cam == nil {
		return
	}
	forward := Normalize(cam.Target.Sub(cam.Position))
	up := cam.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	right := Normalize(Cross(forward, up))
	camUp := Cross(right, forward)
	c.Target = c.Target.Add(right.Mul(dx)).Add(camUp.Mul(dy))
}
