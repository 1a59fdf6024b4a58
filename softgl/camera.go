package softgl

// PerspectiveCamera describes the viewing transform.
type PerspectiveCamera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	projection Mat4
}

// NewPerspectiveCamera returns a camera at the origin looking down -Z.
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Target: V3(0, 0, -1),
		Up:     V3(0, 1, 0),
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix must be called after FOV, Aspect, Near or Far change.
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projection = Mat4Perspective(DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) ProjectionMatrix() Mat4 { return c.projection }

// LookAt points the camera at target.
func (c *PerspectiveCamera) LookAt(target Vec3) { c.Target = target }

// ViewMatrix returns the world-to-camera transform.
func (c *PerspectiveCamera) ViewMatrix() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}
