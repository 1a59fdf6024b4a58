package softgl

// Euler is a rotation in radians, applied about X, then Y, then Z.
type Euler struct {
	X, Y, Z float32
}

// Object3D is the transform shared by everything placed in a scene.
type Object3D struct {
	Name     string
	Position Vec3
	Rotation Euler
	Scale    Vec3
	Visible  bool
}

// NewObject3D returns a visible object at the origin with unit scale.
func NewObject3D() Object3D {
	return Object3D{Scale: V3(1, 1, 1), Visible: true}
}

// Object returns o. It lets embedding types satisfy Node.
func (o *Object3D) Object() *Object3D { return o }

func (o *Object3D) SetPosition(x, y, z float32) { o.Position = V3(x, y, z) }

// SetScale sets a uniform scale.
func (o *Object3D) SetScale(s float32) { o.Scale = V3(s, s, s) }

// Matrix returns the object-to-world transform.
func (o *Object3D) Matrix() Mat4 {
	scale := o.Scale
	if scale == (Vec3{}) {
		scale = V3(1, 1, 1)
	}
	return Mat4Compose(o.Position, o.Rotation, scale)
}

// NormalMatrix returns the transform for object-space normals: the rotation
// combined with the inverse scale. Normalize the result before use.
func (o *Object3D) NormalMatrix() Mat4 {
	inv := func(s float32) float32 {
		if s == 0 {
			return 1
		}
		return 1 / s
	}
	scale := V3(1, 1, 1)
	if o.Scale != (Vec3{}) {
		scale = V3(inv(o.Scale.X), inv(o.Scale.Y), inv(o.Scale.Z))
	}
	return Mat4Compose(Vec3{}, o.Rotation, scale)
}

// Node is anything that can be added to a Scene.
type Node interface {
	Object() *Object3D
}
