package softgl

// LambertMaterial is a diffuse-only surface.
type LambertMaterial struct {
	Color Color

	// Reflectivity is how strongly the renderer environment color multiplies
	// the lit color. Zero opts the material out of Renderer.Environment.
	Reflectivity float32
}

// NewLambertMaterial returns a material that ignores the environment.
func NewLambertMaterial(c Color) *LambertMaterial {
	return &LambertMaterial{Color: c}
}
