package softgl

// Mesh is geometry drawn with a material at an object transform.
type Mesh struct {
	Object3D

	Geometry *Geometry
	Material *LambertMaterial

	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh returns a visible mesh at the origin.
func NewMesh(g *Geometry, m *LambertMaterial) *Mesh {
	if m == nil {
		m = NewLambertMaterial(RGB(0xCC, 0xCC, 0xCC))
	}
	return &Mesh{Object3D: NewObject3D(), Geometry: g, Material: m}
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Object3D
	Color     Color
	Intensity float32
}

func NewAmbientLight(c Color) *AmbientLight {
	return &AmbientLight{Object3D: NewObject3D(), Color: c, Intensity: 1}
}

// ShadowCamera is the orthographic frustum a directional light renders
// its shadow map with, in light view space.
type ShadowCamera struct {
	Left, Right, Top, Bottom float32
	Near, Far                float32
}

// DirectionalLight shines from Position towards Target.
type DirectionalLight struct {
	Object3D
	Color     Color
	Intensity float32
	Target    Vec3

	CastShadow      bool
	ShadowMapWidth  int
	ShadowMapHeight int
	ShadowCamera    ShadowCamera
}

// NewDirectionalLight returns a light at (0,1,0) aimed at the origin with a
// 512x512 shadow map over a 1000x1000 frustum.
func NewDirectionalLight(c Color, intensity float32) *DirectionalLight {
	l := &DirectionalLight{
		Object3D:        NewObject3D(),
		Color:           c,
		Intensity:       intensity,
		ShadowMapWidth:  512,
		ShadowMapHeight: 512,
		ShadowCamera: ShadowCamera{
			Left: -500, Right: 500, Top: 500, Bottom: -500,
			Near: 50, Far: 5000,
		},
	}
	l.Position = V3(0, 1, 0)
	return l
}

// Direction returns the unit vector pointing from the surface towards the light.
func (l *DirectionalLight) Direction() Vec3 {
	return Normalize(l.Position.Sub(l.Target))
}

// Fog blends distant fragments towards Color, linearly between Near and Far
// view distances.
type Fog struct {
	Color     Color
	Near, Far float32
}

// factor returns the fog amount for a view distance.
func (f *Fog) factor(dist float32) float32 {
	if f == nil || f.Far <= f.Near {
		return 0
	}
	return Clamp01((dist - f.Near) / (f.Far - f.Near))
}

// Scene is the root of everything rendered in a frame.
type Scene struct {
	Object3D
	Fog *Fog

	children []Node
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{Object3D: NewObject3D()}
}

// Add appends nodes to the scene. Nil nodes and nodes already present are skipped.
func (s *Scene) Add(nodes ...Node) {
	if s == nil {
		return
	}
	for _, n := range nodes {
		if n == nil || s.contains(n) {
			continue
		}
		s.children = append(s.children, n)
	}
}

func (s *Scene) contains(n Node) bool {
	for _, c := range s.children {
		if c == n {
			return true
		}
	}
	return false
}

// Children returns a copy of the scene's children in insertion order.
func (s *Scene) Children() []Node {
	if s == nil {
		return nil
	}
	out := make([]Node, len(s.children))
	copy(out, s.children)
	return out
}

func (s *Scene) ChildCount() int {
	if s == nil {
		return 0
	}
	return len(s.children)
}

// Meshes returns the meshes in the scene.
func (s *Scene) Meshes() []*Mesh {
	var out []*Mesh
	s.each(func(n Node) {
		if m, ok := n.(*Mesh); ok {
			out = append(out, m)
		}
	})
	return out
}

// AmbientLights returns the ambient lights in the scene.
func (s *Scene) AmbientLights() []*AmbientLight {
	var out []*AmbientLight
	s.each(func(n Node) {
		if l, ok := n.(*AmbientLight); ok {
			out = append(out, l)
		}
	})
	return out
}

// DirectionalLights returns the directional lights in the scene.
func (s *Scene) DirectionalLights() []*DirectionalLight {
	var out []*DirectionalLight
	s.each(func(n Node) {
		if l, ok := n.(*DirectionalLight); ok {
			out = append(out, l)
		}
	})
	return out
}

func (s *Scene) each(fn func(n Node)) {
	if s == nil {
		return
	}
	for _, n := range s.children {
		fn(n)
	}
}
