package softgl

import (
	"errors"
	"fmt"
	"math"
)

var errBadIndex = errors.New("softgl: index out of range")

// Geometry is an indexed triangle list.
type Geometry struct {
	Positions []Vec3
	Normals   []Vec3 // optional, per vertex
	Indices   []uint32
}

// NewGeometry wraps positions and a triangle index list.
func NewGeometry(positions []Vec3, indices []uint32) *Geometry {
	return &Geometry{Positions: positions, Indices: indices}
}

func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// Validate reports the first index that does not address a position.
func (g *Geometry) Validate() error {
	if g == nil {
		return errors.New("softgl: nil geometry")
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("softgl: index count %d is not a multiple of 3", len(g.Indices))
	}
	n := uint32(len(g.Positions))
	for i, idx := range g.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d]=%d, %d positions", errBadIndex, i, idx, n)
		}
	}
	if g.Normals != nil && len(g.Normals) != len(g.Positions) {
		return fmt.Errorf("softgl: %d normals for %d positions", len(g.Normals), len(g.Positions))
	}
	return nil
}

// BoundingBox returns the axis-aligned bounds of the positions.
func (g *Geometry) BoundingBox() (lo, hi Vec3) {
	if g == nil || len(g.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	lo, hi = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// ComputeVertexNormals sets Normals to the normalized sum of adjacent face normals.
func (g *Geometry) ComputeVertexNormals() {
	if g == nil {
		return
	}
	normals := make([]Vec3, len(g.Positions))
	n := uint32(len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		fn := Cross(g.Positions[b].Sub(g.Positions[a]), g.Positions[c].Sub(g.Positions[a]))
		normals[a] = normals[a].Add(fn)
		normals[b] = normals[b].Add(fn)
		normals[c] = normals[c].Add(fn)
	}
	for i := range normals {
		normals[i] = Normalize(normals[i])
	}
	g.Normals = normals
}

// PlaneGeometry returns a width x height quad in the XY plane facing +Z.
func PlaneGeometry(width, height float32) *Geometry {
	hw, hh := width/2, height/2
	g := &Geometry{
		Positions: []Vec3{
			V3(-hw, hh, 0),
			V3(hw, hh, 0),
			V3(-hw, -hh, 0),
			V3(hw, -hh, 0),
		},
		Indices: []uint32{0, 2, 1, 2, 3, 1},
	}
	g.ComputeVertexNormals()
	return g
}

// TorusGeometry returns a torus around the Y axis.
func TorusGeometry(major, minor float32, segU, segV int) *Geometry {
	if segU < 3 {
		segU = 3
	}
	if segV < 3 {
		segV = 3
	}

	positions := make([]Vec3, 0, segU*segV)
	indices := make([]uint32, 0, segU*segV*6)

	twoPi := float32(2 * math.Pi)
	for u := 0; u < segU; u++ {
		theta := twoPi * float32(u) / float32(segU)
		ct := float32(math.Cos(float64(theta)))
		st := float32(math.Sin(float64(theta)))
		for v := 0; v < segV; v++ {
			phi := twoPi * float32(v) / float32(segV)
			cp := float32(math.Cos(float64(phi)))
			sp := float32(math.Sin(float64(phi)))

			r := major + minor*cp
			positions = append(positions, V3(r*ct, minor*sp, r*st))
		}
	}

	idx := func(u, v int) uint32 {
		return uint32((u%segU)*segV + v%segV)
	}
	for u := 0; u < segU; u++ {
		for v := 0; v < segV; v++ {
			i0 := idx(u, v)
			i1 := idx(u+1, v)
			i2 := idx(u+1, v+1)
			i3 := idx(u, v+1)
			indices = append(indices, i0, i1, i2, i0, i2, i3)
		}
	}

	g := &Geometry{Positions: positions, Indices: indices}
	g.ComputeVertexNormals()
	return g
}
