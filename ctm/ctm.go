// Package ctm reads and writes OpenCTM compressed triangle meshes.
//
// Version 5 files with the RAW and MG1 methods are supported. MG1 stores each
// array LZMA packed with its bytes split into planes, which compresses float
// data far better than the plain layout.
package ctm

import (
	"errors"
	"fmt"
)

// Magic is "OCTM" in little-endian.
const Magic = 0x4d54434f

const formatVersion = 5

// Method identifies the body encoding.
type Method uint32

const (
	MethodRAW Method = 0x00574152 // "RAW\0"
	MethodMG1 Method = 0x0031474d // "MG1\0"
	MethodMG2 Method = 0x0032474d // "MG2\0"
)

func (m Method) String() string {
	switch m {
	case MethodRAW:
		return "RAW"
	case MethodMG1:
		return "MG1"
	case MethodMG2:
		return "MG2"
	}
	return fmt.Sprintf("Method(%#08x)", uint32(m))
}

// FlagNormals is set when the file carries per-vertex normals.
const FlagNormals = 1 << 0

// maxElements caps header counts so a corrupt header cannot force huge allocations.
const maxElements = 1 << 26

var (
	ErrBadMagic           = errors.New("ctm: bad magic")
	ErrUnsupportedVersion = errors.New("ctm: unsupported version")
	ErrUnsupportedMethod  = errors.New("ctm: unsupported method")
	ErrCorrupt            = errors.New("ctm: corrupt data")
	ErrInvalidMesh        = errors.New("ctm: invalid mesh")
)

// UVMap is a named set of texture coordinates, two per vertex.
type UVMap struct {
	Name     string
	FileName string
	Coords   []float32
}

// AttribMap is a named set of generic attributes, four per vertex.
type AttribMap struct {
	Name   string
	Values []float32
}

// Mesh is a decoded OpenCTM mesh. Arrays are flat: three floats per vertex
// and normal, three indices per triangle.
type Mesh struct {
	Vertices   []float32
	Normals    []float32
	Indices    []uint32
	UVMaps     []UVMap
	AttribMaps []AttribMap
	Comment    string
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Validate checks array lengths and index ranges.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil", ErrInvalidMesh)
	}
	vc := m.VertexCount()
	switch {
	case vc == 0 || len(m.Vertices)%3 != 0:
		return fmt.Errorf("%w: %d vertex floats", ErrInvalidMesh, len(m.Vertices))
	case m.TriangleCount() == 0 || len(m.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices", ErrInvalidMesh, len(m.Indices))
	case m.Normals != nil && len(m.Normals) != len(m.Vertices):
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrInvalidMesh, len(m.Normals), vc)
	}
	for i, idx := range m.Indices {
		if int(idx) >= vc {
			return fmt.Errorf("%w: indices[%d]=%d, %d vertices", ErrInvalidMesh, i, idx, vc)
		}
	}
	for _, uv := range m.UVMaps {
		if len(uv.Coords) != vc*2 {
			return fmt.Errorf("%w: uv map %q has %d coords", ErrInvalidMesh, uv.Name, len(uv.Coords))
		}
	}
	for _, a := range m.AttribMaps {
		if len(a.Values) != vc*4 {
			return fmt.Errorf("%w: attrib map %q has %d values", ErrInvalidMesh, a.Name, len(a.Values))
		}
	}
	return nil
}

// Header is the fixed part of an OpenCTM file.
type Header struct {
	Method         Method
	VertexCount    uint32
	TriangleCount  uint32
	UVMapCount     uint32
	AttribMapCount uint32
	Flags          uint32
	Comment        string
}

func (h *Header) HasNormals() bool { return h.Flags&FlagNormals != 0 }

// Validate checks header invariants.
func (h *Header) Validate() error {
	switch h.Method {
	case MethodRAW, MethodMG1:
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedMethod, h.Method)
	}
	if h.VertexCount == 0 || h.TriangleCount == 0 {
		return fmt.Errorf("%w: empty mesh (%d vertices, %d triangles)", ErrCorrupt, h.VertexCount, h.TriangleCount)
	}
	if h.VertexCount > maxElements || h.TriangleCount > maxElements ||
		h.UVMapCount > 8 || h.AttribMapCount > 8 {
		return fmt.Errorf("%w: counts out of range", ErrCorrupt)
	}
	return nil
}
