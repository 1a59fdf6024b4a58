package ctm

import (
	"bufio"
	"fmt"
	"io"
)

// Encode writes m with the given method. MG1 output reorders triangles; the
// set of triangles and their winding are preserved.
func Encode(w io.Writer, m *Mesh, method Method) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if method != MethodRAW && method != MethodMG1 {
		return fmt.Errorf("%w: %v", ErrUnsupportedMethod, method)
	}

	bw := bufio.NewWriter(w)
	wr := &writer{w: bw}

	var flags uint32
	if m.Normals != nil {
		flags |= FlagNormals
	}
	wr.uint32(Magic)
	wr.uint32(formatVersion)
	wr.uint32(uint32(method))
	wr.uint32(uint32(m.VertexCount()))
	wr.uint32(uint32(m.TriangleCount()))
	wr.uint32(uint32(len(m.UVMaps)))
	wr.uint32(uint32(len(m.AttribMaps)))
	wr.uint32(flags)
	wr.string(m.Comment)

	switch method {
	case MethodRAW:
		wr.rawBody(m)
	case MethodMG1:
		wr.mg1Body(m)
	}
	if wr.err != nil {
		return fmt.Errorf("ctm: encode: %w", wr.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ctm: encode: %w", err)
	}
	return nil
}

func (w *writer) rawBody(m *Mesh) {
	w.tag("INDX")
	w.uint32s(m.Indices)
	w.tag("VERT")
	w.float32s(m.Vertices)
	if m.Normals != nil {
		w.tag("NORM")
		w.float32s(m.Normals)
	}
	for _, uv := range m.UVMaps {
		w.tag("TEXC")
		w.string(uv.Name)
		w.string(uv.FileName)
		w.float32s(uv.Coords)
	}
	for _, a := range m.AttribMaps {
		w.tag("ATTR")
		w.string(a.Name)
		w.float32s(a.Values)
	}
}

func (w *writer) mg1Body(m *Mesh) {
	vc, tc := m.VertexCount(), m.TriangleCount()

	idx := make([]uint32, len(m.Indices))
	copy(idx, m.Indices)
	rearrangeTriangles(idx)
	makeIndexDeltas(idx)

	w.tag("INDX")
	w.writePacked(idx, tc, 3)
	w.tag("VERT")
	w.writePackedFloats(m.Vertices, vc*3, 1)
	if m.Normals != nil {
		w.tag("NORM")
		w.writePackedFloats(m.Normals, vc, 3)
	}
	for _, uv := range m.UVMaps {
		w.tag("TEXC")
		w.string(uv.Name)
		w.string(uv.FileName)
		w.writePackedFloats(uv.Coords, vc, 2)
	}
	for _, a := range m.AttribMaps {
		w.tag("ATTR")
		w.string(a.Name)
		w.writePackedFloats(a.Values, vc, 4)
	}
}
