package ctm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ReadHeader reads and validates the file header.
func ReadHeader(r io.Reader) (*Header, error) {
	return (&reader{r: r}).header()
}

func (r *reader) header() (*Header, error) {
	m, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("ctm: read header: %w", err)
	}
	if m != Magic {
		return nil, ErrBadMagic
	}
	v, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("ctm: read header: %w", err)
	}
	if v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	var fields [6]uint32
	for i := range fields {
		if fields[i], err = r.uint32(); err != nil {
			return nil, fmt.Errorf("ctm: read header: %w", err)
		}
	}
	h := &Header{
		Method:         Method(fields[0]),
		VertexCount:    fields[1],
		TriangleCount:  fields[2],
		UVMapCount:     fields[3],
		AttribMapCount: fields[4],
		Flags:          fields[5],
	}
	if h.Comment, err = r.string(); err != nil {
		return nil, fmt.Errorf("ctm: read comment: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Decode reads a complete mesh.
func Decode(r io.Reader) (*Mesh, error) {
	rd := &reader{r: bufio.NewReader(r)}
	h, err := rd.header()
	if err != nil {
		return nil, err
	}

	var m *Mesh
	switch h.Method {
	case MethodRAW:
		m, err = rd.rawBody(h)
	case MethodMG1:
		m, err = rd.mg1Body(h)
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated %v body", ErrCorrupt, h.Method)
		}
		return nil, err
	}
	m.Comment = h.Comment
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return m, nil
}

func (r *reader) rawBody(h *Header) (*Mesh, error) {
	vc, tc := int(h.VertexCount), int(h.TriangleCount)
	m := &Mesh{}
	var err error

	if err = r.expect("INDX"); err != nil {
		return nil, err
	}
	if m.Indices, err = r.uint32s(tc * 3); err != nil {
		return nil, err
	}
	if err = r.expect("VERT"); err != nil {
		return nil, err
	}
	if m.Vertices, err = r.float32s(vc * 3); err != nil {
		return nil, err
	}
	if h.HasNormals() {
		if err = r.expect("NORM"); err != nil {
			return nil, err
		}
		if m.Normals, err = r.float32s(vc * 3); err != nil {
			return nil, err
		}
	}
	return m, r.maps(h, m, func(count, size int) ([]float32, error) {
		return r.float32s(count * size)
	})
}

func (r *reader) mg1Body(h *Header) (*Mesh, error) {
	vc, tc := int(h.VertexCount), int(h.TriangleCount)
	m := &Mesh{}
	var err error

	if err = r.expect("INDX"); err != nil {
		return nil, err
	}
	if m.Indices, err = r.readPacked(tc, 3); err != nil {
		return nil, err
	}
	restoreIndices(m.Indices)

	if err = r.expect("VERT"); err != nil {
		return nil, err
	}
	if m.Vertices, err = r.readPackedFloats(vc*3, 1); err != nil {
		return nil, err
	}
	if h.HasNormals() {
		if err = r.expect("NORM"); err != nil {
			return nil, err
		}
		if m.Normals, err = r.readPackedFloats(vc, 3); err != nil {
			return nil, err
		}
	}
	return m, r.maps(h, m, func(count, size int) ([]float32, error) {
		return r.readPackedFloats(count, size)
	})
}

// maps reads the UV and attribute maps that follow the geometry.
func (r *reader) maps(h *Header, m *Mesh, values func(count, size int) ([]float32, error)) error {
	vc := int(h.VertexCount)
	for i := 0; i < int(h.UVMapCount); i++ {
		if err := r.expect("TEXC"); err != nil {
			return err
		}
		var uv UVMap
		var err error
		if uv.Name, err = r.string(); err != nil {
			return err
		}
		if uv.FileName, err = r.string(); err != nil {
			return err
		}
		if uv.Coords, err = values(vc, 2); err != nil {
			return err
		}
		m.UVMaps = append(m.UVMaps, uv)
	}
	for i := 0; i < int(h.AttribMapCount); i++ {
		if err := r.expect("ATTR"); err != nil {
			return err
		}
		var a AttribMap
		var err error
		if a.Name, err = r.string(); err != nil {
			return err
		}
		if a.Values, err = values(vc, 4); err != nil {
			return err
		}
		m.AttribMaps = append(m.AttribMaps, a)
	}
	return nil
}
