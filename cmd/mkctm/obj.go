package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"osmview/ctm"
)

// parseOBJ reads vertex positions and faces from a Wavefront OBJ stream.
// Polygons are fan triangulated; texture and normal references are ignored.
func parseOBJ(r io.Reader) (*ctm.Mesh, error) {
	m := &ctm.Mesh{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: vertex needs 3 coordinates", line)
			}
			for _, s := range fields[1:4] {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				m.Vertices = append(m.Vertices, float32(f))
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: face needs 3 vertices", line)
			}
			poly := make([]uint32, 0, len(fields)-1)
			for _, s := range fields[1:] {
				idx, err := objIndex(s, m.VertexCount())
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				m.Indices = append(m.Indices, poly[0], poly[i], poly[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// objIndex resolves a 1-based or negative (relative) OBJ vertex reference.
func objIndex(ref string, count int) (uint32, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("vertex reference %q out of range", ref)
	}
	return uint32(n - 1), nil
}
