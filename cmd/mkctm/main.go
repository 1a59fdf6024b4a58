package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"osmview/ctm"
	"osmview/loader"
	"osmview/softgl"
)

func main() {
	var (
		outPath  = flag.String("out", "", "Output .ctm file.")
		inPath   = flag.String("obj", "", "Wavefront OBJ to convert (instead of -shape).")
		shape    = flag.String("shape", "torus", "torus|plane (generated mesh).")
		method   = flag.String("method", "mg1", "raw|mg1.")
		normals  = flag.Bool("normals", false, "Store per-vertex normals.")
		comment  = flag.String("comment", "a", "File comment.")
		infoPath = flag.String("info", "", "Print the header and bounds of a .ctm file and exit.")
	)
	flag.Parse()

	if *infoPath != "" {
		if err := printInfo(os.Stdout, *infoPath); err != nil {
			fatalf("info: %v", err)
		}
		return
	}
	if *outPath == "" {
		fatalf("usage: mkctm -out test.ctm [-shape torus|plane | -obj in.obj] [-method raw|mg1] [-normals]\n       mkctm -info test.ctm")
	}

	m, err := source(*inPath, *shape)
	if err != nil {
		fatalf("mesh: %v", err)
	}
	if !*normals {
		m.Normals = nil
	}
	m.Comment = *comment

	meth, err := parseMethod(*method)
	if err != nil {
		fatalf("%v", err)
	}
	if err := writeCTM(*outPath, m, meth); err != nil {
		fatalf("write: %v", err)
	}
	fmt.Printf("%s: %d vertices, %d triangles, %s\n", *outPath, m.VertexCount(), m.TriangleCount(), meth)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func parseMethod(s string) (ctm.Method, error) {
	switch strings.ToLower(s) {
	case "raw":
		return ctm.MethodRAW, nil
	case "mg1":
		return ctm.MethodMG1, nil
	default:
		return 0, fmt.Errorf("unknown method: %s", s)
	}
}

func source(objPath, shape string) (*ctm.Mesh, error) {
	if objPath != "" {
		f, err := os.Open(objPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseOBJ(f)
	}

	var g *softgl.Geometry
	switch strings.ToLower(shape) {
	case "torus":
		g = softgl.TorusGeometry(120, 45, 48, 24)
	case "plane":
		g = softgl.PlaneGeometry(400, 400)
	default:
		return nil, fmt.Errorf("unknown shape: %s", shape)
	}
	if g.Normals == nil {
		g.ComputeVertexNormals()
	}
	return fromGeometry(g), nil
}

func fromGeometry(g *softgl.Geometry) *ctm.Mesh {
	m := &ctm.Mesh{
		Vertices: make([]float32, 0, len(g.Positions)*3),
		Indices:  append([]uint32(nil), g.Indices...),
	}
	for _, p := range g.Positions {
		m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	}
	if len(g.Normals) == len(g.Positions) {
		m.Normals = make([]float32, 0, len(g.Normals)*3)
		for _, n := range g.Normals {
			m.Normals = append(m.Normals, n.X, n.Y, n.Z)
		}
	}
	return m
}

func writeCTM(path string, m *ctm.Mesh, method ctm.Method) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(out, 64*1024)
	if err := ctm.Encode(bw, m, method); err != nil {
		out.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func printInfo(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := ctm.Decode(bufio.NewReader(f))
	if err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	h, err := ctm.ReadHeader(f)
	if err != nil {
		return err
	}

	lo, hi := loader.Geometry(m).BoundingBox()
	fmt.Fprintf(w, "Method         : %s\n", h.Method)
	fmt.Fprintf(w, "Vertex count   : %d\n", h.VertexCount)
	fmt.Fprintf(w, "Triangle count : %d\n", h.TriangleCount)
	fmt.Fprintf(w, "Normals        : %v\n", h.HasNormals())
	fmt.Fprintf(w, "UV maps        : %d\n", h.UVMapCount)
	fmt.Fprintf(w, "Attrib maps    : %d\n", h.AttribMapCount)
	fmt.Fprintf(w, "Comment        : %q\n", h.Comment)
	fmt.Fprintf(w, "Bounds         : %v .. %v\n", lo, hi)
	return nil
}
