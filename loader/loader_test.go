package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"osmview/ctm"
)

func triangleCTM(t *testing.T, method ctm.Method) []byte {
	t.Helper()
	m := &ctm.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		Indices:  []uint32{0, 1, 2, 2, 1, 3},
		Comment:  "a",
	}
	var buf bytes.Buffer
	if err := ctm.Encode(&buf, m, method); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf.Bytes()
}

func writeAsset(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ctm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func recv(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("result channel closed without a result")
		}
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load result")
	}
	return Result{}
}

func TestLoadFileWorker(t *testing.T) {
	path := writeAsset(t, triangleCTM(t, ctm.MethodMG1))
	ch := New().Load(context.Background(), path)
	res := recv(t, ch)
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Geometry == nil {
		t.Fatal("Geometry = nil with worker decode")
	}
	if got := len(res.Geometry.Positions); got != 4 {
		t.Fatalf("len(Positions) = %d, want 4", got)
	}
	if got := res.Geometry.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", got)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel delivered a second result")
	}
}

func TestLoadFileMainThreadDecode(t *testing.T) {
	path := writeAsset(t, triangleCTM(t, ctm.MethodRAW))
	l := New(WithWorker(false))
	if l.UseWorker() {
		t.Fatal("UseWorker() = true, want false")
	}
	res := recv(t, l.Load(context.Background(), path))
	if res.Err != nil || res.Geometry != nil {
		t.Fatalf("before Resolve: Geometry = %v, Err = %v; want pending", res.Geometry, res.Err)
	}
	g, err := res.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := g.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", got)
	}
	again, err := res.Resolve()
	if err != nil || again != g {
		t.Fatalf("second Resolve() = %p, %v; want %p, nil", again, err, g)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ctm")
	res := recv(t, New().Load(context.Background(), path))
	var lerr *Error
	if !errors.As(res.Err, &lerr) {
		t.Fatalf("Err = %v, want *Error", res.Err)
	}
	if lerr.Op != "fetch" || lerr.Path != path {
		t.Fatalf("Error = {%q %q}, want {fetch %q}", lerr.Op, lerr.Path, path)
	}
	if !errors.Is(res.Err, os.ErrNotExist) {
		t.Fatalf("Err = %v, want os.ErrNotExist", res.Err)
	}
	if _, err := res.Resolve(); err == nil {
		t.Fatal("Resolve() error = nil after failed fetch")
	}
}

func TestLoadHTTP(t *testing.T) {
	data := triangleCTM(t, ctm.MethodMG1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test.ctm" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()))
	res := recv(t, l.Load(context.Background(), srv.URL+"/test.ctm"))
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Geometry.TriangleCount() != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", res.Geometry.TriangleCount())
	}

	res = recv(t, l.Load(context.Background(), srv.URL+"/missing.ctm"))
	if !errors.Is(res.Err, ErrStatus) {
		t.Fatalf("Err = %v, want ErrStatus", res.Err)
	}
	if res.Geometry != nil {
		t.Fatal("Geometry != nil on 404")
	}
}

func TestLoadDecodeFailure(t *testing.T) {
	path := writeAsset(t, []byte("not a mesh at all"))
	for _, worker := range []bool{true, false} {
		res := recv(t, New(WithWorker(worker)).Load(context.Background(), path))
		_, err := res.Resolve()
		var lerr *Error
		if !errors.As(err, &lerr) || lerr.Op != "decode" {
			t.Fatalf("worker=%v: err = %v, want decode *Error", worker, err)
		}
		if !errors.Is(err, ctm.ErrBadMagic) {
			t.Fatalf("worker=%v: err = %v, want ErrBadMagic", worker, err)
		}
	}
}

func TestLoadCancelled(t *testing.T) {
	path := writeAsset(t, triangleCTM(t, ctm.MethodRAW))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := recv(t, New().Load(ctx, path))
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", res.Err)
	}
}
