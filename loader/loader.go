// Package loader fetches and decodes mesh assets off the caller's goroutine.
//
// A load produces exactly one Result on its channel. The result carries either
// geometry or an *Error; callers are expected to handle both.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"osmview/ctm"
	"osmview/softgl"
)

// ErrStatus is wrapped by fetch failures for non-200 HTTP responses.
var ErrStatus = errors.New("loader: unexpected HTTP status")

// maxAssetBytes bounds how much of a response or file is read.
const maxAssetBytes = 256 << 20

// Error is a typed load failure.
type Error struct {
	Op   string // "fetch" or "decode"
	Path string
	Err  error
}

func (e *Error) Error() string { return "loader: " + e.Op + " " + e.Path + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of one Load.
type Result struct {
	Path     string
	Geometry *softgl.Geometry
	Err      error
	Elapsed  time.Duration // request to decoded geometry

	raw     []byte
	started time.Time
	loader  *Loader
}

// Resolve returns the geometry, decoding it on the calling goroutine when the
// loader was configured without a worker. It is safe to call more than once.
func (r *Result) Resolve() (*softgl.Geometry, error) {
	if r.Err != nil || r.Geometry != nil || r.raw == nil {
		return r.Geometry, r.Err
	}
	g, err := r.loader.decode(r.Path, r.raw)
	r.raw = nil
	r.Geometry, r.Err = g, err
	r.Elapsed = r.loader.now().Sub(r.started)
	if err == nil {
		logParsed(r)
	}
	return g, err
}

// Loader loads OpenCTM assets from files or http(s) URLs.
type Loader struct {
	useWorker bool
	client    *http.Client
	now       func() time.Time
}

type Option func(*Loader)

// WithWorker selects whether decoding runs on the load goroutine (true) or is
// left to Result.Resolve on the caller's goroutine (false).
func WithWorker(on bool) Option { return func(l *Loader) { l.useWorker = on } }

func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// New returns a loader that decodes on its worker goroutine by default.
func New(opts ...Option) *Loader {
	l := &Loader{
		useWorker: true,
		client:    http.DefaultClient,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) UseWorker() bool { return l.useWorker }

// Load starts loading path and returns immediately. The channel receives one
// Result and is then closed. Cancelling ctx abandons the fetch.
func (l *Loader) Load(ctx context.Context, path string) <-chan Result {
	ch := make(chan Result, 1)
	started := l.now()
	Logger().Debug("loader: load started", "path", path, "worker", l.useWorker)

	go func() {
		defer close(ch)
		res := Result{Path: path, started: started, loader: l}

		data, err := l.fetch(ctx, path)
		if err != nil {
			res.Err = &Error{Op: "fetch", Path: path, Err: err}
			res.Elapsed = l.now().Sub(started)
			Logger().Warn("loader: fetch failed", "path", path, "err", err)
			ch <- res
			return
		}
		if !l.useWorker {
			res.raw = data
			ch <- res
			return
		}
		res.Geometry, res.Err = l.decode(path, data)
		res.Elapsed = l.now().Sub(started)
		if res.Err == nil {
			logParsed(&res)
		}
		ch <- res
	}()
	return ch
}

func isURL(path string) bool {
	u, err := url.Parse(path)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !isURL(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxAssetBytes))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
}

func (l *Loader) decode(path string, data []byte) (*softgl.Geometry, error) {
	m, err := ctm.Decode(bytes.NewReader(data))
	if err != nil {
		Logger().Warn("loader: decode failed", "path", path, "err", err)
		return nil, &Error{Op: "decode", Path: path, Err: err}
	}
	return Geometry(m), nil
}

// Geometry converts a decoded mesh to renderable geometry.
func Geometry(m *ctm.Mesh) *softgl.Geometry {
	n := m.VertexCount()
	g := &softgl.Geometry{
		Positions: make([]softgl.Vec3, n),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	for i := 0; i < n; i++ {
		g.Positions[i] = softgl.V3(m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
	}
	if m.Normals != nil {
		g.Normals = make([]softgl.Vec3, n)
		for i := 0; i < n; i++ {
			g.Normals[i] = softgl.V3(m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
		}
	}
	return g
}

func logParsed(r *Result) {
	Logger().Info("loader: total parse time",
		"path", r.Path,
		"ms", r.Elapsed.Milliseconds(),
		"vertices", len(r.Geometry.Positions),
		"triangles", r.Geometry.TriangleCount(),
	)
}
