package ctm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxString bounds comment and map name lengths.
const maxString = 1 << 16

type reader struct {
	r   io.Reader
	buf [4]byte
}

func (r *reader) uint32() (uint32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:]), nil
}

func (r *reader) string() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	if n > maxString {
		return "", fmt.Errorf("%w: string length %d", ErrCorrupt, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// expect reads a four byte tag and fails unless it equals tag.
func (r *reader) expect(tag string) error {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		return err
	}
	if string(r.buf[:]) != tag {
		return fmt.Errorf("%w: got tag %q, want %q", ErrCorrupt, r.buf[:], tag)
	}
	return nil
}

func (r *reader) uint32s(n int) ([]uint32, error) {
	raw := make([]byte, n*4)
	if _, err := io.ReadFull(r.r, raw); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

func (r *reader) float32s(n int) ([]float32, error) {
	u, err := r.uint32s(n)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i, v := range u {
		out[i] = math.Float32frombits(v)
	}
	return out, nil
}

type writer struct {
	w   io.Writer
	err error
}

func (w *writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.write(b[:])
}

func (w *writer) string(s string) {
	w.uint32(uint32(len(s)))
	w.write([]byte(s))
}

func (w *writer) tag(t string) { w.write([]byte(t)) }

func (w *writer) uint32s(v []uint32) {
	b := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], x)
	}
	w.write(b)
}

func (w *writer) float32s(v []float32) {
	b := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	w.write(b)
}
