package ctm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaPropsSize is the size of the props block stored before each packed array.
const lzmaPropsSize = 5

// interleave splits count elements of size words into byte planes: all most
// significant bytes first, each plane ordered by component then element.
func interleave(data []uint32, count, size int) []byte {
	tmp := make([]byte, count*size*4)
	plane := count * size
	for i := 0; i < count; i++ {
		for k := 0; k < size; k++ {
			x := data[i*size+k]
			off := i + k*count
			tmp[off] = byte(x >> 24)
			tmp[off+plane] = byte(x >> 16)
			tmp[off+2*plane] = byte(x >> 8)
			tmp[off+3*plane] = byte(x)
		}
	}
	return tmp
}

func deinterleave(tmp []byte, count, size int) []uint32 {
	out := make([]uint32, count*size)
	plane := count * size
	for i := 0; i < count; i++ {
		for k := 0; k < size; k++ {
			off := i + k*count
			out[i*size+k] = uint32(tmp[off])<<24 |
				uint32(tmp[off+plane])<<16 |
				uint32(tmp[off+2*plane])<<8 |
				uint32(tmp[off+3*plane])
		}
	}
	return out
}

// readPacked reads one packed array: uint32 packed size, LZMA props, LZMA data.
func (r *reader) readPacked(count, size int) ([]uint32, error) {
	packedSize, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if packedSize > maxElements*16 {
		return nil, fmt.Errorf("%w: packed size %d", ErrCorrupt, packedSize)
	}

	// ulikunitz/xz expects the classic 13 byte header: props, dict size and
	// the uncompressed length. The file stores the first five bytes, the
	// length follows from count and size.
	hdr := make([]byte, lzma.HeaderLen)
	if _, err := io.ReadFull(r.r, hdr[:lzmaPropsSize]); err != nil {
		return nil, err
	}
	unpacked := count * size * 4
	binary.LittleEndian.PutUint64(hdr[lzmaPropsSize:], uint64(unpacked))

	packed := make([]byte, packedSize)
	if _, err := io.ReadFull(r.r, packed); err != nil {
		return nil, err
	}

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(packed)))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %v", ErrCorrupt, err)
	}
	tmp := make([]byte, unpacked)
	if _, err := io.ReadFull(lr, tmp); err != nil {
		return nil, fmt.Errorf("%w: lzma: %v", ErrCorrupt, err)
	}
	return deinterleave(tmp, count, size), nil
}

func (r *reader) readPackedFloats(count, size int) ([]float32, error) {
	u, err := r.readPacked(count, size)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(u))
	for i, v := range u {
		out[i] = math.Float32frombits(v)
	}
	return out, nil
}

// writePacked is the inverse of readPacked.
func (w *writer) writePacked(data []uint32, count, size int) {
	if w.err != nil {
		return
	}
	tmp := interleave(data, count, size)

	var buf bytes.Buffer
	lw, err := lzma.WriterConfig{Size: int64(len(tmp))}.NewWriter(&buf)
	if err != nil {
		w.err = fmt.Errorf("ctm: lzma: %w", err)
		return
	}
	if _, err := lw.Write(tmp); err != nil {
		w.err = fmt.Errorf("ctm: lzma: %w", err)
		return
	}
	if err := lw.Close(); err != nil {
		w.err = fmt.Errorf("ctm: lzma: %w", err)
		return
	}

	out := buf.Bytes()
	if len(out) < lzma.HeaderLen {
		w.err = fmt.Errorf("ctm: lzma: short stream")
		return
	}
	w.uint32(uint32(len(out) - lzma.HeaderLen))
	w.write(out[:lzmaPropsSize])
	w.write(out[lzma.HeaderLen:])
}

func (w *writer) writePackedFloats(data []float32, count, size int) {
	u := make([]uint32, len(data))
	for i, v := range data {
		u[i] = math.Float32bits(v)
	}
	w.writePacked(u, count, size)
}
