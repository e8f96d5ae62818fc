package resource

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader decodes fixed-layout fields from a container buffer. Errors are
// sticky: after the first failed read every later call is a no-op, so parse
// code can decode a whole section and check the error once.
type reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

func newReader(data []byte) *reader {
	return &reader{data: data, order: binary.LittleEndian}
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: read of %d bytes at offset %d overruns %d-byte buffer",
			ErrCorruptStream, n, r.pos, len(r.data))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) skip(n int) {
	r.bytes(n)
}

func (r *reader) seek(offset int) {
	if r.err != nil {
		return
	}
	if offset < 0 || offset > len(r.data) {
		r.err = fmt.Errorf("%w: seek to offset %d outside %d-byte buffer", ErrCorruptStream, offset, len(r.data))
		return
	}
	r.pos = offset
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

func (r *reader) u64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return r.order.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *reader) f64() float64 {
	return math.Float64frombits(r.u64())
}

// unicode reads a length-prefixed, NUL-terminated string.
func (r *reader) unicode() string {
	n := r.u32()
	b := r.bytes(int(n))
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
