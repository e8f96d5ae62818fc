package resource

import (
	"bytes"
	"encoding/binary"
	"math"
)

// writer assembles a container buffer. Output is always little-endian, the
// only byte order the engine's exporter emits.
type writer struct {
	buf     bytes.Buffer
	scratch [8]byte
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.buf.Write(w.scratch[:4])
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], v)
	w.buf.Write(w.scratch[:8])
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) f64(v float64) {
	w.u64(math.Float64bits(v))
}

// unicode writes a length-prefixed, NUL-terminated string.
func (w *writer) unicode(s string) {
	w.u32(uint32(len(s) + 1))
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

func (w *writer) len() int {
	return w.buf.Len()
}
