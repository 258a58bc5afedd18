package stream

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Writer builds a byte buffer with an overwriting cursor. Formats with
// leading size fields and offset tables are written in two passes:
// emit the body into the growable buffer, then Seek back and overwrite
// the recorded positions before calling Bytes.
type Writer struct {
	buf []byte
	pos int
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Pos returns the current cursor position.
func (w *Writer) Pos() int { return w.pos }

// Len returns the total buffer length, independent of the cursor.
func (w *Writer) Len() int { return len(w.buf) }

// Seek moves the cursor, growing the buffer with zeros if pos is past
// the current end.
func (w *Writer) Seek(pos int) {
	for len(w.buf) < pos {
		w.buf = append(w.buf, 0)
	}
	w.pos = pos
}

func (w *Writer) put(b []byte) {
	end := w.pos + len(b)
	for len(w.buf) < end {
		w.buf = append(w.buf, 0)
	}
	copy(w.buf[w.pos:end], b)
	w.pos = end
}

func (w *Writer) U8(v uint8) { w.put([]byte{v}) }

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.put(b[:])
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.put(b[:])
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.put(b[:])
}

func (w *Writer) I16(v int16) { w.U16(uint16(v)) }
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

func (w *Writer) Write(b []byte) { w.put(b) }

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	w.put(make([]byte, n))
}

func (w *Writer) Vec2(v mgl32.Vec2) {
	w.F32(v[0])
	w.F32(v[1])
}

func (w *Writer) Vec3(v mgl32.Vec3) {
	w.F32(v[0])
	w.F32(v[1])
	w.F32(v[2])
}

// Quat writes four floats in x,y,z,w wire order.
func (w *Writer) Quat(q mgl32.Quat) {
	w.F32(q.V[0])
	w.F32(q.V[1])
	w.F32(q.V[2])
	w.F32(q.W)
}

// PaddedString writes s into a fixed-width zero-padded field,
// truncating if it is too long.
func (w *Writer) PaddedString(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.put(b)
}

// CString writes s followed by a null terminator.
func (w *Writer) CString(s string) {
	w.put([]byte(s))
	w.U8(0)
}

// PatchU32 overwrites a u32 at an absolute position without moving the
// cursor. Used to backpatch size and offset fields.
func (w *Writer) PatchU32(pos int, v uint32) {
	saved := w.pos
	w.Seek(pos)
	w.U32(v)
	w.pos = saved
}

// PatchI32 overwrites an i32 at an absolute position.
func (w *Writer) PatchI32(pos int, v int32) {
	w.PatchU32(pos, uint32(v))
}
