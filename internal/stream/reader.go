// Package stream provides little-endian cursor primitives over in-memory
// byte buffers. Every game format in this repo is read and written
// through these two types.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
)

// Reader walks a byte slice with an advancing cursor. The first read
// past the end records format.ErrUnexpectedEOF and all later reads
// return zero values, so callers can check Err once per section instead
// of after every field.
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.data) }

// Seek moves the cursor to an absolute position.
func (r *Reader) Seek(pos int) {
	if r.err != nil {
		return
	}
	if pos < 0 || pos > len(r.data) {
		r.err = format.ErrUnexpectedEOF
		return
	}
	r.pos = pos
}

// Skip advances the cursor by delta bytes (negative moves backward).
func (r *Reader) Skip(delta int) {
	r.Seek(r.pos + delta)
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = format.ErrUnexpectedEOF
		r.pos = len(r.data)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) I16() int16 { return int16(r.U16()) }
func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{r.F32(), r.F32()}
}

func (r *Reader) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.F32(), r.F32(), r.F32()}
}

// Quat reads four floats in x,y,z,w wire order.
func (r *Reader) Quat() mgl32.Quat {
	x, y, z, w := r.F32(), r.F32(), r.F32(), r.F32()
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// PaddedString reads a fixed-width buffer and trims at the first null.
func (r *Reader) PaddedString(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// CString reads bytes until a null terminator or end of buffer.
func (r *Reader) CString() string {
	if r.err != nil {
		return ""
	}
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	s := string(r.data[start:r.pos])
	if r.pos < len(r.data) {
		r.pos++ // consume terminator
	}
	return s
}
