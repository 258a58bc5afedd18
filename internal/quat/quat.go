// Package quat implements the 48-bit quantized quaternion codec used by
// compressed animation data and the v5 rotation palette.
//
// The largest-magnitude component is dropped and reconstructed on
// decode as the positive square root, the other three are quantized to
// 15 bits each over [-1/sqrt2, 1/sqrt2], and a 2-bit tag records which
// component was dropped. The component-to-slot permutation matches the
// game's encoder exactly; do not "clean it up".
package quat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	oneOverSqrt2   = 0.70710678118
	sqrt2Over32767 = 0.00004315969
)

// PackedSize is the wire size of one packed quaternion.
const PackedSize = 6

// Unpack decodes 6 bytes into a unit quaternion. Input shorter than 6
// bytes yields the identity.
func Unpack(b []byte) mgl32.Quat {
	if len(b) < PackedSize {
		return mgl32.QuatIdent()
	}
	first := uint64(b[0]) | uint64(b[1])<<8
	second := uint64(b[2]) | uint64(b[3])<<8
	third := uint64(b[4]) | uint64(b[5])<<8
	bits := first | second<<16 | third<<32

	maxIndex := (bits >> 45) & 3
	a := float64((bits>>30)&32767)*sqrt2Over32767 - oneOverSqrt2
	bb := float64((bits>>15)&32767)*sqrt2Over32767 - oneOverSqrt2
	c := float64(bits&32767)*sqrt2Over32767 - oneOverSqrt2
	d := math.Sqrt(math.Max(0, 1-(a*a+bb*bb+c*c)))

	var x, y, z, w float64
	switch maxIndex {
	case 0:
		x, y, z, w = d, a, bb, c
	case 1:
		x, y, z, w = a, d, bb, c
	case 2:
		x, y, z, w = a, bb, d, c
	default:
		x, y, z, w = a, bb, c, d
	}
	return mgl32.Quat{W: float32(w), V: mgl32.Vec3{float32(x), float32(y), float32(z)}}
}

// Pack encodes a unit quaternion into 6 bytes. The quaternion is
// negated when its largest component is negative, so the decoder's
// positive-root reconstruction recovers the same rotation (q and -q
// represent the same orientation).
func Pack(q mgl32.Quat) [PackedSize]byte {
	comps := [4]float64{
		float64(q.V[0]),
		float64(q.V[1]),
		float64(q.V[2]),
		float64(q.W),
	}

	maxIndex := 0
	for i := 1; i < 4; i++ {
		if math.Abs(comps[i]) > math.Abs(comps[maxIndex]) {
			maxIndex = i
		}
	}
	if comps[maxIndex] < 0 {
		for i := range comps {
			comps[i] = -comps[i]
		}
	}

	var kept [3]float64
	n := 0
	for i, v := range comps {
		if i == maxIndex {
			continue
		}
		kept[n] = v
		n++
	}

	bits := uint64(maxIndex) << 45
	bits |= quantize(kept[0]) << 30
	bits |= quantize(kept[1]) << 15
	bits |= quantize(kept[2])

	return [PackedSize]byte{
		byte(bits), byte(bits >> 8),
		byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40),
	}
}

func quantize(v float64) uint64 {
	q := math.Round((v + oneOverSqrt2) / sqrt2Over32767)
	if q < 0 {
		q = 0
	}
	if q > 32767 {
		q = 32767
	}
	return uint64(q)
}
