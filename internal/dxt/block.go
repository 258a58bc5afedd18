// Package dxt implements DXT1 and DXT5 block compression: fixed-ratio
// texture codecs encoding each 4x4 texel tile as endpoint colors plus
// per-texel palette indices.
//
// Decoded and encoded images are in top-down row order (row 0 is the
// top of the image, matching DDS storage). Callers needing a bottom-up
// buffer must flip themselves; nothing here flips silently.
package dxt

// Block sizes in bytes per 4x4 tile.
const (
	BlockSizeDXT1 = 8
	BlockSizeDXT5 = 16
)

// expand565 widens a packed 5/6/5 color to 8 bits per channel,
// replicating the high bits into the low bits for smoother gradients
// than zero fill.
func expand565(c uint16) (r, g, b uint8) {
	r8 := uint8(c>>11&0x1F) << 3
	g8 := uint8(c>>5&0x3F) << 2
	b8 := uint8(c&0x1F) << 3
	return r8 | r8>>5, g8 | g8>>6, b8 | b8>>5
}

// pack565 quantizes an 8-bit RGB color to packed 5/6/5.
func pack565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// decodeBlockDXT1 decodes an 8-byte DXT1 block into 16 RGBA texels in
// raster order. When c0 <= c1 (as u16 numeric compare of the packed
// values) the block is in 1-bit-alpha mode and index 3 decodes to
// transparent black.
func decodeBlockDXT1(block []byte, pix *[64]byte) {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	bits := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)

	var palette [4][4]uint8
	palette[0] = [4]uint8{r0, g0, b0, 255}
	palette[1] = [4]uint8{r1, g1, b1, 255}
	if c0 > c1 {
		palette[2] = [4]uint8{lerp23(r0, r1), lerp23(g0, g1), lerp23(b0, b1), 255}
		palette[3] = [4]uint8{lerp23(r1, r0), lerp23(g1, g0), lerp23(b1, b0), 255}
	} else {
		palette[2] = [4]uint8{avg(r0, r1), avg(g0, g1), avg(b0, b1), 255}
		palette[3] = [4]uint8{0, 0, 0, 0}
	}

	for i := 0; i < 16; i++ {
		c := palette[bits>>(uint(i)*2)&3]
		copy(pix[i*4:], c[:])
	}
}

// decodeBlockDXT5 decodes a 16-byte DXT5 block. The color half is
// always in 4-color mode regardless of endpoint ordering; only the
// alpha half has the two ramp variants.
func decodeBlockDXT5(block []byte, pix *[64]byte) {
	a0, a1 := block[0], block[1]
	alphaBits := uint64(block[2]) | uint64(block[3])<<8 | uint64(block[4])<<16 |
		uint64(block[5])<<24 | uint64(block[6])<<32 | uint64(block[7])<<40

	alphas := alphaRamp(a0, a1)

	c0 := uint16(block[8]) | uint16(block[9])<<8
	c1 := uint16(block[10]) | uint16(block[11])<<8
	colorBits := uint32(block[12]) | uint32(block[13])<<8 | uint32(block[14])<<16 | uint32(block[15])<<24

	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)

	var palette [4][3]uint8
	palette[0] = [3]uint8{r0, g0, b0}
	palette[1] = [3]uint8{r1, g1, b1}
	palette[2] = [3]uint8{lerp23(r0, r1), lerp23(g0, g1), lerp23(b0, b1)}
	palette[3] = [3]uint8{lerp23(r1, r0), lerp23(g1, g0), lerp23(b1, b0)}

	for i := 0; i < 16; i++ {
		c := palette[colorBits>>(uint(i)*2)&3]
		pix[i*4] = c[0]
		pix[i*4+1] = c[1]
		pix[i*4+2] = c[2]
		pix[i*4+3] = alphas[alphaBits>>(uint(i)*3)&7]
	}
}

// alphaRamp builds the 8-entry alpha palette. a0 > a1 selects the
// 8-value ramp (6 interpolated steps); otherwise the 6-value ramp plus
// literal 0 and 255.
func alphaRamp(a0, a1 uint8) [8]uint8 {
	var ramp [8]uint8
	ramp[0], ramp[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			ramp[i+1] = uint8((int(7-i)*int(a0) + i*int(a1)) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			ramp[i+1] = uint8((int(5-i)*int(a0) + i*int(a1)) / 5)
		}
		ramp[6] = 0
		ramp[7] = 255
	}
	return ramp
}

func lerp23(a, b uint8) uint8 {
	return uint8((2*int(a) + int(b)) / 3)
}

func avg(a, b uint8) uint8 {
	return uint8((int(a) + int(b)) / 2)
}

// encodeColorBlock compresses the RGB half of a block: endpoints are
// picked by weighted-luminance extremes (2R+4G+B), swapped if needed so
// the packed c0 >= c1, then each texel maps to the nearest of the four
// interpolated palette entries by squared distance. This targets the
// 4-color branch only, which is what DXT5 color blocks always use.
func encodeColorBlock(pix *[64]byte, out []byte) {
	minLum, maxLum := 1<<30, -1
	var lo, hi [3]uint8
	for i := 0; i < 16; i++ {
		r, g, b := pix[i*4], pix[i*4+1], pix[i*4+2]
		lum := 2*int(r) + 4*int(g) + int(b)
		if lum < minLum {
			minLum = lum
			lo = [3]uint8{r, g, b}
		}
		if lum > maxLum {
			maxLum = lum
			hi = [3]uint8{r, g, b}
		}
	}

	c0 := pack565(lo[0], lo[1], lo[2])
	c1 := pack565(hi[0], hi[1], hi[2])
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	out[0] = byte(c0)
	out[1] = byte(c0 >> 8)
	out[2] = byte(c1)
	out[3] = byte(c1 >> 8)

	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	palette := [4][3]uint8{
		{r0, g0, b0},
		{r1, g1, b1},
		{lerp23(r0, r1), lerp23(g0, g1), lerp23(b0, b1)},
		{lerp23(r1, r0), lerp23(g1, g0), lerp23(b1, b0)},
	}

	var bits uint32
	for i := 0; i < 16; i++ {
		best, bestDist := 0, 1<<30
		for j, c := range palette {
			dr := int(pix[i*4]) - int(c[0])
			dg := int(pix[i*4+1]) - int(c[1])
			db := int(pix[i*4+2]) - int(c[2])
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				bestDist = d
				best = j
			}
		}
		bits |= uint32(best) << (uint(i) * 2)
	}
	out[4] = byte(bits)
	out[5] = byte(bits >> 8)
	out[6] = byte(bits >> 16)
	out[7] = byte(bits >> 24)
}

// encodeBlockDXT5 compresses 16 RGBA texels into a 16-byte DXT5 block.
// Single pass, nearest-entry matching only; fidelity is "visually
// adequate", not archival.
func encodeBlockDXT5(pix *[64]byte, out *[16]byte) {
	minA, maxA := uint8(255), uint8(0)
	for i := 0; i < 16; i++ {
		a := pix[i*4+3]
		if a < minA {
			minA = a
		}
		if a > maxA {
			maxA = a
		}
	}

	out[0], out[1] = maxA, minA
	ramp := alphaRamp(maxA, minA)

	var bits uint64
	for i := 0; i < 16; i++ {
		a := int(pix[i*4+3])
		best, bestDiff := 0, 1<<30
		for j, v := range ramp {
			diff := a - int(v)
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				bestDiff = diff
				best = j
			}
		}
		bits |= uint64(best) << (uint(i) * 3)
	}
	for i := 0; i < 6; i++ {
		out[2+i] = byte(bits >> (uint(i) * 8))
	}

	encodeColorBlock(pix, out[8:])
}

// encodeBlockDXT1 compresses 16 texels into an 8-byte DXT1 block using
// the same endpoint logic as the DXT5 color half. Alpha is discarded;
// the swap keeps the block out of 1-bit-alpha mode.
func encodeBlockDXT1(pix *[64]byte, out *[8]byte) {
	encodeColorBlock(pix, out[:])
}
