// Package tex reads and writes the proprietary TEX texture container
// and translates it to and from DDS. Pixel payloads are DXT1, DXT5 or
// raw BGRA8; block codecs live in internal/dxt.
//
// Decoded images are top-down (row 0 is the top of the texture), the
// same row order DDS stores. Hosts wanting bottom-up buffers flip at
// the call site.
package tex

import (
	"fmt"
	"image"
	"image/color"
	"math/bits"

	xdraw "golang.org/x/image/draw"

	"lol-asset-tools/internal/dxt"
	"lol-asset-tools/internal/format"
)

// Magic is the TEX signature, "TEX\0" as a little-endian u32.
const Magic = 0x00584554

// Format is the pixel format code stored in the TEX header.
type Format uint8

const (
	DXT1  Format = 10
	DXT5  Format = 12
	BGRA8 Format = 20
)

func (f Format) String() string {
	switch f {
	case DXT1:
		return "DXT1"
	case DXT5:
		return "DXT5"
	case BGRA8:
		return "BGRA8"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

func (f Format) valid() bool {
	return f == DXT1 || f == DXT5 || f == BGRA8
}

// Texture is the canonical in-memory form. Mips[0] is the largest
// level; the on-disk container stores levels smallest-to-largest and
// the reversal is handled here in both directions.
type Texture struct {
	Width  int
	Height int
	Format Format
	Mips   [][]byte
}

// MipCount returns the full chain length for the given dimensions,
// floor(log2(max(w,h)))+1.
func MipCount(width, height int) int {
	m := width
	if height > m {
		m = height
	}
	if m < 1 {
		return 0
	}
	return bits.Len(uint(m))
}

// mipSize returns the payload byte size of one mip level.
func mipSize(f Format, width, height int) int {
	if f == BGRA8 {
		return width * height * 4
	}
	blocks := ((width + 3) / 4) * ((height + 3) / 4)
	if f == DXT1 {
		return blocks * dxt.BlockSizeDXT1
	}
	return blocks * dxt.BlockSizeDXT5
}

func mipDims(width, height, level int) (int, int) {
	w := width >> uint(level)
	h := height >> uint(level)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Read parses a TEX file.
func Read(data []byte) (*Texture, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("tex: %d-byte file: %w", len(data), format.ErrUnexpectedEOF)
	}
	magic := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if magic != Magic {
		return nil, fmt.Errorf("tex: signature %#08x: %w", magic, format.ErrMalformedHeader)
	}

	width := int(uint16(data[4]) | uint16(data[5])<<8)
	height := int(uint16(data[6]) | uint16(data[7])<<8)
	f := Format(data[9])
	hasMips := data[11] != 0

	if width <= 0 || height <= 0 || width*height > dxt.MaxPixels {
		return nil, fmt.Errorf("tex: dimensions %dx%d: %w", width, height, format.ErrInvalidFieldValue)
	}
	if !f.valid() {
		return nil, fmt.Errorf("tex: format code %d: %w", data[9], format.ErrUnsupportedPixelFormat)
	}

	payload := data[12:]
	t := &Texture{Width: width, Height: height, Format: f}

	if !hasMips {
		if len(payload) < mipSize(f, width, height) {
			return nil, fmt.Errorf("tex: payload %d bytes, level needs %d: %w",
				len(payload), mipSize(f, width, height), format.ErrUnexpectedEOF)
		}
		t.Mips = [][]byte{payload[:mipSize(f, width, height)]}
		return t, nil
	}

	// Storage order is smallest mip first; slice in that order and
	// reverse into logical largest-first order.
	count := MipCount(width, height)
	stored := make([][]byte, count)
	off := 0
	for i := count - 1; i >= 0; i-- {
		w, h := mipDims(width, height, i)
		n := mipSize(f, w, h)
		if off+n > len(payload) {
			return nil, fmt.Errorf("tex: mip %d needs %d bytes at offset %d: %w",
				i, n, off, format.ErrUnexpectedEOF)
		}
		stored[i] = payload[off : off+n]
		off += n
	}
	t.Mips = stored
	return t, nil
}

// Bytes serializes the texture. When more than one mip is present the
// levels are stored smallest-to-largest, mirroring Read.
func (t *Texture) Bytes() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 12+t.payloadSize())
	out = append(out,
		byte(Magic&0xff), byte(Magic>>8&0xff), byte(Magic>>16), byte(Magic>>24),
		byte(t.Width), byte(t.Width>>8),
		byte(t.Height), byte(t.Height>>8),
		1, byte(t.Format), 0,
	)
	if len(t.Mips) > 1 {
		out = append(out, 1)
		for i := len(t.Mips) - 1; i >= 0; i-- {
			out = append(out, t.Mips[i]...)
		}
	} else {
		out = append(out, 0)
		out = append(out, t.Mips[0]...)
	}
	return out, nil
}

func (t *Texture) payloadSize() int {
	n := 0
	for _, m := range t.Mips {
		n += len(m)
	}
	return n
}

func (t *Texture) validate() error {
	if t.Width <= 0 || t.Height <= 0 || t.Width > 0xFFFF || t.Height > 0xFFFF {
		return fmt.Errorf("tex: dimensions %dx%d: %w", t.Width, t.Height, format.ErrInvalidFieldValue)
	}
	if !t.Format.valid() {
		return fmt.Errorf("tex: format %v: %w", t.Format, format.ErrUnsupportedPixelFormat)
	}
	if len(t.Mips) == 0 {
		return fmt.Errorf("tex: no mip levels: %w", format.ErrInvalidFieldValue)
	}
	if len(t.Mips) > 1 && len(t.Mips) != MipCount(t.Width, t.Height) {
		return fmt.Errorf("tex: %d mips, full chain is %d: %w",
			len(t.Mips), MipCount(t.Width, t.Height), format.ErrInvalidFieldValue)
	}
	for i, m := range t.Mips {
		w, h := mipDims(t.Width, t.Height, i)
		if len(m) != mipSize(t.Format, w, h) {
			return fmt.Errorf("tex: mip %d is %d bytes, want %d: %w",
				i, len(m), mipSize(t.Format, w, h), format.ErrInvalidFieldValue)
		}
	}
	return nil
}

// Decode returns the largest mip level as an image. Row order is
// top-down.
func (t *Texture) Decode() (*image.NRGBA, error) {
	return decodeLevel(t.Format, t.Mips[0], t.Width, t.Height)
}

func decodeLevel(f Format, data []byte, width, height int) (*image.NRGBA, error) {
	switch f {
	case DXT1:
		return dxt.DecodeDXT1(data, width, height)
	case DXT5:
		return dxt.DecodeDXT5(data, width, height)
	case BGRA8:
		return dxt.DecodeBGRA8(data, width, height)
	}
	return nil, fmt.Errorf("tex: format %v: %w", f, format.ErrUnsupportedPixelFormat)
}

// Encode compresses an image into a texture. With mips enabled the
// full chain is generated by Catmull-Rom downscaling; otherwise only
// the base level is stored.
func Encode(src image.Image, f Format, mips bool) (*Texture, error) {
	if !f.valid() {
		return nil, fmt.Errorf("tex: format %v: %w", f, format.ErrUnsupportedPixelFormat)
	}
	img := ToNRGBA(src)
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, fmt.Errorf("tex: dimensions %dx%d: %w", width, height, format.ErrInvalidFieldValue)
	}

	t := &Texture{Width: width, Height: height, Format: f}

	count := 1
	if mips {
		count = MipCount(width, height)
	}
	level := img
	for i := 0; i < count; i++ {
		if i > 0 {
			w, h := mipDims(width, height, i)
			scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
			xdraw.CatmullRom.Scale(scaled, scaled.Rect, img, img.Rect, xdraw.Over, nil)
			level = scaled
		}
		t.Mips = append(t.Mips, encodeLevel(f, level))
	}
	return t, nil
}

func encodeLevel(f Format, img *image.NRGBA) []byte {
	switch f {
	case DXT1:
		return dxt.EncodeDXT1(img)
	case DXT5:
		return dxt.EncodeDXT5(img)
	default:
		return dxt.EncodeBGRA8(img)
	}
}

// ToNRGBA converts any image to NRGBA without touching row order.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*dst.Stride + x*4
			dst.Pix[i] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = c.A
		}
	}
	return dst
}
