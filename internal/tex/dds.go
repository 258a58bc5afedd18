package tex

import (
	"encoding/binary"
	"fmt"
	"image"

	"lol-asset-tools/internal/dxt"
	"lol-asset-tools/internal/format"
)

// DDS constants for the subset this codec understands.
const (
	ddsMagic   = 0x20534444 // "DDS "
	fourCCDXT1 = 0x31545844 // "DXT1"
	fourCCDXT5 = 0x35545844 // "DXT5"
	fourCCDX10 = 0x30315844 // "DX10"

	dxgiBC1 = 71
	dxgiBC3 = 77

	ddsHeaderSize = 128
	dx10ExtSize   = 20

	// ddpf.dwFlags: DDPF_RGB|DDPF_ALPHAPIXELS signals uncompressed
	// 32-bit data described by the channel bitmasks.
	ddpfUncompressed = 0x41
)

// FromDDS translates a DDS file into a Texture. Only the subset the
// game engine produces is accepted: DXT1/DXT5 fourCC (directly or via a
// DX10 extension header), or uncompressed 32-bit data whose bitmasks
// resolve to single-byte channels.
func FromDDS(data []byte) (*Texture, error) {
	if len(data) < ddsHeaderSize {
		return nil, fmt.Errorf("dds: %d-byte file: %w", len(data), format.ErrUnexpectedEOF)
	}
	if binary.LittleEndian.Uint32(data[0:]) != ddsMagic {
		return nil, fmt.Errorf("dds: bad signature: %w", format.ErrMalformedHeader)
	}

	height := int(binary.LittleEndian.Uint32(data[12:]))
	width := int(binary.LittleEndian.Uint32(data[16:]))
	mipMapCount := int(binary.LittleEndian.Uint32(data[28:]))
	pfFlags := binary.LittleEndian.Uint32(data[80:])
	fourCC := binary.LittleEndian.Uint32(data[84:])
	bitCount := binary.LittleEndian.Uint32(data[88:])

	if width <= 0 || height <= 0 || width*height > dxt.MaxPixels {
		return nil, fmt.Errorf("dds: dimensions %dx%d: %w", width, height, format.ErrInvalidFieldValue)
	}

	var f Format
	dataOffset := ddsHeaderSize
	var remap *[4]int

	switch {
	case fourCC == fourCCDXT1:
		f = DXT1
	case fourCC == fourCCDXT5:
		f = DXT5
	case fourCC == fourCCDX10:
		if len(data) < ddsHeaderSize+dx10ExtSize {
			return nil, fmt.Errorf("dds: truncated DX10 header: %w", format.ErrUnexpectedEOF)
		}
		dxgi := binary.LittleEndian.Uint32(data[ddsHeaderSize:])
		dataOffset += dx10ExtSize
		switch dxgi {
		case dxgiBC1:
			f = DXT1
		case dxgiBC3:
			f = DXT5
		default:
			return nil, fmt.Errorf("dds: DXGI format %d: %w", dxgi, format.ErrUnsupportedPixelFormat)
		}
	case pfFlags&ddpfUncompressed == ddpfUncompressed:
		f = BGRA8
		if bitCount != 32 {
			return nil, fmt.Errorf("dds: dwRGBBitCount %d, want 32: %w", bitCount, format.ErrInvalidFieldValue)
		}
		var err error
		remap, err = channelRemap(
			binary.LittleEndian.Uint32(data[92:]),
			binary.LittleEndian.Uint32(data[96:]),
			binary.LittleEndian.Uint32(data[100:]),
			binary.LittleEndian.Uint32(data[104:]),
		)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("dds: fourCC %#08x flags %#x: %w", fourCC, pfFlags, format.ErrUnsupportedPixelFormat)
	}

	payload := data[dataOffset:]
	if remap != nil {
		payload = remapBGRA(payload, remap)
	}

	t := &Texture{Width: width, Height: height, Format: f}

	if mipMapCount > 1 {
		if expected := MipCount(width, height); mipMapCount != expected {
			return nil, fmt.Errorf("dds: mip count %d, expected %d: %w",
				mipMapCount, expected, format.ErrInvalidFieldValue)
		}
		// DDS stores largest mip first, which is already the logical
		// order of Texture.Mips.
		off := 0
		for i := 0; i < mipMapCount; i++ {
			w, h := mipDims(width, height, i)
			n := mipSize(f, w, h)
			if off+n > len(payload) {
				return nil, fmt.Errorf("dds: mip %d needs %d bytes at offset %d: %w",
					i, n, off, format.ErrUnexpectedEOF)
			}
			t.Mips = append(t.Mips, payload[off:off+n])
			off += n
		}
	} else {
		n := mipSize(f, width, height)
		if n > len(payload) {
			return nil, fmt.Errorf("dds: payload %d bytes, level needs %d: %w",
				len(payload), n, format.ErrUnexpectedEOF)
		}
		t.Mips = [][]byte{payload[:n]}
	}
	return t, nil
}

// channelRemap maps each channel's bitmask to a byte index within a
// 32-bit pixel. Canonical BGRA masks return nil (no remap needed);
// unrecognized masks are a hard error.
func channelRemap(r, g, b, a uint32) (*[4]int, error) {
	if b == 0x000000FF && g == 0x0000FF00 && r == 0x00FF0000 && a == 0xFF000000 {
		return nil, nil
	}
	maskToIndex := map[uint32]int{
		0x000000FF: 0,
		0x0000FF00: 1,
		0x00FF0000: 2,
		0xFF000000: 3,
	}
	var idx [4]int
	for i, m := range [4]uint32{r, g, b, a} {
		pos, ok := maskToIndex[m]
		if !ok {
			return nil, fmt.Errorf("dds: channel bitmask %#08x: %w", m, format.ErrInvalidFieldValue)
		}
		idx[i] = pos
	}
	return &idx, nil
}

// remapBGRA rewrites pixels described by arbitrary single-byte channel
// masks into canonical BGRA byte order.
func remapBGRA(data []byte, idx *[4]int) []byte {
	out := make([]byte, len(data)&^3)
	for i := 0; i+4 <= len(data); i += 4 {
		out[i] = data[i+idx[2]]   // B
		out[i+1] = data[i+idx[1]] // G
		out[i+2] = data[i+idx[0]] // R
		out[i+3] = data[i+idx[3]] // A
	}
	return out
}

// DDS serializes the texture as a DDS file, largest mip first.
func (t *Texture) DDS() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	flags := uint32(0x00001007) // CAPS|HEIGHT|WIDTH|PIXELFORMAT
	caps := uint32(0x00001000)  // TEXTURE
	mipCount := uint32(0)
	if len(t.Mips) > 1 {
		flags |= 0x00020000 // MIPMAPCOUNT
		caps |= 0x00400008  // COMPLEX|MIPMAP
		mipCount = uint32(len(t.Mips))
	}

	var pfFlags, pfFourCC, pfBitCount uint32
	var rMask, gMask, bMask, aMask uint32
	switch t.Format {
	case DXT1:
		pfFlags = 0x4 // FOURCC
		pfFourCC = fourCCDXT1
	case DXT5:
		pfFlags = 0x4
		pfFourCC = fourCCDXT5
	case BGRA8:
		pfFlags = ddpfUncompressed
		pfBitCount = 32
		bMask = 0x000000FF
		gMask = 0x0000FF00
		rMask = 0x00FF0000
		aMask = 0xFF000000
	}

	out := make([]byte, ddsHeaderSize, ddsHeaderSize+t.payloadSize())
	le := binary.LittleEndian
	le.PutUint32(out[0:], ddsMagic)
	le.PutUint32(out[4:], 124)
	le.PutUint32(out[8:], flags)
	le.PutUint32(out[12:], uint32(t.Height))
	le.PutUint32(out[16:], uint32(t.Width))
	le.PutUint32(out[28:], mipCount)
	le.PutUint32(out[76:], 32)
	le.PutUint32(out[80:], pfFlags)
	le.PutUint32(out[84:], pfFourCC)
	le.PutUint32(out[88:], pfBitCount)
	le.PutUint32(out[92:], rMask)
	le.PutUint32(out[96:], gMask)
	le.PutUint32(out[100:], bMask)
	le.PutUint32(out[104:], aMask)
	le.PutUint32(out[108:], caps)

	for _, m := range t.Mips {
		out = append(out, m...)
	}
	return out, nil
}

// DecodeDDS decodes a DDS file's largest mip into an image. Row order
// is top-down, as stored.
func DecodeDDS(data []byte) (*image.NRGBA, error) {
	t, err := FromDDS(data)
	if err != nil {
		return nil, err
	}
	return t.Decode()
}
