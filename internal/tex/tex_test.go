package tex

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"lol-asset-tools/internal/format"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestMipCount(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{4, 4, 3},
		{256, 256, 9},
		{256, 64, 9},
		{64, 256, 9},
	}
	for _, tt := range tests {
		if got := MipCount(tt.w, tt.h); got != tt.want {
			t.Errorf("MipCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if DXT1.String() != "DXT1" || DXT5.String() != "DXT5" || BGRA8.String() != "BGRA8" {
		t.Errorf("format names: %v %v %v", DXT1, DXT5, BGRA8)
	}
	if got := Format(7).String(); got != "Format(7)" {
		t.Errorf("unknown format = %q", got)
	}
}

func TestReadBytesRoundTripSingleLevel(t *testing.T) {
	src, err := Encode(solidNRGBA(8, 8, color.NRGBA{R: 255, A: 255}), BGRA8, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Width != 8 || got.Height != 8 || got.Format != BGRA8 {
		t.Errorf("header = %dx%d %v", got.Width, got.Height, got.Format)
	}
	if len(got.Mips) != 1 || !bytes.Equal(got.Mips[0], src.Mips[0]) {
		t.Errorf("payload mismatch")
	}
}

func TestReadBytesRoundTripMipChain(t *testing.T) {
	src, err := Encode(solidNRGBA(8, 4, color.NRGBA{G: 255, A: 255}), DXT5, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// 8x4 full chain: 8x4, 4x2, 2x1, 1x1.
	if len(src.Mips) != 4 {
		t.Fatalf("mip chain length = %d, want 4", len(src.Mips))
	}

	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Mips) != 4 {
		t.Fatalf("read back %d mips, want 4", len(got.Mips))
	}
	for i := range src.Mips {
		if !bytes.Equal(got.Mips[i], src.Mips[i]) {
			t.Errorf("mip %d changed across the round trip", i)
		}
	}
}

func TestMipStorageOrderReversed(t *testing.T) {
	// The container stores the smallest level first; the 1x1 DXT5 mip
	// (16 bytes) must appear directly after the 12-byte header.
	src, err := Encode(solidNRGBA(8, 8, color.NRGBA{B: 255, A: 255}), DXT5, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	smallest := src.Mips[len(src.Mips)-1]
	if !bytes.Equal(data[12:12+len(smallest)], smallest) {
		t.Errorf("smallest mip is not first in storage")
	}
	largest := src.Mips[0]
	if !bytes.Equal(data[len(data)-len(largest):], largest) {
		t.Errorf("largest mip is not last in storage")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "short", data: []byte{1, 2, 3}, want: format.ErrUnexpectedEOF},
		{
			name: "bad_magic",
			data: append([]byte("NOPE"), make([]byte, 20)...),
			want: format.ErrMalformedHeader,
		},
		{
			name: "bad_format_code",
			data: []byte{0x54, 0x45, 0x58, 0x00, 4, 0, 4, 0, 1, 99, 0, 0},
			want: format.ErrUnsupportedPixelFormat,
		},
		{
			name: "zero_width",
			data: []byte{0x54, 0x45, 0x58, 0x00, 0, 0, 4, 0, 1, 10, 0, 0},
			want: format.ErrInvalidFieldValue,
		},
		{
			name: "truncated_payload",
			data: []byte{0x54, 0x45, 0x58, 0x00, 4, 0, 4, 0, 1, 20, 0, 0, 1, 2, 3},
			want: format.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	want := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	tx, err := Encode(solidNRGBA(16, 16, want), DXT1, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := tx.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := img.NRGBAAt(7, 7); got != want {
		t.Errorf("decoded texel = %v, want %v", got, want)
	}
}

func TestValidatePartialChain(t *testing.T) {
	tx, err := Encode(solidNRGBA(8, 8, color.NRGBA{A: 255}), DXT1, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tx.Mips = tx.Mips[:2] // neither single-level nor a full chain
	if _, err := tx.Bytes(); !errors.Is(err, format.ErrInvalidFieldValue) {
		t.Errorf("partial chain: err = %v, want ErrInvalidFieldValue", err)
	}
}
