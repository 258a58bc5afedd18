package dxt

import (
	"fmt"
	"image"

	"lol-asset-tools/internal/format"
)

// MaxPixels bounds decoded image allocations. Dimension fields come
// from untrusted files and must be rejected before allocating.
const MaxPixels = 100_000_000

// DecodeDXT1 decodes DXT1 block data into a width x height image.
// Blocks overhanging a non-multiple-of-4 edge are clipped.
func DecodeDXT1(data []byte, width, height int) (*image.NRGBA, error) {
	return decodeBlocks(data, width, height, BlockSizeDXT1, decodeBlockDXT1)
}

// DecodeDXT5 decodes DXT5 block data into a width x height image.
func DecodeDXT5(data []byte, width, height int) (*image.NRGBA, error) {
	return decodeBlocks(data, width, height, BlockSizeDXT5, decodeBlockDXT5)
}

func checkDims(width, height int) error {
	if width <= 0 || height <= 0 || width*height > MaxPixels {
		return fmt.Errorf("dxt: bad dimensions %dx%d: %w", width, height, format.ErrInvalidFieldValue)
	}
	return nil
}

func decodeBlocks(data []byte, width, height, blockSize int, decode func([]byte, *[64]byte)) (*image.NRGBA, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}

	bw := (width + 3) / 4
	bh := (height + 3) / 4
	if len(data) < bw*bh*blockSize {
		return nil, fmt.Errorf("dxt: need %d block bytes, have %d: %w",
			bw*bh*blockSize, len(data), format.ErrUnexpectedEOF)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	var pix [64]byte
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			decode(data[off:off+blockSize], &pix)
			off += blockSize
			scatterBlock(img, bx*4, by*4, &pix)
		}
	}
	return img, nil
}

// scatterBlock copies a decoded 4x4 tile into the image, skipping
// texels past the right or bottom edge.
func scatterBlock(img *image.NRGBA, baseX, baseY int, pix *[64]byte) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for py := 0; py < 4; py++ {
		y := baseY + py
		if y >= h {
			break
		}
		for px := 0; px < 4; px++ {
			x := baseX + px
			if x >= w {
				break
			}
			copy(img.Pix[y*img.Stride+x*4:], pix[(py*4+px)*4:(py*4+px)*4+4])
		}
	}
}

// DecodeBGRA8 reorders raw 32-bit BGRA texels into an NRGBA image.
// No block logic; a plain channel swap.
func DecodeBGRA8(data []byte, width, height int) (*image.NRGBA, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}
	if len(data) < width*height*4 {
		return nil, fmt.Errorf("dxt: need %d BGRA bytes, have %d: %w",
			width*height*4, len(data), format.ErrUnexpectedEOF)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * 4
			dst := y*img.Stride + x*4
			img.Pix[dst] = data[src+2]
			img.Pix[dst+1] = data[src+1]
			img.Pix[dst+2] = data[src]
			img.Pix[dst+3] = data[src+3]
		}
	}
	return img, nil
}

// EncodeDXT1 compresses an image to DXT1 block data.
func EncodeDXT1(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, 0, bw*bh*BlockSizeDXT1)

	var pix [64]byte
	var block [8]byte
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			gatherBlock(img, bx*4, by*4, &pix)
			encodeBlockDXT1(&pix, &block)
			out = append(out, block[:]...)
		}
	}
	return out
}

// EncodeDXT5 compresses an image to DXT5 block data.
func EncodeDXT5(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, 0, bw*bh*BlockSizeDXT5)

	var pix [64]byte
	var block [16]byte
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			gatherBlock(img, bx*4, by*4, &pix)
			encodeBlockDXT5(&pix, &block)
			out = append(out, block[:]...)
		}
	}
	return out
}

// EncodeBGRA8 reorders an NRGBA image into raw BGRA texel data.
func EncodeBGRA8(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			dst := (y*w + x) * 4
			out[dst] = img.Pix[src+2]
			out[dst+1] = img.Pix[src+1]
			out[dst+2] = img.Pix[src]
			out[dst+3] = img.Pix[src+3]
		}
	}
	return out
}

// gatherBlock extracts a 4x4 tile, zero-padding texels past the image
// edge.
func gatherBlock(img *image.NRGBA, baseX, baseY int, pix *[64]byte) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			i := (py*4 + px) * 4
			x, y := baseX+px, baseY+py
			if x >= w || y >= h {
				pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0
				continue
			}
			copy(pix[i:i+4], img.Pix[y*img.Stride+x*4:])
		}
	}
}
