package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"lol-asset-tools/internal/tex"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
)

func main() {
	outPath := flag.String("o", "", "Output file (default: input with new extension)")
	texFormat := flag.String("format", "dxt5", "Pixel format when encoding: dxt1, dxt5 or bgra8")
	mips := flag.Bool("mips", false, "Generate a full mipmap chain when encoding")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: texconv [flags] <file>")
		fmt.Fprintln(os.Stderr, "  .tex/.dds input -> decoded image (png/webp)")
		fmt.Fprintln(os.Stderr, "  .png/.jpg/.tga input -> encoded texture (tex/dds)")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ext := strings.ToLower(filepath.Ext(inPath))
	switch ext {
	case ".tex", ".dds":
		err = decodeTexture(inPath, *outPath, ext, data)
	case ".png", ".jpg", ".jpeg", ".tga":
		err = encodeTexture(inPath, *outPath, *texFormat, *mips, data)
	default:
		err = fmt.Errorf("unsupported input extension %q", ext)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func decodeTexture(inPath, outPath, ext string, data []byte) error {
	var t *tex.Texture
	var err error
	if ext == ".dds" {
		t, err = tex.FromDDS(data)
	} else {
		t, err = tex.Read(data)
	}
	if err != nil {
		return err
	}

	img, err := t.Decode()
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".png"
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return err
	}

	fmt.Printf("OK  %s -> %s  (%dx%d %s, %d mip(s))\n",
		inPath, outPath, t.Width, t.Height, t.Format, len(t.Mips))
	return nil
}

func encodeTexture(inPath, outPath, formatName string, mips bool, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}

	var f tex.Format
	switch strings.ToLower(formatName) {
	case "dxt1":
		f = tex.DXT1
	case "dxt5":
		f = tex.DXT5
	case "bgra8":
		f = tex.BGRA8
	default:
		return fmt.Errorf("unknown pixel format %q", formatName)
	}

	t, err := tex.Encode(img, f, mips)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".tex"
	}

	var out []byte
	if strings.EqualFold(filepath.Ext(outPath), ".dds") {
		out, err = t.DDS()
	} else {
		out, err = t.Bytes()
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return err
	}

	fmt.Printf("OK  %s -> %s  (%dx%d %s, %d mip(s))\n",
		inPath, outPath, t.Width, t.Height, t.Format, len(t.Mips))
	return nil
}
