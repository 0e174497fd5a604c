package imageio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/pthm-cable/terrain/grid"
)

// ErrFormat reports an output format that cannot hold the requested depth.
var ErrFormat = errors.New("imageio: unsupported format")

// Format is an on-disk encoding.
type Format int

const (
	PNG Format = iota
	TIFF
	Raw // little-endian samples, no header
)

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".raw", ".r16", ".r32", ".bin":
		return Raw, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Decode reads a PNG or TIFF image, crops it to a centred square, converts
// it to gray and normalizes intensities to [0,1]. A positive resample side
// rescales the square with Catmull-Rom interpolation.
func Decode(r io.Reader, resample int) (*grid.Grid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == 0 {
		return nil, fmt.Errorf("%w: empty image", grid.ErrShape)
	}
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))

	out := side
	if resample > 0 {
		out = resample
	}
	gray := image.NewGray16(image.Rect(0, 0, out, out))
	if out == side {
		draw.Draw(gray, gray.Bounds(), img, crop.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(gray, gray.Bounds(), img, crop, draw.Src, nil)
	}

	g := grid.New(out)
	for y := 0; y < out; y++ {
		for x := 0; x < out; x++ {
			g.Set(x, y, float64(gray.Gray16At(x, y).Y)/0xffff)
		}
	}
	return g, nil
}

// Encode writes g in the given format. PNG and TIFF accept 8 and 16 bit
// depths; Raw accepts every depth.
func Encode(w io.Writer, g *grid.Grid, depth BitDepth, f Format) error {
	if err := CheckFinite(g); err != nil {
		return err
	}
	buf, err := Quantize(g, depth)
	if err != nil {
		return err
	}

	if err := CheckEncodable(depth, f); err != nil {
		return err
	}
	if f == Raw {
		return writeRaw(w, buf)
	}

	var img image.Image
	rect := image.Rect(0, 0, buf.Size, buf.Size)
	switch depth {
	case Depth8:
		gray := image.NewGray(rect)
		copy(gray.Pix, buf.U8)
		img = gray
	case Depth16:
		gray := image.NewGray16(rect)
		for i, v := range buf.U16 {
			gray.SetGray16(i%buf.Size, i/buf.Size, color.Gray16{Y: v})
		}
		img = gray
	}

	switch f {
	case PNG:
		return png.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %d", ErrFormat, f)
}

// CheckEncodable reports whether format f can hold samples of the given
// depth. PNG and TIFF take 8 and 16 bits; Raw takes every depth.
func CheckEncodable(depth BitDepth, f Format) error {
	switch f {
	case Raw:
		return nil
	case PNG, TIFF:
		if depth == Depth8 || depth == Depth16 {
			return nil
		}
		return fmt.Errorf("%w: %v-bit samples need raw output", ErrFormat, depth)
	}
	return fmt.Errorf("%w: %d", ErrFormat, f)
}

func writeRaw(w io.Writer, b Buffer) error {
	var data any
	switch b.Depth {
	case Float:
		data = b.F32
	case Depth8:
		data = b.U8
	case Depth16:
		data = b.U16
	case Depth32:
		data = b.U32
	}
	return binary.Write(w, binary.LittleEndian, data)
}

// Load decodes the image file at path.
func Load(path string, resample int) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f), resample)
}

// Save encodes g to path, choosing the format from the extension.
func Save(path string, g *grid.Grid, depth BitDepth) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, g, depth, format); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ImageGenerator produces a grid from an image file.
type ImageGenerator struct {
	path     string
	resample int
}

// NewImageGenerator configures an image-backed generator.
func NewImageGenerator(path string, resample int) *ImageGenerator {
	return &ImageGenerator{path: path, resample: resample}
}

// Generate implements generator.Generator.
func (ig *ImageGenerator) Generate() (*grid.Grid, error) {
	g, err := Load(ig.path, ig.resample)
	if err != nil {
		return nil, err
	}
	if err := CheckFinite(g); err != nil {
		return nil, err
	}
	return g, nil
}
