// Package imageio converts grids to and from images and raw sample buffers.
package imageio

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pthm-cable/terrain/grid"
)

var (
	// ErrBitDepth reports an unknown or unsupported bit depth.
	ErrBitDepth = errors.New("imageio: unsupported bit depth")
	// ErrNonFinite reports a grid holding NaN or infinite values.
	ErrNonFinite = errors.New("imageio: non-finite value")
)

// BitDepth selects the sample type of an exported heightmap.
type BitDepth int

const (
	Float BitDepth = iota
	Depth8
	Depth16
	Depth32
)

// ParseBitDepth accepts "float", "8", "16" and "32".
func ParseBitDepth(s string) (BitDepth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "f", "f32":
		return Float, nil
	case "8":
		return Depth8, nil
	case "16":
		return Depth16, nil
	case "32":
		return Depth32, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBitDepth, s)
}

// Bits returns the sample width in bits.
func (d BitDepth) Bits() int {
	switch d {
	case Depth8:
		return 8
	case Depth16:
		return 16
	}
	return 32
}

// Max returns the multiplier applied to heights: 2^bits-1, or 1 for Float.
func (d BitDepth) Max() float64 {
	if d == Float {
		return 1
	}
	return float64(uint64(1)<<d.Bits() - 1)
}

func (d BitDepth) String() string {
	switch d {
	case Float:
		return "float"
	case Depth8:
		return "8"
	case Depth16:
		return "16"
	case Depth32:
		return "32"
	}
	return fmt.Sprintf("BitDepth(%d)", int(d))
}

// Buffer holds quantized samples in row-major order. Exactly one of the
// sample slices is set, according to Depth.
type Buffer struct {
	Depth BitDepth
	Size  int
	F32   []float32
	U8    []uint8
	U16   []uint16
	U32   []uint32
}

// Len returns the number of samples.
func (b Buffer) Len() int { return b.Size * b.Size }

// Quantize scales every height by depth.Max(). Integer targets truncate
// toward zero and saturate at their range; NaN becomes 0. Float keeps the
// heights unscaled.
func Quantize(g *grid.Grid, depth BitDepth) (Buffer, error) {
	vals := g.Values()
	b := Buffer{Depth: depth, Size: g.Size()}
	top := depth.Max()
	switch depth {
	case Float:
		b.F32 = make([]float32, len(vals))
		for i, v := range vals {
			b.F32[i] = float32(v)
		}
	case Depth8:
		b.U8 = make([]uint8, len(vals))
		for i, v := range vals {
			b.U8[i] = uint8(saturate(v*top, top))
		}
	case Depth16:
		b.U16 = make([]uint16, len(vals))
		for i, v := range vals {
			b.U16[i] = uint16(saturate(v*top, top))
		}
	case Depth32:
		b.U32 = make([]uint32, len(vals))
		for i, v := range vals {
			b.U32[i] = uint32(saturate(v*top, top))
		}
	default:
		return Buffer{}, fmt.Errorf("%w: %v", ErrBitDepth, depth)
	}
	return b, nil
}

func saturate(v, top float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= top {
		return top
	}
	return math.Trunc(v)
}

// CheckFinite returns ErrNonFinite if any cell is NaN or infinite.
func CheckFinite(g *grid.Grid) error {
	for i, v := range g.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at cell (%d,%d)", ErrNonFinite, i%g.Size(), i/g.Size())
		}
	}
	return nil
}
