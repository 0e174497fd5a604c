// Package grid provides the square, toroidal heightmap shared by every
// generator and filter.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var (
	// ErrShape reports input that is empty, ragged, not square, or of a
	// different size than the grid it is combined with.
	ErrShape = errors.New("grid: shape mismatch")
	// ErrDegenerateRange reports a flat field that cannot be remapped to [0,1].
	ErrDegenerateRange = errors.New("grid: degenerate value range")
	// ErrParameterOutOfRange is reserved for parameters with no sane clamp.
	ErrParameterOutOfRange = errors.New("grid: parameter out of range")
)

// Tolerances used by Equal.
const (
	relTolerance = 1e-5
	absTolerance = 1e-8
)

// Grid is a size×size field of heights stored row-major. Every coordinate
// wraps modulo size.
type Grid struct {
	size  int
	cells []float64
}

// New allocates a zero-filled grid. Sizes below 1 are clamped to 1.
func New(size int) *Grid {
	if size < 1 {
		size = 1
	}
	return &Grid{size: size, cells: make([]float64, size*size)}
}

// FromArray copies rows into a new grid. rows[y][x] becomes cell (x, y).
func FromArray(rows [][]float64) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: input has no rows", ErrShape)
	}
	g := New(n)
	for y, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, y, len(row), n)
		}
		copy(g.cells[y*n:(y+1)*n], row)
	}
	return g, nil
}

// fromCells wraps an existing row-major slice without copying.
func fromCells(size int, cells []float64) *Grid {
	return &Grid{size: size, cells: cells}
}

// Size returns the side length.
func (g *Grid) Size() int { return g.size }

// Wrap maps any integer index onto [0, n).
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Index returns the slice index for (x, y) after wrapping.
func (g *Grid) Index(x, y int) int {
	return Wrap(y, g.size)*g.size + Wrap(x, g.size)
}

// Get returns the height at (x, y).
func (g *Grid) Get(x, y int) float64 { return g.cells[g.Index(x, y)] }

// Set writes the height at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.cells[g.Index(x, y)] = v }

// At samples the grid at fractional coordinates with bilinear
// interpolation. Integer-valued coordinates return exactly Get.
func (g *Grid) At(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := g.Get(ix, iy)*(1-fx) + g.Get(ix+1, iy)*fx
	if fy == 0 {
		return top
	}
	bottom := g.Get(ix, iy+1)*(1-fx) + g.Get(ix+1, iy+1)*fx
	return top*(1-fy) + bottom*fy
}

// Values returns a copy of the row-major cell slice.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.cells))
	copy(out, g.cells)
	return out
}

// Rows returns a copy of the grid as rows[y][x].
func (g *Grid) Rows() [][]float64 {
	rows := make([][]float64, g.size)
	for y := range rows {
		rows[y] = make([]float64, g.size)
		copy(rows[y], g.cells[y*g.size:(y+1)*g.size])
	}
	return rows
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	return fromCells(g.size, g.Values())
}

// Equal reports whether both grids have the same size and every pair of
// cells is numerically close.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.size != o.size {
		return false
	}
	for i, v := range g.cells {
		if !scalar.EqualWithinAbsOrRel(v, o.cells[i], absTolerance, relTolerance) {
			return false
		}
	}
	return true
}

// Min returns the smallest cell value.
func (g *Grid) Min() float64 { return floats.Min(g.cells) }

// Max returns the largest cell value.
func (g *Grid) Max() float64 { return floats.Max(g.cells) }

// Sum returns the total of all cells.
func (g *Grid) Sum() float64 { return floats.Sum(g.cells) }

// Mean returns the average cell value.
func (g *Grid) Mean() float64 { return g.Sum() / float64(len(g.cells)) }

// Normalize remaps values linearly so the minimum becomes 0 and the maximum 1.
func (g *Grid) Normalize() (*Grid, error) {
	lo, hi := g.Min(), g.Max()
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("%w: min %v, max %v", ErrDegenerateRange, lo, hi)
	}
	out := make([]float64, len(g.cells))
	for i, v := range g.cells {
		out[i] = (v - lo) / span
	}
	return fromCells(g.size, out), nil
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d)", g.size)
}
