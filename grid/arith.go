package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Elementwise arithmetic. Every operation returns a new grid and leaves
// both operands untouched. Combining grids of different sizes panics with
// ErrShape.

// Add returns g + o.
func (g *Grid) Add(o *Grid) *Grid {
	g.mustMatch(o)
	out := g.Values()
	floats.Add(out, o.cells)
	return fromCells(g.size, out)
}

// Sub returns g - o.
func (g *Grid) Sub(o *Grid) *Grid {
	g.mustMatch(o)
	out := g.Values()
	floats.Sub(out, o.cells)
	return fromCells(g.size, out)
}

// Mul returns g * o.
func (g *Grid) Mul(o *Grid) *Grid {
	g.mustMatch(o)
	out := g.Values()
	floats.Mul(out, o.cells)
	return fromCells(g.size, out)
}

// Div returns g / o. Division by zero follows IEEE-754.
func (g *Grid) Div(o *Grid) *Grid {
	g.mustMatch(o)
	out := g.Values()
	floats.Div(out, o.cells)
	return fromCells(g.size, out)
}

// AddScalar returns g + s.
func (g *Grid) AddScalar(s float64) *Grid {
	out := g.Values()
	floats.AddConst(s, out)
	return fromCells(g.size, out)
}

// SubScalar returns g - s.
func (g *Grid) SubScalar(s float64) *Grid {
	return g.AddScalar(-s)
}

// MulScalar returns g * s.
func (g *Grid) MulScalar(s float64) *Grid {
	out := g.Values()
	floats.Scale(s, out)
	return fromCells(g.size, out)
}

// DivScalar returns g / s.
func (g *Grid) DivScalar(s float64) *Grid {
	out := g.Values()
	for i := range out {
		out[i] /= s
	}
	return fromCells(g.size, out)
}

func (g *Grid) mustMatch(o *Grid) {
	if o == nil || o.size != g.size {
		other := 0
		if o != nil {
			other = o.size
		}
		panic(fmt.Errorf("%w: size %d vs %d", ErrShape, g.size, other))
	}
}
