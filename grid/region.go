package grid

import "fmt"

// Region is a rectangular W×H block of cells, used for tile-sized pieces of
// a grid. Unlike Grid it is not square and does not wrap.
type Region struct {
	W, H  int
	cells []float64
}

// NewRegion allocates a zero-filled region.
func NewRegion(w, h int) *Region {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Region{W: w, H: h, cells: make([]float64, w*h)}
}

// Get returns the value at local coordinates (x, y).
func (r *Region) Get(x, y int) float64 { return r.cells[y*r.W+x] }

// Set writes the value at local coordinates (x, y).
func (r *Region) Set(x, y int, v float64) { r.cells[y*r.W+x] = v }

// Region copies the w×h block whose top-left corner is (x, y). Coordinates
// wrap, so blocks may straddle the seam.
func (g *Grid) Region(x, y, w, h int) *Region {
	r := NewRegion(w, h)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			r.cells[dy*w+dx] = g.Get(x+dx, y+dy)
		}
	}
	return r
}

// Paste writes r into g with its top-left corner at (x, y).
func (g *Grid) Paste(x, y int, r *Region) {
	for dy := 0; dy < r.H; dy++ {
		for dx := 0; dx < r.W; dx++ {
			g.Set(x+dx, y+dy, r.cells[dy*r.W+dx])
		}
	}
}

func (r *Region) String() string {
	return fmt.Sprintf("Region(%dx%d)", r.W, r.H)
}
