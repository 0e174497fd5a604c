package generator

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/terrain/grid"
)

// Parameter bounds for DiamondSquare.
const (
	MinSizeExponent = 1
	MaxSizeExponent = 13
	MinRoughness    = 0.001
	MaxRoughness    = 1.0
)

// DiamondSquare generates a (2^n+1)-sided heightmap by recursive midpoint
// displacement.
type DiamondSquare struct {
	exponent  int
	roughness float64
	seed      int64
}

// NewDiamondSquare configures a generator. sizeExponent and roughness are
// clamped into their valid ranges. Typical roughness values run from 0.01
// for flat land to 0.3 for rough hills.
func NewDiamondSquare(sizeExponent int, roughness float64, seed int64) *DiamondSquare {
	return &DiamondSquare{
		exponent:  max(MinSizeExponent, min(MaxSizeExponent, sizeExponent)),
		roughness: max(MinRoughness, min(MaxRoughness, roughness)),
		seed:      seed,
	}
}

// Side returns the side length of generated grids.
func (d *DiamondSquare) Side() int { return 1<<d.exponent + 1 }

// Roughness returns the clamped roughness.
func (d *DiamondSquare) Roughness() float64 { return d.roughness }

// Generate runs the algorithm with a fresh source for the configured seed,
// so repeated calls return identical grids.
func (d *DiamondSquare) Generate() (*grid.Grid, error) {
	return d.GenerateRand(NewRand(d.seed))
}

// GenerateRand runs the algorithm drawing every offset from r. Draws happen
// in a fixed order: corners, then per step the squares row-major followed
// by the diamonds row-major.
func (d *DiamondSquare) GenerateRand(r *rand.Rand) (*grid.Grid, error) {
	side := d.Side()
	last := side - 1
	g := grid.New(side)

	slog.Debug("diamond-square setup", "side", side, "roughness", d.roughness)

	bound := float64(last)
	g.Set(0, 0, uniform(r, bound))
	g.Set(last, 0, uniform(r, bound))
	g.Set(0, last, uniform(r, bound))
	g.Set(last, last, uniform(r, bound))

	for step := last; step/2 >= 1; step /= 2 {
		half := step / 2
		scale := d.roughness * float64(step)

		for y := half; y < last; y += step {
			for x := half; x < last; x += step {
				d.square(g, x, y, half, scale, r)
			}
		}

		for y := 0; y < side; y += half {
			x0 := 0
			if (y/half)%2 == 0 {
				x0 = half
			}
			for x := x0; x < side; x += step {
				d.diamond(g, x, y, half, scale, r)
			}
		}
	}

	out, err := g.Normalize()
	if err != nil {
		return nil, fmt.Errorf("diamond-square: %w", err)
	}
	return out, nil
}

func (d *DiamondSquare) square(g *grid.Grid, x, y, half int, scale float64, r *rand.Rand) {
	avg := (g.Get(x-half, y-half) +
		g.Get(x+half, y-half) +
		g.Get(x-half, y+half) +
		g.Get(x+half, y+half)) / 4
	g.Set(x, y, avg+uniform(r, scale))
}

// diamond averages the four orthogonal neighbours of (x, y). Only a
// coordinate that leaves the grid wraps, with period side-1, so edge points
// read their in-grid neighbours directly.
func (d *DiamondSquare) diamond(g *grid.Grid, x, y, half int, scale float64, r *rand.Rand) {
	last := g.Size() - 1
	wrap := func(v int) int {
		switch {
		case v > last:
			return v - last
		case v < 0:
			return v + last
		}
		return v
	}
	at := func(px, py int) float64 {
		return g.Get(wrap(px), wrap(py))
	}
	avg := (at(x, y-half) + at(x+half, y) + at(x, y+half) + at(x-half, y)) / 4
	g.Set(x, y, avg+uniform(r, scale))
}
