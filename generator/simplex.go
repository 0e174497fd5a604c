package generator

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/terrain/grid"
)

// SimplexParams configures fractional Brownian motion over simplex noise.
type SimplexParams struct {
	Scale      float64 // base frequency in features per grid side
	Octaves    int
	Lacunarity float64 // frequency multiplier per octave
	Gain       float64 // amplitude multiplier per octave
}

// DefaultSimplexParams returns a balanced fBm configuration.
func DefaultSimplexParams() SimplexParams {
	return SimplexParams{
		Scale:      4.0,
		Octaves:    5,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// Simplex generates a seamlessly tiling fBm heightmap. Each grid axis is
// mapped onto a circle in 4D noise space, so the result wraps like the
// grid does.
type Simplex struct {
	size   int
	params SimplexParams
	seed   int64
}

// NewSimplex configures a generator. Out-of-range parameters are clamped.
func NewSimplex(size int, p SimplexParams, seed int64) *Simplex {
	p.Scale = max(0.01, p.Scale)
	p.Octaves = max(1, min(16, p.Octaves))
	p.Lacunarity = max(1.0, p.Lacunarity)
	p.Gain = max(0.01, min(1.0, p.Gain))
	return &Simplex{size: max(1, size), params: p, seed: seed}
}

// Generate implements Generator.
func (s *Simplex) Generate() (*grid.Grid, error) {
	noise := opensimplex.New(s.seed)
	g := grid.New(s.size)
	n := float64(s.size)

	for y := 0; y < s.size; y++ {
		ay := 2 * math.Pi * float64(y) / n
		cy, sy := math.Cos(ay), math.Sin(ay)
		for x := 0; x < s.size; x++ {
			ax := 2 * math.Pi * float64(x) / n
			cx, sx := math.Cos(ax), math.Sin(ax)

			var sum float64
			amp, freq := 1.0, s.params.Scale/(2*math.Pi)
			for o := 0; o < s.params.Octaves; o++ {
				sum += amp * noise.Eval4(cx*freq, sx*freq, cy*freq, sy*freq)
				amp *= s.params.Gain
				freq *= s.params.Lacunarity
			}
			g.Set(x, y, sum)
		}
	}

	out, err := g.Normalize()
	if err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	return out, nil
}
