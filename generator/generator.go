// Package generator produces initial heightmaps.
package generator

import (
	"math/rand/v2"

	"github.com/pthm-cable/terrain/grid"
)

// Generator produces a new grid.
type Generator interface {
	Generate() (*grid.Grid, error)
}

// Func adapts a plain function to Generator.
type Func func() (*grid.Grid, error)

// Generate calls f.
func (f Func) Generate() (*grid.Grid, error) { return f() }

// NewRand returns a deterministic source for the given seed. Every
// generator draws from one of these, never from the global source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// uniform draws from [-bound, bound].
func uniform(r *rand.Rand, bound float64) float64 {
	return (r.Float64()*2 - 1) * bound
}
