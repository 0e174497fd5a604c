package filter

import (
	"context"
	"math"

	"github.com/pthm-cable/terrain/grid"
	"github.com/pthm-cable/terrain/tiled"
)

// MinStrataLevels is the smallest terrace count.
const MinStrataLevels = 2.0

// Strata quantizes heights into flat terraces. It is pointwise, so it
// always runs through a tiled executor.
type Strata struct {
	levels   float64
	exec     *tiled.Executor
	tileEdge int
}

// NewStrata configures terracing into levels steps per unit height. A nil
// executor uses one worker per CPU.
func NewStrata(levels float64, e *tiled.Executor, tileEdge int) *Strata {
	if e == nil {
		e = tiled.New(0)
	}
	return &Strata{levels: max(MinStrataLevels, levels), exec: e, tileEdge: tileEdge}
}

// Levels returns the clamped terrace count.
func (s *Strata) Levels() float64 { return s.levels }

// Apply implements Filter.
func (s *Strata) Apply(g *grid.Grid) (*grid.Grid, error) {
	return s.ApplyContext(context.Background(), g)
}

// ApplyContext implements ContextFilter.
func (s *Strata) ApplyContext(ctx context.Context, g *grid.Grid) (*grid.Grid, error) {
	return s.exec.Run(ctx, g, s.tileEdge, func(src *grid.Grid, t tiled.Tile) (*grid.Region, error) {
		r := grid.NewRegion(t.W, t.H)
		for dy := 0; dy < t.H; dy++ {
			for dx := 0; dx < t.W; dx++ {
				h := src.Get(t.X+dx, t.Y+dy)
				r.Set(dx, dy, math.Floor(h*s.levels)/s.levels)
			}
		}
		return r, nil
	})
}
