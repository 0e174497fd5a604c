// Package filter holds grid-to-grid transforms: thermal and hydraulic
// erosion and strata terracing. Filters never modify their input.
package filter

import (
	"context"

	"github.com/pthm-cable/terrain/grid"
)

// Filter transforms a grid into a new grid.
type Filter interface {
	Apply(g *grid.Grid) (*grid.Grid, error)
}

// ContextFilter is implemented by filters that can be cancelled, usually
// because they dispatch work to a tiled executor.
type ContextFilter interface {
	Filter
	ApplyContext(ctx context.Context, g *grid.Grid) (*grid.Grid, error)
}

// Func adapts a plain function to Filter.
type Func func(g *grid.Grid) (*grid.Grid, error)

// Apply calls f.
func (f Func) Apply(g *grid.Grid) (*grid.Grid, error) { return f(g) }

// ApplyContext runs f with ctx when f supports it.
func ApplyContext(ctx context.Context, f Filter, g *grid.Grid) (*grid.Grid, error) {
	if cf, ok := f.(ContextFilter); ok {
		return cf.ApplyContext(ctx, g)
	}
	return f.Apply(g)
}

// Chain composes filters left to right.
type Chain []Filter

// Apply runs every filter in order, feeding each one the previous output.
func (c Chain) Apply(g *grid.Grid) (*grid.Grid, error) {
	return c.ApplyContext(context.Background(), g)
}

// ApplyContext is Apply with cancellation between and within filters.
func (c Chain) ApplyContext(ctx context.Context, g *grid.Grid) (*grid.Grid, error) {
	cur := g
	for _, f := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := ApplyContext(ctx, f, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if cur == g {
		return g.Clone(), nil
	}
	return cur, nil
}
