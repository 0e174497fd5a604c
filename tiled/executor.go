package tiled

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/terrain/grid"
)

// Executor runs per-tile work on a fixed number of workers.
type Executor struct {
	workers int
}

// New creates an executor with the given worker count. Zero or negative
// means one worker per available CPU.
func New(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{workers: workers}
}

// Workers returns the size of the worker pool.
func (e *Executor) Workers() int {
	if e == nil || e.workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return e.workers
}

// Collect runs fn once for every tile of src and returns the results keyed
// by tile origin. src is shared read-only between workers; fn must not
// modify it.
//
// Failures do not stop the run: every dispatched tile finishes, then all
// tile errors are returned joined in tile order. Cancelling ctx stops
// dispatching new tiles and appends the cancellation cause to the joined
// errors. No partial result is returned on failure.
func Collect[T any](ctx context.Context, e *Executor, src *grid.Grid, edge int, fn func(*grid.Grid, Tile) (T, error)) (map[Origin]T, error) {
	tiles := Tiles(src.Size(), edge)
	workers := min(e.Workers(), len(tiles))
	start := time.Now()

	var (
		mu      sync.Mutex
		results = make(map[Origin]T, len(tiles))
		failed  []*TileError
	)

	work := make(chan Tile)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for t := range work {
				v, err := call(fn, src, t)
				mu.Lock()
				if err != nil {
					failed = append(failed, &TileError{Tile: t, Err: err})
				} else {
					results[t.Origin()] = v
				}
				mu.Unlock()
			}
			return nil
		})
	}

	// The dispatcher is the only member that fails; Wait carries its
	// cancellation error once the workers have drained.
	g.Go(func() error {
		defer close(work)
		for i, t := range tiles {
			if ctx.Err() == nil {
				select {
				case <-ctx.Done():
				case work <- t:
					continue
				}
			}
			return fmt.Errorf("tiled run stopped after dispatching %d of %d tiles: %w", i, len(tiles), context.Cause(ctx))
		}
		return nil
	})
	stopped := g.Wait()

	if len(failed) > 0 {
		slices.SortFunc(failed, func(a, b *TileError) int {
			return cmp.Or(cmp.Compare(a.Tile.Y, b.Tile.Y), cmp.Compare(a.Tile.X, b.Tile.X))
		})
		errs := make([]error, 0, len(failed)+1)
		for _, f := range failed {
			errs = append(errs, f)
		}
		if stopped != nil {
			errs = append(errs, stopped)
		}
		return nil, errors.Join(errs...)
	}
	if stopped != nil {
		return nil, stopped
	}

	slog.Debug("tiled run complete",
		"tiles", len(tiles),
		"workers", workers,
		"elapsed_us", time.Since(start).Microseconds(),
	)
	return results, nil
}

// Run processes every tile of src with fn and merges the returned regions
// into a new grid of the same size. Each region must match its tile's
// extent exactly.
func (e *Executor) Run(ctx context.Context, src *grid.Grid, edge int, fn func(*grid.Grid, Tile) (*grid.Region, error)) (*grid.Grid, error) {
	results, err := Collect(ctx, e, src, edge, func(g *grid.Grid, t Tile) (*grid.Region, error) {
		r, err := fn(g, t)
		if err != nil {
			return nil, err
		}
		if r == nil || r.W != t.W || r.H != t.H {
			return nil, fmt.Errorf("%w: tile result %v, want %dx%d", grid.ErrShape, r, t.W, t.H)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	out := grid.New(src.Size())
	for _, t := range Tiles(src.Size(), edge) {
		out.Paste(t.X, t.Y, results[t.Origin()])
	}
	return out, nil
}

// call invokes fn, converting a panic into an error.
func call[T any](fn func(*grid.Grid, Tile) (T, error), src *grid.Grid, t Tile) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(src, t)
}
