// Package tiled splits a grid into rectangular tiles, processes them on a
// bounded worker pool and merges the results back deterministically.
package tiled

import (
	"fmt"
)

// DefaultTileEdge is used when a non-positive edge length is requested.
const DefaultTileEdge = 32

// Origin is the top-left corner of a tile. Results are keyed by it.
type Origin struct {
	X, Y int
}

// Tile describes a W×H block of the grid starting at (X, Y).
type Tile struct {
	X, Y int
	W, H int
}

// Origin returns the tile's top-left corner.
func (t Tile) Origin() Origin { return Origin{X: t.X, Y: t.Y} }

func (t Tile) String() string {
	return fmt.Sprintf("tile(%d,%d %dx%d)", t.X, t.Y, t.W, t.H)
}

// Tiles partitions a size×size grid into tiles of the given edge length,
// in row-major order. Tiles on the last row and column are truncated
// rather than padded, so every cell is covered exactly once.
func Tiles(size, edge int) []Tile {
	if size <= 0 {
		return nil
	}
	if edge <= 0 {
		edge = DefaultTileEdge
	}
	n := (size + edge - 1) / edge
	tiles := make([]Tile, 0, n*n)
	for y := 0; y < size; y += edge {
		h := min(edge, size-y)
		for x := 0; x < size; x += edge {
			w := min(edge, size-x)
			tiles = append(tiles, Tile{X: x, Y: y, W: w, H: h})
		}
	}
	return tiles
}

// TileError records a failure while processing one tile.
type TileError struct {
	Tile Tile
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Tile, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }
