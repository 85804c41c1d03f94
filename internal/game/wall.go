package game

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInsufficientTiles = errors.New("insufficient tiles in wall")

// Wall is the face-down tile stock. Ordinary draws come from the front,
// replacement draws after a kan come from the back.
type Wall struct {
	tiles []Tile
}

// NewWall returns the full sorted 36-tile multiset.
func NewWall() *Wall {
	tiles := make([]Tile, 0, TotalTiles)
	for r := MinRank; r <= MaxRank; r++ {
		for i := 0; i < CopiesPerRank; i++ {
			tiles = append(tiles, Tile(r))
		}
	}
	return &Wall{tiles: tiles}
}

// WallFromTiles builds a wall with a fixed order. Used by debug fixtures and tests.
func WallFromTiles(tiles []Tile) *Wall {
	return &Wall{tiles: append([]Tile(nil), tiles...)}
}

// Shuffle permutes the wall with a generator freshly seeded from seed.
func (w *Wall) Shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(w.tiles), func(i, j int) {
		w.tiles[i], w.tiles[j] = w.tiles[j], w.tiles[i]
	})
}

func (w *Wall) Len() int {
	return len(w.tiles)
}

// Draw removes and returns the first n tiles.
func (w *Wall) Draw(n int) ([]Tile, error) {
	if n < 0 || n > len(w.tiles) {
		return nil, fmt.Errorf("draw %d of %d: %w", n, len(w.tiles), ErrInsufficientTiles)
	}
	out := append([]Tile(nil), w.tiles[:n]...)
	w.tiles = w.tiles[n:]
	return out, nil
}

// DrawTail removes and returns the last tile.
func (w *Wall) DrawTail() (Tile, error) {
	if len(w.tiles) == 0 {
		return 0, fmt.Errorf("tail draw: %w", ErrInsufficientTiles)
	}
	last := w.tiles[len(w.tiles)-1]
	w.tiles = w.tiles[:len(w.tiles)-1]
	return last, nil
}

// Tiles returns a copy of the remaining tiles in draw order.
func (w *Wall) Tiles() []Tile {
	return append([]Tile(nil), w.tiles...)
}
