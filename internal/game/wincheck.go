package game

import (
	"errors"
	"fmt"
)

var ErrTileCountMismatch = errors.New("tile count mismatch")

// CheckConservation verifies that every tile is accounted for exactly once
// across the wall, hands, discard piles and melds.
func CheckConservation(w *Wall, players ...*PlayerState) error {
	total := w.Len()
	for _, p := range players {
		total += p.TileCount()
	}
	if total != TotalTiles {
		return fmt.Errorf("%d tiles accounted, want %d: %w", total, TotalTiles, ErrTileCountMismatch)
	}
	return nil
}
