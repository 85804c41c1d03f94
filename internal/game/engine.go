package game

import (
	"fmt"
	"strings"
)

// Deal hands out the opening tiles: three rounds of four each, then two
// for the dealer and one for the guest.
func Deal(w *Wall, dealer, guest *PlayerState) error {
	steps := []struct {
		p *PlayerState
		n int
	}{
		{dealer, 4}, {guest, 4},
		{dealer, 4}, {guest, 4},
		{dealer, 4}, {guest, 4},
		{dealer, 2}, {guest, 1},
	}
	for _, s := range steps {
		tiles, err := w.Draw(s.n)
		if err != nil {
			return fmt.Errorf("deal: %w", err)
		}
		s.p.Draw(tiles, false)
	}
	return nil
}

// Fixture is a pre-arranged deal. Rest lists the undealt tiles in wall
// order, so its last tile is the first replacement draw after a kan.
type Fixture struct {
	Dealer string
	Guest  string
	Rest   string
}

var fixtures = map[int]Fixture{
	// Dealer holds a complete hand on the deal; guest waits on 9.
	114514: {Dealer: "11123455678999", Guest: "2233446677889", Rest: "123455678"},
	// Dealer can kan 1s and complete the hand on the replacement 8.
	4444: {Dealer: "11112345678999", Guest: "2233445566778", Rest: "923456788"},
}

// HasFixture reports whether code names a registered debug wall.
func HasFixture(code int) bool {
	_, ok := fixtures[code]
	return ok
}

// DebugWall builds the wall that makes Deal produce the fixture's hands.
func DebugWall(code int) (*Wall, error) {
	fx, ok := fixtures[code]
	if !ok {
		return nil, fmt.Errorf("unknown debug code %d", code)
	}
	dealer, err := parseTiles(fx.Dealer)
	if err != nil {
		return nil, err
	}
	guest, err := parseTiles(fx.Guest)
	if err != nil {
		return nil, err
	}
	rest, err := parseTiles(fx.Rest)
	if err != nil {
		return nil, err
	}
	if len(dealer) != DealerHandSize || len(guest) != GuestHandSize {
		return nil, fmt.Errorf("debug code %d: hand sizes %d/%d", code, len(dealer), len(guest))
	}

	tiles := make([]Tile, 0, TotalTiles)
	for i := 0; i < 3; i++ {
		tiles = append(tiles, dealer[i*4:i*4+4]...)
		tiles = append(tiles, guest[i*4:i*4+4]...)
	}
	tiles = append(tiles, dealer[12:14]...)
	tiles = append(tiles, guest[12])
	tiles = append(tiles, rest...)

	if err := checkMultiset(tiles); err != nil {
		return nil, fmt.Errorf("debug code %d: %w", code, err)
	}
	return WallFromTiles(tiles), nil
}

func parseTiles(s string) ([]Tile, error) {
	out := make([]Tile, 0, len(s))
	for _, r := range strings.TrimSpace(s) {
		t := Tile(r - '0')
		if !t.Valid() {
			return nil, fmt.Errorf("invalid tile %q", r)
		}
		out = append(out, t)
	}
	return out, nil
}

func checkMultiset(tiles []Tile) error {
	if len(tiles) != TotalTiles {
		return fmt.Errorf("%d tiles, want %d", len(tiles), TotalTiles)
	}
	c := Counts(tiles)
	for r := MinRank; r <= MaxRank; r++ {
		if c[r] != CopiesPerRank {
			return fmt.Errorf("rank %d appears %d times", r, c[r])
		}
	}
	return nil
}
