package game

import "fmt"

const (
	MinRank       = 1
	MaxRank       = 9
	CopiesPerRank = 4
	TotalTiles    = (MaxRank - MinRank + 1) * CopiesPerRank // 36

	DealerHandSize = 14
	GuestHandSize  = 13
)

// Tile is a single-suit tile identified only by its rank (1..9).
type Tile int

func (t Tile) Valid() bool {
	return t >= MinRank && t <= MaxRank
}

// Meld is a declared kan: four identical tiles.
type Meld [4]Tile

// Discard is one entry in a player's discard pile.
type Discard struct {
	Tile   Tile `json:"tile"`
	Riichi bool `json:"riichi"` // discarded as the riichi declaration tile
}

// Phase is the step within a single player's turn.
type Phase int

const (
	BeforeDraw Phase = iota
	AfterDraw
	AfterDiscard
)

func (p Phase) String() string {
	switch p {
	case BeforeDraw:
		return "before_draw"
	case AfterDraw:
		return "after_draw"
	case AfterDiscard:
		return "after_discard"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for _, q := range []Phase{BeforeDraw, AfterDraw, AfterDiscard} {
		if q.String() == string(b) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Counts returns a rank histogram indexed by rank (index 0 unused).
func Counts(tiles []Tile) [MaxRank + 1]int {
	var c [MaxRank + 1]int
	for _, t := range tiles {
		if t.Valid() {
			c[t]++
		}
	}
	return c
}
