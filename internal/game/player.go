package game

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("card index out of range")

// PlayerState is one seat's bookkeeping for the current hand plus the
// score carried across hands.
//
// Flag triggers:
//   - Riichi, DoubleRiichi: set by a riichi discard, cleared by ResetHand.
//   - Ippatsu: set by a riichi discard, cleared by any later discard of the
//     same player and by any kan from either player.
//   - PostKanDraw: set by the replacement draw after a kan, cleared by the
//     next ordinary draw.
//   - Furiten: set by the ron gate when it rejects a claim, cleared by ResetHand.
type PlayerState struct {
	ID       string    `json:"id"`
	Score    int       `json:"score"`
	IsDealer bool      `json:"isDealer"`
	Active   bool      `json:"active"`
	Hand     []Tile    `json:"-"`
	Discards []Discard `json:"discards"`
	Melds    []Meld    `json:"melds"`

	Riichi       bool `json:"riichi"`
	DoubleRiichi bool `json:"doubleRiichi"`
	Ippatsu      bool `json:"ippatsu"`
	PostKanDraw  bool `json:"-"`
	Furiten      bool `json:"-"`
	KanCount     int  `json:"kanCount"`
}

func NewPlayerState(id string, score int) *PlayerState {
	return &PlayerState{ID: id, Score: score, Active: true}
}

// ResetHand clears everything but identity, score and connection state.
func (p *PlayerState) ResetHand() {
	p.IsDealer = false
	p.Hand = nil
	p.Discards = nil
	p.Melds = nil
	p.Riichi = false
	p.DoubleRiichi = false
	p.Ippatsu = false
	p.PostKanDraw = false
	p.Furiten = false
	p.KanCount = 0
}

func (p *PlayerState) Draw(tiles []Tile, isPostKan bool) {
	p.Hand = append(p.Hand, tiles...)
	p.PostKanDraw = isPostKan
}

// Discard moves the tile at index from the hand to the discard pile.
func (p *PlayerState) Discard(index int, declareRiichi bool) (Tile, error) {
	if index < 0 || index >= len(p.Hand) {
		return 0, fmt.Errorf("discard index %d with %d tiles: %w", index, len(p.Hand), ErrIndexOutOfRange)
	}
	t := p.Hand[index]
	p.Hand = append(p.Hand[:index:index], p.Hand[index+1:]...)
	p.Discards = append(p.Discards, Discard{Tile: t, Riichi: declareRiichi})
	p.Ippatsu = declareRiichi
	return t, nil
}

// DeclareKan moves all four copies of tile into a new meld. The hand must
// keep at least one tile afterwards.
func (p *PlayerState) DeclareKan(tile Tile) bool {
	if len(p.Hand) < 5 || p.CountOf(tile) != CopiesPerRank {
		return false
	}
	rest := make([]Tile, 0, len(p.Hand)-CopiesPerRank)
	for _, t := range p.Hand {
		if t != tile {
			rest = append(rest, t)
		}
	}
	p.Hand = rest
	p.Melds = append(p.Melds, Meld{tile, tile, tile, tile})
	p.KanCount++
	return true
}

func (p *PlayerState) CountOf(tile Tile) int {
	n := 0
	for _, t := range p.Hand {
		if t == tile {
			n++
		}
	}
	return n
}

// LastDiscard returns the most recent discard, if any.
func (p *PlayerState) LastDiscard() (Discard, bool) {
	if len(p.Discards) == 0 {
		return Discard{}, false
	}
	return p.Discards[len(p.Discards)-1], true
}

// LastDrawn returns the tile at the end of the hand.
func (p *PlayerState) LastDrawn() (Tile, bool) {
	if len(p.Hand) == 0 {
		return 0, false
	}
	return p.Hand[len(p.Hand)-1], true
}

// TileCount is this seat's share of the 36-tile conservation sum.
func (p *PlayerState) TileCount() int {
	return len(p.Hand) + len(p.Discards) + CopiesPerRank*len(p.Melds)
}

func (p *PlayerState) HandCopy() []Tile {
	return append([]Tile(nil), p.Hand...)
}

func (p *PlayerState) MeldsCopy() []Meld {
	return append([]Meld(nil), p.Melds...)
}

func (p *PlayerState) DiscardsCopy() []Discard {
	return append([]Discard(nil), p.Discards...)
}
