// Package agari defines the scoring oracle the session consults on win
// claims. The session treats a Judge as a black box.
package agari

import (
	"errors"

	"chinitsu-server/internal/game"
)

var ErrNoValidHand = errors.New("no valid hand")

// Flags are the situational conditions of a win claim.
type Flags struct {
	IsTsumo          bool `json:"isTsumo"`
	IsRiichi         bool `json:"isRiichi"`
	IsIppatsu        bool `json:"isIppatsu"`
	IsPostKanDraw    bool `json:"isPostKanDraw"`
	IsLastTileWin    bool `json:"isLastTileWin"`
	IsDoubleRiichi   bool `json:"isDoubleRiichi"`
	IsBlessingDealer bool `json:"isBlessingDealer"` // tenhou
	IsBlessingGuest  bool `json:"isBlessingGuest"`  // chiihou
	IsRenhou         bool `json:"isRenhou"`
	IsOpenRiichi     bool `json:"isOpenRiichi"`
	IsDealer         bool `json:"isDealer"`
	PotCount         int  `json:"potCount"`
	RepeatCount      int  `json:"repeatCount"`
}

// Request is one win claim. Hand holds the concealed tiles including the
// winning tile; Melds are the declared kans.
type Request struct {
	Hand    []game.Tile
	Melds   []game.Meld
	WinTile game.Tile
	Flags   Flags
}

type Payment struct {
	Main       int `json:"main"`
	Additional int `json:"additional"`
}

type Verdict struct {
	Han     int      `json:"han"`
	Fu      int      `json:"fu"`
	Point   int      `json:"point"`
	Payment Payment  `json:"payment"`
	Yaku    []string `json:"yaku"`
}

// Judge evaluates a claim. It returns ErrNoValidHand when the tiles do not
// form a scoring hand.
type Judge interface {
	Evaluate(req Request) (Verdict, error)
}

// JudgeFunc adapts a plain function to Judge.
type JudgeFunc func(req Request) (Verdict, error)

func (f JudgeFunc) Evaluate(req Request) (Verdict, error) {
	return f(req)
}
