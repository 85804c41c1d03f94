package agari

import (
	"fmt"

	"chinitsu-server/internal/game"
)

// Options are the house rule toggles a judge is built with.
type Options struct {
	Daisharin       bool // seven pairs 2..8 counts as yakuman
	RenhouAsYakuman bool
}

// ShapeJudge accepts any hand that splits into sets and a pair (or seven
// pairs) and values it from the situational flags alone. Every hand is a
// closed single-suit hand, so the flush is always counted. It does no fu
// calculation; a full scoring engine can replace it through Judge.
type ShapeJudge struct {
	opts Options
}

func NewShapeJudge(opts Options) *ShapeJudge {
	return &ShapeJudge{opts: opts}
}

const (
	repeatBonus = 300

	limitMangan    = 8000
	limitHaneman   = 12000
	limitBaiman    = 16000
	limitSanbaiman = 24000
	limitYakuman   = 32000
)

func (j *ShapeJudge) Evaluate(req Request) (Verdict, error) {
	want := 14 - 3*len(req.Melds)
	if len(req.Hand) != want {
		return Verdict{}, fmt.Errorf("%d concealed tiles with %d kans: %w", len(req.Hand), len(req.Melds), ErrNoValidHand)
	}
	counts := game.Counts(req.Hand)

	sevenPairs := len(req.Melds) == 0 && isSevenPairs(counts)
	if !sevenPairs && !isStandard(counts, 4-len(req.Melds)) {
		return Verdict{}, ErrNoValidHand
	}

	f := req.Flags
	var yakuman []string
	if f.IsBlessingDealer && f.IsTsumo {
		yakuman = append(yakuman, "tenhou")
	}
	if f.IsBlessingGuest && f.IsTsumo {
		yakuman = append(yakuman, "chiihou")
	}
	if f.IsRenhou && !f.IsTsumo && j.opts.RenhouAsYakuman {
		yakuman = append(yakuman, "renhou")
	}
	if sevenPairs && j.opts.Daisharin && isDaisharin(counts) {
		yakuman = append(yakuman, "daisharin")
	}

	v := Verdict{Fu: 30}
	if sevenPairs {
		v.Fu = 25
	}

	var base int
	if len(yakuman) > 0 {
		v.Han = 13 * len(yakuman)
		v.Yaku = yakuman
		base = limitYakuman * len(yakuman)
	} else {
		add := func(name string, han int) {
			v.Yaku = append(v.Yaku, name)
			v.Han += han
		}
		add("chinitsu", 6)
		if sevenPairs {
			add("chiitoitsu", 2)
		}
		switch {
		case f.IsDoubleRiichi:
			add("double_riichi", 2)
		case f.IsRiichi:
			add("riichi", 1)
		}
		if f.IsOpenRiichi {
			add("open_riichi", 1)
		}
		if f.IsIppatsu {
			add("ippatsu", 1)
		}
		if f.IsTsumo {
			add("menzen_tsumo", 1)
		}
		if f.IsTsumo && f.IsPostKanDraw {
			add("rinshan_kaihou", 1)
		}
		if f.IsLastTileWin {
			if f.IsTsumo {
				add("haitei", 1)
			} else {
				add("houtei", 1)
			}
		}
		if f.IsRenhou && !f.IsTsumo {
			add("renhou", 5)
		}
		base = limitFor(v.Han)
	}

	if f.IsDealer {
		base = base * 3 / 2
	}
	v.Payment = Payment{Main: base, Additional: f.RepeatCount * repeatBonus}
	v.Point = v.Payment.Main + v.Payment.Additional
	return v, nil
}

func limitFor(han int) int {
	switch {
	case han >= 13:
		return limitYakuman
	case han >= 11:
		return limitSanbaiman
	case han >= 8:
		return limitBaiman
	case han >= 6:
		return limitHaneman
	default:
		return limitMangan
	}
}

func isSevenPairs(c [game.MaxRank + 1]int) bool {
	pairs := 0
	for r := game.MinRank; r <= game.MaxRank; r++ {
		switch c[r] {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

func isDaisharin(c [game.MaxRank + 1]int) bool {
	for r := 2; r <= 8; r++ {
		if c[r] != 2 {
			return false
		}
	}
	return true
}

// isStandard tries every pair, then peels triplets and runs from the
// lowest remaining rank.
func isStandard(c [game.MaxRank + 1]int, sets int) bool {
	if sets < 0 {
		return false
	}
	for r := game.MinRank; r <= game.MaxRank; r++ {
		if c[r] < 2 {
			continue
		}
		c[r] -= 2
		if peel(&c, sets) {
			return true
		}
		c[r] += 2
	}
	return false
}

func peel(c *[game.MaxRank + 1]int, sets int) bool {
	r := game.MinRank
	for r <= game.MaxRank && c[r] == 0 {
		r++
	}
	if r > game.MaxRank {
		return sets == 0
	}
	if sets == 0 {
		return false
	}
	if c[r] >= 3 {
		c[r] -= 3
		ok := peel(c, sets-1)
		c[r] += 3
		if ok {
			return true
		}
	}
	if r+2 <= game.MaxRank && c[r+1] > 0 && c[r+2] > 0 {
		c[r]--
		c[r+1]--
		c[r+2]--
		ok := peel(c, sets-1)
		c[r]++
		c[r+1]++
		c[r+2]++
		if ok {
			return true
		}
	}
	return false
}
