package room

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"chinitsu-server/internal/agari"
	"chinitsu-server/internal/game"
	"chinitsu-server/internal/shared"
)

// RonGate reports whether claimant may ron on tile. Gates run before the
// scoring oracle is consulted.
type RonGate func(claimant *game.PlayerState, tile game.Tile) bool

// AllowRon never blocks a claim.
func AllowRon(*game.PlayerState, game.Tile) bool { return true }

// OwnDiscardFuriten blocks ron on a tile the claimant has discarded before.
func OwnDiscardFuriten(claimant *game.PlayerState, tile game.Tile) bool {
	for _, d := range claimant.Discards {
		if d.Tile == tile {
			return false
		}
	}
	return true
}

// event is the outcome of one successful action before it is rendered
// per recipient.
type event struct {
	action string
	actor  *game.PlayerState
	index  int
	tile   *game.Tile
	public bool // tile is visible to both seats

	outcome string
	win     *shared.WinInfo
}

type handler func(s *Session, p *game.PlayerState, index int) (*event, error)

var handlers = map[string]handler{
	shared.ActionStart:   (*Session).start,
	shared.ActionDraw:    (*Session).draw,
	shared.ActionDiscard: (*Session).discard,
	shared.ActionRiichi:  (*Session).riichi,
	shared.ActionKan:     (*Session).kan,
	shared.ActionTsumo:   (*Session).tsumo,
	shared.ActionRon:     (*Session).ron,
	shared.ActionPassRon: (*Session).passRon,
}

// Dispatch validates and applies one action. On success it returns one
// result per seated player; on failure the state is untouched and the
// error is a *RuleError, ErrInvariantViolated, or an internal error.
func (s *Session) Dispatch(action string, cardIndex int, playerID string) (map[string]*shared.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corrupt {
		return nil, fmt.Errorf("room %s: %w", s.code, ErrInvariantViolated)
	}
	h, ok := handlers[action]
	if !ok {
		return nil, ruleErr(ReasonUnknownAction, "unknown action %q", action)
	}
	p := s.seat(playerID)
	if p == nil {
		return nil, ruleErr(ReasonUnknownPlayer, "%s is not seated", playerID)
	}
	if action != shared.ActionStart && (s.status != StatusRunning || !s.handActive) {
		return nil, ruleErr(ReasonRoomNotReady, "room is %s", s.status)
	}

	ev, err := h(s, p, cardIndex)
	if err != nil {
		s.log.Debug("action rejected", zap.String("player", playerID), zap.String("action", action), zap.Error(err))
		return nil, err
	}

	if err := game.CheckConservation(s.wall, s.seats...); err != nil {
		s.corrupt = true
		s.handActive = false
		s.status = StatusEnded
		s.log.Error("session corrupted",
			zap.String("player", playerID),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, fmt.Errorf("room %s: %w: %w", s.code, ErrInvariantViolated, err)
	}
	return s.render(ev), nil
}

func (s *Session) render(ev *event) map[string]*shared.Result {
	out := make(map[string]*shared.Result, len(s.seats))
	for _, p := range s.seats {
		r := s.view(p)
		r.PlayerID = ev.actor.ID
		r.Action = ev.action
		r.CardIndex = ev.index
		if ev.tile != nil && (ev.public || p == ev.actor) {
			t := *ev.tile
			r.Card = &t
		}
		r.Outcome = ev.outcome
		r.Win = ev.win
		out[p.ID] = r
	}
	return out
}

func (s *Session) start(p *game.PlayerState, _ int) (*event, error) {
	if len(s.seats) != 2 {
		return nil, ruleErr(ReasonRoomNotReady, "need two players, have %d", len(s.seats))
	}
	if s.handActive {
		return nil, ruleErr(ReasonHandInProgress, "hand already in progress")
	}
	if s.status != StatusRunning && s.status != StatusEnded {
		return nil, ruleErr(ReasonRoomNotReady, "room is %s", s.status)
	}

	wall, err := s.buildWall()
	if err != nil {
		return nil, err
	}
	dealer, guest := s.nextDealer()
	for _, q := range s.seats {
		q.ResetHand()
	}
	dealer.IsDealer = true
	if err := game.Deal(wall, dealer, guest); err != nil {
		return nil, err
	}

	s.wall = wall
	s.dealer = dealer.ID
	s.turn = game.NewTurnState(dealer.ID, guest.ID)
	s.handActive = true
	s.status = StatusRunning
	s.lastOutcome = ""
	s.lastWinner = ""
	s.log.Info("hand started",
		zap.String("dealer", dealer.ID),
		zap.Int("repeat", s.repeat),
		zap.Int("pot", s.pot),
	)
	return &event{action: shared.ActionStart, actor: p, index: -1}, nil
}

func (s *Session) buildWall() (*game.Wall, error) {
	if s.debugCode != 0 && game.HasFixture(s.debugCode) {
		return game.DebugWall(s.debugCode)
	}
	w := game.NewWall()
	w.Shuffle(s.seed())
	return w, nil
}

// nextDealer keeps the dealer after a dealer win or an exhausted hand and
// passes the seat otherwise. The first hand picks at random.
func (s *Session) nextDealer() (dealer, guest *game.PlayerState) {
	prev := s.seat(s.dealer)
	switch {
	case prev == nil:
		dealer = s.seats[s.rng.Intn(len(s.seats))]
		s.repeat = 0
	case s.lastWinner == prev.ID || s.lastOutcome == shared.OutcomeExhausted:
		dealer = prev
		s.repeat++
	default:
		dealer = s.opponent(prev)
		s.repeat = 0
	}
	return dealer, s.opponent(dealer)
}

func (s *Session) draw(p *game.PlayerState, _ int) (*event, error) {
	if err := s.requireTurn(p); err != nil {
		return nil, err
	}
	if s.turn.Number == 1 && p.IsDealer {
		return nil, ruleErr(ReasonIllegalDraw, "dealer starts with a full hand")
	}
	if err := s.requirePhase(game.BeforeDraw); err != nil {
		return nil, err
	}
	if s.wall.Len() == 0 {
		return nil, ruleErr(ReasonInsufficientTiles, "wall is empty")
	}
	tiles, err := s.wall.Draw(1)
	if err != nil {
		return nil, ruleErr(ReasonInsufficientTiles, "%v", err)
	}
	p.Draw(tiles, false)
	s.turn.Advance()
	t := tiles[0]
	return &event{action: shared.ActionDraw, actor: p, index: len(p.Hand) - 1, tile: &t}, nil
}

func (s *Session) discard(p *game.PlayerState, index int) (*event, error) {
	return s.discardTile(p, index, false)
}

func (s *Session) riichi(p *game.PlayerState, index int) (*event, error) {
	return s.discardTile(p, index, true)
}

func (s *Session) discardTile(p *game.PlayerState, index int, declare bool) (*event, error) {
	if err := s.requireTurn(p); err != nil {
		return nil, err
	}
	if err := s.requireIndex(p, index); err != nil {
		return nil, err
	}
	if err := s.requirePhase(game.AfterDraw); err != nil {
		return nil, err
	}
	action := shared.ActionDiscard
	if declare {
		action = shared.ActionRiichi
		if p.Riichi {
			return nil, ruleErr(ReasonAlreadyRiichi, "riichi already declared")
		}
	}

	t, err := p.Discard(index, declare)
	if err != nil {
		return nil, ruleErr(ReasonIndexOutOfRange, "%v", err)
	}
	if declare {
		p.Riichi = true
		p.DoubleRiichi = s.turn.Number <= 2 && s.totalKans() == 0
	}
	s.turn.Advance()
	return &event{action: action, actor: p, index: index, tile: &t, public: true}, nil
}

func (s *Session) kan(p *game.PlayerState, index int) (*event, error) {
	if err := s.requireTurn(p); err != nil {
		return nil, err
	}
	if err := s.requireIndex(p, index); err != nil {
		return nil, err
	}
	if err := s.requirePhase(game.AfterDraw); err != nil {
		return nil, err
	}
	t := p.Hand[index]
	if p.CountOf(t) < game.CopiesPerRank {
		return nil, ruleErr(ReasonIllegalKan, "only %d copies of %d in hand", p.CountOf(t), t)
	}
	if s.wall.Len() == 0 {
		return nil, ruleErr(ReasonInsufficientTiles, "no replacement tile")
	}
	if !p.DeclareKan(t) {
		return nil, ruleErr(ReasonIllegalKan, "kan of %d would empty the hand", t)
	}
	rep, err := s.wall.DrawTail()
	if err != nil {
		// Unreachable after the length check above.
		return nil, fmt.Errorf("replacement draw: %w", err)
	}
	p.Draw([]game.Tile{rep}, true)
	for _, q := range s.seats {
		q.Ippatsu = false
	}
	return &event{action: shared.ActionKan, actor: p, index: index, tile: &t, public: true}, nil
}

func (s *Session) tsumo(p *game.PlayerState, _ int) (*event, error) {
	if err := s.requireTurn(p); err != nil {
		return nil, err
	}
	if err := s.requirePhase(game.AfterDraw); err != nil {
		return nil, err
	}
	if n := s.cardCount(p); n != game.DealerHandSize {
		return nil, ruleErr(ReasonWrongCardCount, "%d tiles, need %d", n, game.DealerHandSize)
	}
	winTile, _ := p.LastDrawn()
	noKans := s.totalKans() == 0
	flags := s.flags(p)
	flags.IsTsumo = true
	flags.IsPostKanDraw = p.PostKanDraw
	flags.IsBlessingDealer = p.IsDealer && s.turn.Number == 1 && noKans
	flags.IsBlessingGuest = !p.IsDealer && s.turn.Number == 2 && noKans

	return s.claim(p, s.opponent(p), p.HandCopy(), winTile, flags, "tsumo")
}

func (s *Session) ron(p *game.PlayerState, _ int) (*event, error) {
	if s.turn.Current == p.ID {
		return nil, ruleErr(ReasonNotYourTurn, "cannot ron your own discard")
	}
	if err := s.requirePhase(game.AfterDiscard); err != nil {
		return nil, err
	}
	if n := s.cardCount(p); n != game.GuestHandSize {
		return nil, ruleErr(ReasonWrongCardCount, "%d tiles, need %d", n, game.GuestHandSize)
	}
	loser := s.opponent(p)
	last, ok := loser.LastDiscard()
	if !ok {
		return nil, ruleErr(ReasonIllegalPhase, "nothing to claim")
	}
	if !s.gate(p, last.Tile) {
		p.Furiten = true
		return nil, ruleErr(ReasonFuriten, "%d is in your own discards", last.Tile)
	}
	flags := s.flags(p)
	flags.IsRenhou = !p.IsDealer && s.turn.Number == 1

	hand := append(p.HandCopy(), last.Tile)
	return s.claim(p, loser, hand, last.Tile, flags, "ron")
}

func (s *Session) passRon(p *game.PlayerState, _ int) (*event, error) {
	if s.turn.Current == p.ID {
		return nil, ruleErr(ReasonNotYourTurn, "cannot pass on your own discard")
	}
	if err := s.requirePhase(game.AfterDiscard); err != nil {
		return nil, err
	}
	discarder := s.opponent(p)
	if last, ok := discarder.LastDiscard(); ok && last.Riichi {
		discarder.Score -= s.rules.RiichiStake
		s.pot++
	}

	ev := &event{action: shared.ActionPassRon, actor: p, index: -1}
	if s.wall.Len() == 0 {
		s.conclude(shared.OutcomeExhausted, "")
		ev.outcome = shared.OutcomeExhausted
		return ev, nil
	}
	s.turn.Advance()
	return ev, nil
}

// claim consults the judge and settles the hand either way.
func (s *Session) claim(p, loser *game.PlayerState, hand []game.Tile, winTile game.Tile, flags agari.Flags, agariKind string) (*event, error) {
	action := shared.ActionTsumo
	if agariKind == "ron" {
		action = shared.ActionRon
	}
	v, err := s.judge.Evaluate(agari.Request{
		Hand:    hand,
		Melds:   p.MeldsCopy(),
		WinTile: winTile,
		Flags:   flags,
	})
	if err != nil && !errors.Is(err, agari.ErrNoValidHand) {
		return nil, fmt.Errorf("evaluate %s: %w", agariKind, err)
	}

	ev := &event{action: action, actor: p, index: -1, tile: &winTile, public: true}
	if err != nil || v.Point <= 0 {
		p.Score -= s.rules.NoWinPenalty
		loser.Score += s.rules.NoWinPenalty
		s.conclude(shared.OutcomeFailedClaim, "")
		ev.outcome = shared.OutcomeFailedClaim
		s.log.Info("failed claim", zap.String("player", p.ID), zap.String("agari", agariKind))
		return ev, nil
	}

	pot := s.pot * s.rules.RiichiStake
	loser.Score -= v.Point
	p.Score += v.Point + pot
	s.pot = 0
	s.conclude(shared.OutcomeWin, p.ID)

	ev.outcome = shared.OutcomeWin
	ev.win = &shared.WinInfo{
		Agari:  agariKind,
		Winner: p.ID,
		Loser:  loser.ID,
		Han:    v.Han,
		Fu:     v.Fu,
		Point:  v.Point,
		Pot:    pot,
		Yaku:   v.Yaku,
		Hand:   hand,
		Melds:  p.MeldsCopy(),
	}
	s.log.Info("hand won",
		zap.String("player", p.ID),
		zap.String("agari", agariKind),
		zap.Int("han", v.Han),
		zap.Int("point", v.Point),
	)
	return ev, nil
}

func (s *Session) conclude(outcome, winner string) {
	s.handActive = false
	s.status = StatusEnded
	s.lastOutcome = outcome
	s.lastWinner = winner
}

func (s *Session) flags(p *game.PlayerState) agari.Flags {
	return agari.Flags{
		IsRiichi:       p.Riichi,
		IsIppatsu:      p.Ippatsu,
		IsLastTileWin:  s.wall.Len() == 0,
		IsDoubleRiichi: p.DoubleRiichi,
		IsDealer:       p.IsDealer,
		PotCount:       s.pot,
		RepeatCount:    s.repeat,
	}
}

func (s *Session) requireTurn(p *game.PlayerState) error {
	if s.turn.Current != p.ID {
		return ruleErr(ReasonNotYourTurn, "it is %s's turn", s.turn.Current)
	}
	return nil
}

func (s *Session) requirePhase(want game.Phase) error {
	if s.turn.Phase != want {
		return ruleErr(ReasonIllegalPhase, "phase is %s, need %s", s.turn.Phase, want)
	}
	return nil
}

// requireIndex bounds index by the hand length, or by the hand length
// minus the kan count under the legacy rule.
func (s *Session) requireIndex(p *game.PlayerState, index int) error {
	bound := len(p.Hand)
	if s.rules.LegacyHandBounds {
		bound -= p.KanCount
	}
	if index < 0 || index >= bound {
		return ruleErr(ReasonIndexOutOfRange, "index %d outside [0, %d)", index, bound)
	}
	return nil
}

// cardCount counts a kan as one set of three; the legacy rule counts all
// four tiles.
func (s *Session) cardCount(p *game.PlayerState) int {
	perMeld := 3
	if s.rules.LegacyHandBounds {
		perMeld = game.CopiesPerRank
	}
	return len(p.Hand) + perMeld*len(p.Melds)
}

func (s *Session) totalKans() int {
	n := 0
	for _, p := range s.seats {
		n += p.KanCount
	}
	return n
}
