package room

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"chinitsu-server/internal/agari"
	"chinitsu-server/internal/config"
	"chinitsu-server/internal/game"
	"chinitsu-server/internal/shared"
)

const (
	fixtureTenhou  = 114514
	fixtureRinshan = 4444
)

func newSession(t *testing.T, rules config.Rules, debugCode int) *Session {
	t.Helper()
	s := NewSession("T", Options{
		Rules:     rules,
		DebugCode: debugCode,
		Seed:      func() int64 { return 7 },
		Logger:    zaptest.NewLogger(t),
	})
	for _, id := range []string{"a", "b"} {
		if _, err := s.Join(id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return s
}

// startedSession returns a session with a hand dealt, plus the dealer and
// guest ids.
func startedSession(t *testing.T, rules config.Rules, debugCode int) (*Session, string, string) {
	t.Helper()
	s := newSession(t, rules, debugCode)
	mustDispatch(t, s, shared.ActionStart, -1, "a")
	return s, s.dealer, s.turn.Other(s.dealer)
}

func mustDispatch(t *testing.T, s *Session, action string, index int, player string) map[string]*shared.Result {
	t.Helper()
	res, err := s.Dispatch(action, index, player)
	if err != nil {
		t.Fatalf("%s by %s (index %d): %v", action, player, index, err)
	}
	return res
}

func wantReason(t *testing.T, err error, want Reason) {
	t.Helper()
	got, ok := ReasonOf(err)
	if !ok {
		t.Fatalf("error %v carries no reason, want %s", err, want)
	}
	if got != want {
		t.Fatalf("reason = %s, want %s (%v)", got, want, err)
	}
}

func indexOf(t *testing.T, s *Session, player string, tile game.Tile) int {
	t.Helper()
	i := game.IndexOf(s.seat(player).Hand, tile)
	if i < 0 {
		t.Fatalf("%s holds no %d: %v", player, tile, s.seat(player).Hand)
	}
	return i
}

func TestJoinLifecycle(t *testing.T) {
	s := NewSession("J", Options{Logger: zaptest.NewLogger(t)})

	if kind, err := s.Join("a"); err != nil || kind != JoinSeated {
		t.Fatalf("join a = %v, %v", kind, err)
	}
	if s.Status() != StatusWaiting {
		t.Fatalf("status = %s, want waiting", s.Status())
	}
	if _, err := s.Join("a"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("rejoin a = %v, want ErrDuplicateIdentity", err)
	}
	if _, err := s.Join("b"); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if s.Status() != StatusRunning {
		t.Fatalf("status = %s, want running", s.Status())
	}
	if _, err := s.Join("c"); !errors.Is(err, ErrSessionFull) {
		t.Fatalf("join c = %v, want ErrSessionFull", err)
	}

	s.Leave("a")
	if s.Status() != StatusReconnecting {
		t.Fatalf("status = %s, want reconnecting", s.Status())
	}
	if _, err := s.Join("c"); !errors.Is(err, ErrSeatReserved) {
		t.Fatalf("join c = %v, want ErrSeatReserved", err)
	}
	if _, err := s.Join("b"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("join b = %v, want ErrDuplicateIdentity", err)
	}
	if kind, err := s.Join("a"); err != nil || kind != JoinReconnected {
		t.Fatalf("rejoin a = %v, %v", kind, err)
	}
	if s.Status() != StatusRunning {
		t.Fatalf("status = %s, want running", s.Status())
	}
}

func TestLeaveAfterHandFreesSeat(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)
	mustDispatch(t, s, shared.ActionTsumo, -1, dealer)
	if s.Status() != StatusEnded {
		t.Fatalf("status = %s, want ended", s.Status())
	}

	s.Leave(guest)
	if got := s.Players(); len(got) != 1 || got[0] != dealer {
		t.Fatalf("players = %v", got)
	}
	if s.Status() != StatusWaiting {
		t.Fatalf("status = %s, want waiting", s.Status())
	}
	if _, err := s.Join("c"); err != nil {
		t.Fatalf("new player after free seat: %v", err)
	}
}

func TestDispatchDuringReconnectIsRejected(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), 0)
	s.Leave(guest)

	_, err := s.Dispatch(shared.ActionDiscard, 0, dealer)
	wantReason(t, err, ReasonRoomNotReady)

	if _, err := s.Join(guest); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
}

func TestStartDealsHands(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), 0)

	if n := len(s.seat(dealer).Hand); n != game.DealerHandSize {
		t.Fatalf("dealer holds %d", n)
	}
	if n := len(s.seat(guest).Hand); n != game.GuestHandSize {
		t.Fatalf("guest holds %d", n)
	}
	if s.wall.Len() != game.TotalTiles-game.DealerHandSize-game.GuestHandSize {
		t.Fatalf("wall has %d", s.wall.Len())
	}
	if s.turn.Current != dealer || s.turn.Number != 1 || s.turn.Phase != game.AfterDraw {
		t.Fatalf("turn = %+v", s.turn)
	}
	if !s.seat(dealer).IsDealer || s.seat(guest).IsDealer {
		t.Fatalf("dealer flags wrong")
	}
}

func TestRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, s *Session, dealer, guest string)
		action string
		index  int
		actor  func(dealer, guest string) string
		want   Reason
	}{
		{name: "unknown action", action: "chi", actor: dealerOf, want: ReasonUnknownAction},
		{name: "unknown player", action: shared.ActionDraw, actor: func(string, string) string { return "zed" }, want: ReasonUnknownPlayer},
		{name: "start twice", action: shared.ActionStart, actor: guestOf, want: ReasonHandInProgress},
		{name: "dealer draws on turn one", action: shared.ActionDraw, actor: dealerOf, want: ReasonIllegalDraw},
		{name: "guest draws out of turn", action: shared.ActionDraw, actor: guestOf, want: ReasonNotYourTurn},
		{name: "guest discards out of turn", action: shared.ActionDiscard, actor: guestOf, want: ReasonNotYourTurn},
		{name: "index past hand", action: shared.ActionDiscard, index: 14, actor: dealerOf, want: ReasonIndexOutOfRange},
		{name: "negative index", action: shared.ActionRiichi, index: -1, actor: dealerOf, want: ReasonIndexOutOfRange},
		{name: "kan on three copies", action: shared.ActionKan, index: 0, actor: dealerOf, want: ReasonIllegalKan},
		{name: "ron on own turn", action: shared.ActionRon, actor: dealerOf, want: ReasonNotYourTurn},
		{name: "ron before discard", action: shared.ActionRon, actor: guestOf, want: ReasonIllegalPhase},
		{name: "pass before discard", action: shared.ActionPassRon, actor: guestOf, want: ReasonIllegalPhase},
		{
			name: "discard twice",
			setup: func(t *testing.T, s *Session, dealer, _ string) {
				mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
			},
			action: shared.ActionDiscard, actor: dealerOf, want: ReasonIllegalPhase,
		},
		{
			name: "tsumo after discard",
			setup: func(t *testing.T, s *Session, dealer, _ string) {
				mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
			},
			action: shared.ActionTsumo, actor: dealerOf, want: ReasonIllegalPhase,
		},
		{
			name: "discard before draw",
			setup: func(t *testing.T, s *Session, dealer, guest string) {
				mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
				mustDispatch(t, s, shared.ActionPassRon, -1, guest)
			},
			action: shared.ActionDiscard, actor: guestOf, want: ReasonIllegalPhase,
		},
		{
			name: "riichi twice",
			setup: func(t *testing.T, s *Session, dealer, guest string) {
				mustDispatch(t, s, shared.ActionRiichi, 0, dealer)
				mustDispatch(t, s, shared.ActionPassRon, -1, guest)
				mustDispatch(t, s, shared.ActionDraw, -1, guest)
				mustDispatch(t, s, shared.ActionDiscard, 13, guest)
				mustDispatch(t, s, shared.ActionPassRon, -1, dealer)
				mustDispatch(t, s, shared.ActionDraw, -1, dealer)
			},
			action: shared.ActionRiichi, actor: dealerOf, want: ReasonAlreadyRiichi,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)
			if tt.setup != nil {
				tt.setup(t, s, dealer, guest)
			}
			before := s.seat(dealer).HandCopy()
			wallBefore := s.wall.Len()

			_, err := s.Dispatch(tt.action, tt.index, tt.actor(dealer, guest))
			wantReason(t, err, tt.want)

			if got := s.seat(dealer).Hand; len(got) != len(before) {
				t.Fatalf("dealer hand changed on failure: %v -> %v", before, got)
			}
			if s.wall.Len() != wallBefore {
				t.Fatalf("wall changed on failure")
			}
		})
	}
}

func dealerOf(dealer, _ string) string { return dealer }
func guestOf(_, guest string) string   { return guest }

func TestActionsBeforeStart(t *testing.T) {
	s := NewSession("W", Options{Logger: zaptest.NewLogger(t)})
	if _, err := s.Join("a"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Dispatch(shared.ActionStart, -1, "a")
	wantReason(t, err, ReasonRoomNotReady)

	if _, err := s.Join("b"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Dispatch(shared.ActionDraw, -1, "a")
	wantReason(t, err, ReasonRoomNotReady)
}

func TestTurnCycle(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), 0)

	res := mustDispatch(t, s, shared.ActionDiscard, 3, dealer)
	if s.turn.Phase != game.AfterDiscard || s.turn.Current != dealer || s.turn.Number != 1 {
		t.Fatalf("after discard turn = %+v", s.turn)
	}
	if res[guest].Card == nil || res[dealer].Card == nil || *res[guest].Card != *res[dealer].Card {
		t.Fatalf("discarded tile should be public")
	}
	if len(res[guest].Discards[dealer]) != 1 {
		t.Fatalf("guest does not see dealer's discard")
	}

	mustDispatch(t, s, shared.ActionPassRon, -1, guest)
	if s.turn.Phase != game.BeforeDraw || s.turn.Current != guest || s.turn.Number != 2 {
		t.Fatalf("after pass turn = %+v", s.turn)
	}

	res = mustDispatch(t, s, shared.ActionDraw, -1, guest)
	if res[guest].Card == nil {
		t.Fatalf("drawer does not see the drawn tile")
	}
	if res[dealer].Card != nil {
		t.Fatalf("opponent sees the drawn tile")
	}
	if len(res[guest].Hand) != 14 || len(res[dealer].Hand) != 13 {
		t.Fatalf("hand sizes %d/%d", len(res[guest].Hand), len(res[dealer].Hand))
	}
	if res[guest].WallCount != game.TotalTiles-27-1 {
		t.Fatalf("wall count = %d", res[guest].WallCount)
	}
}

func TestTenhou(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)

	res := mustDispatch(t, s, shared.ActionTsumo, -1, dealer)
	win := res[guest].Win
	if res[guest].Outcome != shared.OutcomeWin || win == nil {
		t.Fatalf("outcome = %q", res[guest].Outcome)
	}
	if win.Winner != dealer || win.Agari != "tsumo" || !contains(win.Yaku, "tenhou") {
		t.Fatalf("win = %+v", win)
	}
	if len(win.Hand) != 14 {
		t.Fatalf("winner's hand not revealed: %v", win.Hand)
	}
	if s.seat(dealer).Score != 25000+win.Point || s.seat(guest).Score != 25000-win.Point {
		t.Fatalf("scores %d/%d after %d", s.seat(dealer).Score, s.seat(guest).Score, win.Point)
	}
	if s.Status() != StatusEnded || s.HandActive() {
		t.Fatalf("hand did not conclude")
	}

	// Dealer won, so the seat repeats.
	mustDispatch(t, s, shared.ActionStart, -1, guest)
	if s.dealer != dealer || s.repeat != 1 {
		t.Fatalf("dealer %s repeat %d", s.dealer, s.repeat)
	}
}

func TestRenhouRon(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)

	mustDispatch(t, s, shared.ActionDiscard, indexOf(t, s, dealer, 9), dealer)
	res := mustDispatch(t, s, shared.ActionRon, -1, guest)

	win := res[dealer].Win
	if win == nil || win.Winner != guest || win.Loser != dealer || win.Agari != "ron" {
		t.Fatalf("win = %+v", win)
	}
	if !contains(win.Yaku, "renhou") {
		t.Fatalf("yaku = %v", win.Yaku)
	}
	if len(win.Hand) != 14 || win.Hand[len(win.Hand)-1] != 9 {
		t.Fatalf("hand = %v", win.Hand)
	}
	if s.seat(guest).Score != 25000+win.Point {
		t.Fatalf("guest score %d", s.seat(guest).Score)
	}

	// Guest won, so the dealer seat passes.
	mustDispatch(t, s, shared.ActionStart, -1, dealer)
	if s.dealer != guest || s.repeat != 0 {
		t.Fatalf("dealer %s repeat %d", s.dealer, s.repeat)
	}
}

func TestKanAndRinshan(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureRinshan)

	snap, err := s.Snapshot(dealer)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.KanOptions) != 1 || snap.KanOptions[0] != 1 {
		t.Fatalf("kan options = %v", snap.KanOptions)
	}

	res := mustDispatch(t, s, shared.ActionKan, 0, dealer)
	p := s.seat(dealer)
	if len(p.Melds) != 1 || p.KanCount != 1 || len(p.Hand) != 11 {
		t.Fatalf("after kan hand=%v melds=%v", p.Hand, p.Melds)
	}
	if !p.PostKanDraw || s.turn.Phase != game.AfterDraw {
		t.Fatalf("post-kan state wrong: %+v", s.turn)
	}
	if len(res[guest].Melds[dealer]) != 1 {
		t.Fatalf("guest does not see the meld")
	}

	res = mustDispatch(t, s, shared.ActionTsumo, -1, dealer)
	win := res[dealer].Win
	if win == nil || !contains(win.Yaku, "rinshan_kaihou") || contains(win.Yaku, "tenhou") {
		t.Fatalf("win = %+v", win)
	}
}

func TestKanClearsIppatsu(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureRinshan)

	// Guest riichis on their first discard; dealer kans on the next turn.
	mustDispatch(t, s, shared.ActionDiscard, indexOf(t, s, dealer, 9), dealer)
	mustDispatch(t, s, shared.ActionPassRon, -1, guest)
	mustDispatch(t, s, shared.ActionDraw, -1, guest)
	mustDispatch(t, s, shared.ActionRiichi, 13, guest)
	if !s.seat(guest).Ippatsu || !s.seat(guest).DoubleRiichi {
		t.Fatalf("riichi flags = %+v", s.seat(guest))
	}
	mustDispatch(t, s, shared.ActionPassRon, -1, dealer)
	mustDispatch(t, s, shared.ActionDraw, -1, dealer)
	mustDispatch(t, s, shared.ActionKan, indexOf(t, s, dealer, 1), dealer)
	if s.seat(guest).Ippatsu {
		t.Fatalf("ippatsu survived a kan")
	}
}

func TestLegacyHandBounds(t *testing.T) {
	legacy := config.DefaultRules()
	legacy.LegacyHandBounds = true

	t.Run("default allows the last index after kan", func(t *testing.T) {
		s, dealer, _ := startedSession(t, config.DefaultRules(), fixtureRinshan)
		mustDispatch(t, s, shared.ActionKan, 0, dealer)
		mustDispatch(t, s, shared.ActionDiscard, 10, dealer)
	})
	t.Run("legacy shrinks the bound by the kan count", func(t *testing.T) {
		s, dealer, _ := startedSession(t, legacy, fixtureRinshan)
		mustDispatch(t, s, shared.ActionKan, 0, dealer)
		_, err := s.Dispatch(shared.ActionDiscard, 10, dealer)
		wantReason(t, err, ReasonIndexOutOfRange)
	})
	t.Run("legacy counts all four kan tiles", func(t *testing.T) {
		s, dealer, _ := startedSession(t, legacy, fixtureRinshan)
		mustDispatch(t, s, shared.ActionKan, 0, dealer)
		_, err := s.Dispatch(shared.ActionTsumo, -1, dealer)
		wantReason(t, err, ReasonWrongCardCount)
	})
}

func TestWrongCardCountSkipsJudge(t *testing.T) {
	legacy := config.DefaultRules()
	legacy.LegacyHandBounds = true

	tests := []struct {
		name  string
		rules config.Rules
		code  int
		setup func(t *testing.T, s *Session, dealer, guest string) (action, actor string)
	}{
		{"tsumo short hand", config.DefaultRules(), fixtureTenhou, func(t *testing.T, s *Session, dealer, _ string) (string, string) {
			p := s.seat(dealer)
			p.Hand = p.Hand[:len(p.Hand)-1]
			return shared.ActionTsumo, dealer
		}},
		{"ron long hand", config.DefaultRules(), fixtureTenhou, func(t *testing.T, s *Session, dealer, guest string) (string, string) {
			mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
			p := s.seat(guest)
			p.Hand = append(p.Hand, p.Hand[0])
			return shared.ActionRon, guest
		}},
		{"legacy tsumo after kan", legacy, fixtureRinshan, func(t *testing.T, s *Session, dealer, _ string) (string, string) {
			mustDispatch(t, s, shared.ActionKan, 0, dealer)
			return shared.ActionTsumo, dealer
		}},
		{"legacy ron after kan", legacy, fixtureRinshan, func(t *testing.T, s *Session, dealer, guest string) (string, string) {
			mustDispatch(t, s, shared.ActionKan, 0, dealer)
			mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
			mustDispatch(t, s, shared.ActionPassRon, -1, guest)
			mustDispatch(t, s, shared.ActionDraw, -1, guest)
			mustDispatch(t, s, shared.ActionDiscard, 0, guest)
			return shared.ActionRon, dealer
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			s := newSession(t, tt.rules, tt.code)
			s.judge = agari.JudgeFunc(func(agari.Request) (agari.Verdict, error) {
				calls++
				return agari.Verdict{}, agari.ErrNoValidHand
			})
			mustDispatch(t, s, shared.ActionStart, -1, "a")
			dealer, guest := s.dealer, s.turn.Other(s.dealer)
			action, actor := tt.setup(t, s, dealer, guest)

			before := [2]int{s.seat(dealer).Score, s.seat(guest).Score}
			pot := s.pot
			_, err := s.Dispatch(action, -1, actor)
			wantReason(t, err, ReasonWrongCardCount)
			if calls != 0 {
				t.Fatalf("judge consulted %d times", calls)
			}
			if after := [2]int{s.seat(dealer).Score, s.seat(guest).Score}; after != before || s.pot != pot {
				t.Fatalf("scores %v -> %v, pot %d -> %d", before, after, pot, s.pot)
			}
			if s.Status() != StatusRunning || !s.HandActive() {
				t.Fatalf("status = %s active = %v", s.Status(), s.HandActive())
			}
		})
	}
}

func TestFailedClaimPaysPenalty(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)

	mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
	mustDispatch(t, s, shared.ActionPassRon, -1, guest)
	mustDispatch(t, s, shared.ActionDraw, -1, guest)
	res := mustDispatch(t, s, shared.ActionTsumo, -1, guest)

	if res[dealer].Outcome != shared.OutcomeFailedClaim || res[dealer].Win != nil {
		t.Fatalf("outcome = %q win = %+v", res[dealer].Outcome, res[dealer].Win)
	}
	if s.seat(guest).Score != 25000-8000 || s.seat(dealer).Score != 25000+8000 {
		t.Fatalf("scores %d/%d", s.seat(dealer).Score, s.seat(guest).Score)
	}
	if s.Status() != StatusEnded {
		t.Fatalf("status = %s", s.Status())
	}
}

func TestPassOnRiichiDiscardFillsPot(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), fixtureTenhou)

	mustDispatch(t, s, shared.ActionRiichi, 0, dealer)
	if !s.seat(dealer).DoubleRiichi {
		t.Fatalf("turn one riichi should be double")
	}
	mustDispatch(t, s, shared.ActionPassRon, -1, guest)
	if s.pot != 1 || s.seat(dealer).Score != 24000 {
		t.Fatalf("pot %d dealer score %d", s.pot, s.seat(dealer).Score)
	}

	// A later plain discard costs nothing.
	mustDispatch(t, s, shared.ActionDraw, -1, guest)
	mustDispatch(t, s, shared.ActionDiscard, 13, guest)
	mustDispatch(t, s, shared.ActionPassRon, -1, dealer)
	if s.pot != 1 || s.seat(guest).Score != 25000 {
		t.Fatalf("pot %d guest score %d", s.pot, s.seat(guest).Score)
	}

	// Guest rons the dealer's 9 and collects the pot.
	mustDispatch(t, s, shared.ActionDraw, -1, dealer)
	mustDispatch(t, s, shared.ActionDiscard, indexOf(t, s, dealer, 9), dealer)
	res := mustDispatch(t, s, shared.ActionRon, -1, guest)
	win := res[guest].Win
	if win == nil || win.Pot != 1000 {
		t.Fatalf("win = %+v", win)
	}
	if s.seat(guest).Score != 25000+win.Point+1000 || s.seat(dealer).Score != 24000-win.Point {
		t.Fatalf("scores %d/%d", s.seat(dealer).Score, s.seat(guest).Score)
	}
	if s.pot != 0 {
		t.Fatalf("pot not reset")
	}
}

func TestLateRiichiIsNotDouble(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), 0)
	mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
	mustDispatch(t, s, shared.ActionPassRon, -1, guest)
	mustDispatch(t, s, shared.ActionDraw, -1, guest)
	mustDispatch(t, s, shared.ActionDiscard, 0, guest)
	mustDispatch(t, s, shared.ActionPassRon, -1, dealer)
	mustDispatch(t, s, shared.ActionDraw, -1, dealer)
	mustDispatch(t, s, shared.ActionRiichi, 0, dealer)

	p := s.seat(dealer)
	if !p.Riichi || p.DoubleRiichi || !p.Ippatsu {
		t.Fatalf("flags riichi=%v double=%v ippatsu=%v", p.Riichi, p.DoubleRiichi, p.Ippatsu)
	}
}

func TestFuritenGate(t *testing.T) {
	setup := func(t *testing.T, rules config.Rules) (*Session, string, string) {
		s, dealer, guest := startedSession(t, rules, fixtureTenhou)
		// Guest discards the 1 it drew; the dealer then throws a 1.
		mustDispatch(t, s, shared.ActionDiscard, 0, dealer)
		mustDispatch(t, s, shared.ActionPassRon, -1, guest)
		mustDispatch(t, s, shared.ActionDraw, -1, guest)
		mustDispatch(t, s, shared.ActionDiscard, indexOf(t, s, guest, 1), guest)
		mustDispatch(t, s, shared.ActionPassRon, -1, dealer)
		mustDispatch(t, s, shared.ActionDraw, -1, dealer)
		mustDispatch(t, s, shared.ActionDiscard, indexOf(t, s, dealer, 1), dealer)
		return s, dealer, guest
	}

	t.Run("gate rejects", func(t *testing.T) {
		rules := config.DefaultRules()
		rules.FuritenGate = true
		s, _, guest := setup(t, rules)
		_, err := s.Dispatch(shared.ActionRon, -1, guest)
		wantReason(t, err, ReasonFuriten)
		if !s.seat(guest).Furiten || !s.HandActive() {
			t.Fatalf("furiten=%v active=%v", s.seat(guest).Furiten, s.HandActive())
		}
	})
	t.Run("permissive by default", func(t *testing.T) {
		s, _, guest := setup(t, config.DefaultRules())
		res := mustDispatch(t, s, shared.ActionRon, -1, guest)
		if res[guest].Outcome != shared.OutcomeFailedClaim {
			t.Fatalf("outcome = %q", res[guest].Outcome)
		}
	})
}

func TestExhaustiveDraw(t *testing.T) {
	s, dealer, _ := startedSession(t, config.DefaultRules(), fixtureTenhou)

	var last map[string]*shared.Result
	for s.handActive {
		cur := s.turn.Current
		switch s.turn.Phase {
		case game.BeforeDraw:
			last = mustDispatch(t, s, shared.ActionDraw, -1, cur)
		case game.AfterDraw:
			last = mustDispatch(t, s, shared.ActionDiscard, len(s.seat(cur).Hand)-1, cur)
		case game.AfterDiscard:
			last = mustDispatch(t, s, shared.ActionPassRon, -1, s.turn.Other(cur))
		}
	}
	if last[dealer].Outcome != shared.OutcomeExhausted || s.wall.Len() != 0 {
		t.Fatalf("outcome = %q wall = %d", last[dealer].Outcome, s.wall.Len())
	}

	mustDispatch(t, s, shared.ActionStart, -1, dealer)
	if s.dealer != dealer || s.repeat != 1 {
		t.Fatalf("dealer %s repeat %d", s.dealer, s.repeat)
	}
}

func TestJudgeErrorLeavesHandRunning(t *testing.T) {
	boom := errors.New("oracle down")
	s := newSession(t, config.DefaultRules(), fixtureTenhou)
	s.judge = agari.JudgeFunc(func(agari.Request) (agari.Verdict, error) {
		return agari.Verdict{}, boom
	})
	mustDispatch(t, s, shared.ActionStart, -1, "a")

	_, err := s.Dispatch(shared.ActionTsumo, -1, s.dealer)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !s.HandActive() || s.seat(s.dealer).Score != 25000 {
		t.Fatalf("state changed after oracle failure")
	}
}

func TestInvariantViolationIsFatal(t *testing.T) {
	s, dealer, _ := startedSession(t, config.DefaultRules(), 0)
	s.wall = game.WallFromTiles(append(s.wall.Tiles(), 5))

	_, err := s.Dispatch(shared.ActionDiscard, 0, dealer)
	if !errors.Is(err, ErrInvariantViolated) || !errors.Is(err, game.ErrTileCountMismatch) {
		t.Fatalf("err = %v", err)
	}
	if s.Status() != StatusEnded {
		t.Fatalf("status = %s", s.Status())
	}
	if _, err := s.Dispatch(shared.ActionStart, -1, dealer); !errors.Is(err, ErrInvariantViolated) {
		t.Fatalf("corrupt session accepted %v", err)
	}
}

func TestSnapshotHidesOpponentHand(t *testing.T) {
	s, dealer, guest := startedSession(t, config.DefaultRules(), 0)

	snap, err := s.Snapshot(guest)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Hand) != 13 || snap.CurrentPlayer != dealer || snap.Phase != game.AfterDraw {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.KanOptions != nil {
		t.Fatalf("kan options offered off turn")
	}
	if _, err := s.Snapshot("zed"); err == nil {
		t.Fatalf("snapshot for stranger")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
