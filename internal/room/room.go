package room

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"chinitsu-server/internal/agari"
	"chinitsu-server/internal/config"
	"chinitsu-server/internal/game"
	"chinitsu-server/internal/logging"
	"chinitsu-server/internal/shared"
)

type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusRunning      Status = "running"
	StatusReconnecting Status = "reconnecting"
	StatusEnded        Status = "ended"
)

// JoinKind tells the caller how a player entered the session.
type JoinKind int

const (
	JoinSeated JoinKind = iota
	JoinReconnected
)

// Options configure new sessions. Zero fields fall back to defaults.
type Options struct {
	Rules     config.Rules
	Judge     agari.Judge
	Gate      RonGate
	Seed      func() int64
	DebugCode int
	Logger    *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Rules == (config.Rules{}) {
		o.Rules = config.DefaultRules()
	}
	if o.Judge == nil {
		o.Judge = agari.NewShapeJudge(agari.Options{
			Daisharin:       o.Rules.Daisharin,
			RenhouAsYakuman: o.Rules.RenhouAsYakuman,
		})
	}
	if o.Gate == nil {
		o.Gate = AllowRon
		if o.Rules.FuritenGate {
			o.Gate = OwnDiscardFuriten
		}
	}
	if o.Seed == nil {
		o.Seed = func() int64 { return time.Now().UnixNano() }
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// Session is one room's game. Every exported method takes the session
// lock, so at most one mutation is in flight per room.
type Session struct {
	mu sync.Mutex

	code   string
	status Status
	seats  []*game.PlayerState

	wall   *game.Wall
	turn   *game.TurnState
	dealer string
	pot    int
	repeat int

	handActive  bool
	lastOutcome string
	lastWinner  string
	corrupt     bool

	rules     config.Rules
	judge     agari.Judge
	gate      RonGate
	seed      func() int64
	rng       *rand.Rand
	debugCode int
	log       *zap.Logger
}

func NewSession(code string, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		code:      code,
		status:    StatusWaiting,
		rules:     opts.Rules,
		judge:     opts.Judge,
		gate:      opts.Gate,
		seed:      opts.Seed,
		rng:       rand.New(rand.NewSource(opts.Seed())),
		debugCode: opts.DebugCode,
		log:       opts.Logger.With(zap.String("room", code)),
	}
}

func (s *Session) Code() string {
	return s.code
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Players lists the seated player ids in seat order.
func (s *Session) Players() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.seats))
	for _, p := range s.seats {
		out = append(out, p.ID)
	}
	return out
}

func (s *Session) HandActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handActive
}

// Join seats playerID, or gives a disconnected player their seat back.
func (s *Session) Join(playerID string) (JoinKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.seat(playerID); p != nil {
		if s.status != StatusReconnecting || p.Active {
			return 0, ErrDuplicateIdentity
		}
		p.Active = true
		if s.allActive() {
			s.status = StatusRunning
		}
		s.log.Info("player reconnected", zap.String("player", playerID))
		return JoinReconnected, nil
	}
	if s.status == StatusReconnecting {
		return 0, ErrSeatReserved
	}
	if len(s.seats) >= 2 {
		return 0, ErrSessionFull
	}

	s.seats = append(s.seats, game.NewPlayerState(playerID, s.rules.StartingScore))
	if len(s.seats) == 2 {
		s.status = StatusRunning
	} else {
		s.status = StatusWaiting
	}
	s.log.Info("player seated", zap.String("player", playerID), zap.Int("seats", len(s.seats)))
	return JoinSeated, nil
}

// Leave releases playerID's connection. A running session keeps the seat
// for a reconnect; otherwise the seat is freed.
func (s *Session) Leave(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.seat(playerID)
	if p == nil {
		return
	}
	switch s.status {
	case StatusRunning, StatusReconnecting:
		p.Active = false
		s.status = StatusReconnecting
	default:
		for i, q := range s.seats {
			if q == p {
				s.seats = append(s.seats[:i:i], s.seats[i+1:]...)
				break
			}
		}
		s.handActive = false
		s.status = StatusWaiting
	}
	s.log.Info("player left", zap.String("player", playerID), zap.String("status", string(s.status)))
}

// Snapshot is the public state plus playerID's own hand.
func (s *Session) Snapshot(playerID string) (*shared.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.seat(playerID)
	if p == nil {
		return nil, ruleErr(ReasonUnknownPlayer, "%s is not seated", playerID)
	}
	r := s.view(p)
	r.PlayerID = playerID
	r.CardIndex = -1
	return r, nil
}

func (s *Session) Summary() shared.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := shared.RoomSummary{
		Code:    s.code,
		Status:  string(s.status),
		Players: make([]string, 0, len(s.seats)),
		Hand:    s.handActive,
	}
	for _, p := range s.seats {
		sum.Players = append(sum.Players, p.ID)
	}
	return sum
}

func (s *Session) seat(id string) *game.PlayerState {
	for _, p := range s.seats {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) opponent(p *game.PlayerState) *game.PlayerState {
	for _, q := range s.seats {
		if q != p {
			return q
		}
	}
	return nil
}

func (s *Session) allActive() bool {
	for _, p := range s.seats {
		if !p.Active {
			return false
		}
	}
	return true
}

// view builds the state visible to p.
func (s *Session) view(p *game.PlayerState) *shared.Result {
	r := &shared.Result{
		Melds:    make(map[string][]game.Meld, len(s.seats)),
		Discards: make(map[string][]game.Discard, len(s.seats)),
		Scores:   make(map[string]int, len(s.seats)),
		Riichi:   make(map[string]bool, len(s.seats)),
		Pot:      s.pot,
		Repeat:   s.repeat,
		Dealer:   s.dealer,
		Status:   string(s.status),
		Hand:     p.HandCopy(),
	}
	for _, q := range s.seats {
		r.Melds[q.ID] = q.MeldsCopy()
		r.Discards[q.ID] = q.DiscardsCopy()
		r.Scores[q.ID] = q.Score
		r.Riichi[q.ID] = q.Riichi
	}
	if s.wall != nil {
		r.WallCount = s.wall.Len()
	}
	if s.turn != nil {
		r.TurnNumber = s.turn.Number
		r.CurrentPlayer = s.turn.Current
		r.Phase = s.turn.Phase
		if s.handActive && s.turn.Current == p.ID && s.turn.Phase == game.AfterDraw {
			r.KanOptions = game.KanCandidates(p.Hand)
		}
	}
	return r
}
