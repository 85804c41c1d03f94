package shared

import "chinitsu-server/internal/game"

// Client actions.
const (
	ActionStart   = "start"
	ActionDraw    = "draw"
	ActionDiscard = "discard"
	ActionRiichi  = "riichi"
	ActionKan     = "kan"
	ActionTsumo   = "tsumo"
	ActionRon     = "ron"
	ActionPassRon = "passRon"
)

// Envelope types sent to clients.
const (
	TypeRoomCreated       = "room_created"
	TypePlayerJoined      = "player_joined"
	TypePlayerReconnected = "player_reconnected"
	TypeGameStarted       = "game_started"
	TypePlayerLeft        = "player_left"
	TypeRoomClosed        = "room_closed"
	TypeActionResult      = "action_result"
	TypeActionError       = "action_error"
	TypeSnapshot          = "snapshot"
)

// Hand outcomes.
const (
	OutcomeWin         = "win"
	OutcomeFailedClaim = "failed_claim"
	OutcomeExhausted   = "exhausted"
)

// ClientMessage is one inbound frame. CardIndex is optional; actions that
// need it treat a missing value as out of range.
type ClientMessage struct {
	Action    string `json:"action" validate:"required,oneof=start draw discard riichi kan tsumo ron passRon"`
	CardIndex *int   `json:"cardIndex,omitempty"`
}

// Index returns the card index, or -1 when absent.
func (m ClientMessage) Index() int {
	if m.CardIndex == nil {
		return -1
	}
	return *m.CardIndex
}

type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WinInfo struct {
	Agari  string      `json:"agari"` // tsumo or ron
	Winner string      `json:"winner"`
	Loser  string      `json:"loser"`
	Han    int         `json:"han"`
	Fu     int         `json:"fu"`
	Point  int         `json:"point"`
	Pot    int         `json:"pot"`
	Yaku   []string    `json:"yaku"`
	Hand   []game.Tile `json:"hand"`
	Melds  []game.Meld `json:"melds"`
}

// Result is what one recipient learns from a successful action. Hand is
// always the recipient's own; Card is omitted for the opponent of a draw.
type Result struct {
	PlayerID  string     `json:"playerId"`
	Action    string     `json:"action"`
	CardIndex int        `json:"cardIndex"`
	Card      *game.Tile `json:"card,omitempty"`

	Melds    map[string][]game.Meld    `json:"melds"`
	Discards map[string][]game.Discard `json:"discards"`
	Scores   map[string]int            `json:"scores"`
	Riichi   map[string]bool           `json:"riichi"`

	Pot           int        `json:"pot"`
	Repeat        int        `json:"repeat"`
	WallCount     int        `json:"wallCount"`
	TurnNumber    int        `json:"turnNumber"`
	CurrentPlayer string     `json:"currentPlayer"`
	Phase         game.Phase `json:"phase"`
	Dealer        string     `json:"dealer"`
	Status        string     `json:"status"`

	Outcome string   `json:"outcome,omitempty"`
	Win     *WinInfo `json:"win,omitempty"`

	Hand       []game.Tile `json:"hand"`
	KanOptions []game.Tile `json:"kanOptions,omitempty"`
}

// RoomSummary is the public listing of one room.
type RoomSummary struct {
	Code    string   `json:"code"`
	Status  string   `json:"status"`
	Players []string `json:"players"`
	Hand    bool     `json:"handActive"`
}
