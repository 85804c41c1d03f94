package room

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable code of a rejected action.
type Reason string

const (
	ReasonNotYourTurn       Reason = "NotYourTurn"
	ReasonIllegalPhase      Reason = "IllegalPhase"
	ReasonIllegalDraw       Reason = "IllegalDraw"
	ReasonIndexOutOfRange   Reason = "IndexOutOfRange"
	ReasonInsufficientTiles Reason = "InsufficientTiles"
	ReasonAlreadyRiichi     Reason = "AlreadyRiichi"
	ReasonWrongCardCount    Reason = "WrongCardCount"
	ReasonRoomNotReady      Reason = "RoomNotReady"
	ReasonIllegalKan        Reason = "IllegalKan"
	ReasonUnknownAction     Reason = "UnknownAction"
	ReasonUnknownPlayer     Reason = "UnknownPlayer"
	ReasonHandInProgress    Reason = "HandInProgress"
	ReasonFuriten           Reason = "Furiten"
)

// RuleError rejects an action. Session state is unchanged when one is
// returned, apart from the furiten flag.
type RuleError struct {
	Reason Reason
	Msg    string
}

func (e *RuleError) Error() string {
	return string(e.Reason) + ": " + e.Msg
}

func ruleErr(r Reason, format string, args ...any) error {
	return &RuleError{Reason: r, Msg: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason code from err, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

var (
	// ErrInvariantViolated means the tile count no longer adds up. The
	// session is unusable afterwards.
	ErrInvariantViolated = errors.New("tile invariant violated")

	ErrSessionFull       = errors.New("session already has two players")
	ErrDuplicateIdentity = errors.New("player already seated")
	ErrSeatReserved      = errors.New("session is holding seats for disconnected players")
)
