package game

// TurnState tracks whose turn it is and how far into it play has reached.
type TurnState struct {
	Current string `json:"current"`
	Number  int    `json:"number"`
	Phase   Phase  `json:"phase"`

	seats [2]string
}

// NewTurnState starts a hand with the dealer to act. The dealer already
// holds 14 tiles, so the state is advanced once into AfterDraw.
func NewTurnState(dealer, guest string) *TurnState {
	ts := &TurnState{
		Current: dealer,
		Number:  1,
		Phase:   BeforeDraw,
		seats:   [2]string{dealer, guest},
	}
	ts.Advance()
	return ts
}

// Advance moves to the next phase. Leaving AfterDiscard hands the turn to
// the other seat and bumps the turn counter.
func (ts *TurnState) Advance() {
	switch ts.Phase {
	case BeforeDraw:
		ts.Phase = AfterDraw
	case AfterDraw:
		ts.Phase = AfterDiscard
	case AfterDiscard:
		ts.Phase = BeforeDraw
		ts.Current = ts.Other(ts.Current)
		ts.Number++
	}
}

// Other returns the seat opposite id.
func (ts *TurnState) Other(id string) string {
	if ts.seats[0] == id {
		return ts.seats[1]
	}
	return ts.seats[0]
}
