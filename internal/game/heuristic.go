package game

// SuggestDiscard picks the hand index of the least connected tile: fewest
// copies and near neighbours, preferring terminals on ties, then the most
// recently drawn position. Returns -1 for an empty hand.
func SuggestDiscard(hand []Tile) int {
	if len(hand) == 0 {
		return -1
	}
	c := Counts(hand)

	best := -1
	bestScore := 0
	for i := len(hand) - 1; i >= 0; i-- {
		t := hand[i]
		score := neighbours(c, int(t)) * 10
		// Terminals build fewer sequences
		if t != MinRank && t != MaxRank {
			score += 3
		}
		if best == -1 || score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
