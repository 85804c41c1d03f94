package game

// KanCandidates lists the ranks held four times, lowest first.
func KanCandidates(hand []Tile) []Tile {
	c := Counts(hand)
	var out []Tile
	for r := MinRank; r <= MaxRank; r++ {
		if c[r] == CopiesPerRank {
			out = append(out, Tile(r))
		}
	}
	return out
}

// IndexOf returns the position of the first copy of tile in hand, or -1.
func IndexOf(hand []Tile, tile Tile) int {
	for i, t := range hand {
		if t == tile {
			return i
		}
	}
	return -1
}

// neighbours counts tiles in hand within distance 2 of rank r, excluding
// one copy of r itself.
func neighbours(c [MaxRank + 1]int, r int) int {
	n := c[r] - 1
	for d := -2; d <= 2; d++ {
		if d == 0 {
			continue
		}
		if nr := r + d; nr >= MinRank && nr <= MaxRank {
			n += c[nr]
		}
	}
	return n
}
