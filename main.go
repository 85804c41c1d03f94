package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"chinitsu-server/internal/agari"
	"chinitsu-server/internal/config"
	"chinitsu-server/internal/game"
	"chinitsu-server/internal/room"
	"chinitsu-server/internal/shared"
)

const (
	you = "you"
	cpu = "cpu"
)

// A local game against a CPU seat, played on the same session engine the
// server uses.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	judge := agari.NewShapeJudge(agari.Options{
		Daisharin:       cfg.Rules.Daisharin,
		RenhouAsYakuman: cfg.Rules.RenhouAsYakuman,
	})
	s := room.NewSession("local", room.Options{Rules: cfg.Rules, Judge: judge, DebugCode: cfg.DebugCode})
	for _, id := range []string{you, cpu} {
		if _, err := s.Join(id); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	in := bufio.NewReader(os.Stdin)
	for {
		if _, err := s.Dispatch(shared.ActionStart, -1, you); err != nil {
			fmt.Println("Cannot start:", err)
			return
		}
		var last map[string]*shared.Result
		for s.HandActive() {
			if res := step(s, judge, in); res != nil {
				last = res
			}
		}
		report(last[you])
		if !ask(in, "Another hand? [y/N] ") {
			break
		}
	}

	snap, _ := s.Snapshot(you)
	js, _ := json.MarshalIndent(snap.Scores, "", "  ")
	fmt.Println("\nFinal scores:")
	fmt.Println(string(js))
}

// step performs one action for whichever seat has to move.
func step(s *room.Session, judge agari.Judge, in *bufio.Reader) map[string]*shared.Result {
	view, _ := s.Snapshot(you)
	mine, _ := s.Snapshot(cpu)

	switch {
	case view.Phase == game.BeforeDraw:
		return must(s.Dispatch(shared.ActionDraw, -1, view.CurrentPlayer))
	case view.Phase == game.AfterDiscard && view.CurrentPlayer == cpu:
		tile := lastDiscard(view, cpu)
		fmt.Printf("\nCPU discards %d. Your hand: %v\n", tile, view.Hand)
		if ask(in, "Ron? [y/N] ") {
			return dispatchOrSay(s, shared.ActionRon, -1, you)
		}
		return must(s.Dispatch(shared.ActionPassRon, -1, you))
	case view.Phase == game.AfterDiscard:
		tile := lastDiscard(mine, you)
		if completes(judge, append(mine.Hand, tile), mine.Melds[cpu]) {
			fmt.Println("CPU calls ron!")
			if res := dispatchOrSay(s, shared.ActionRon, -1, cpu); res != nil {
				return res
			}
		}
		return must(s.Dispatch(shared.ActionPassRon, -1, cpu))
	case view.CurrentPlayer == cpu:
		return cpuTurn(s, judge, mine)
	default:
		return yourTurn(s, view, in)
	}
}

func cpuTurn(s *room.Session, judge agari.Judge, view *shared.Result) map[string]*shared.Result {
	if completes(judge, view.Hand, view.Melds[cpu]) {
		fmt.Println("CPU declares tsumo!")
		return must(s.Dispatch(shared.ActionTsumo, -1, cpu))
	}
	if len(view.KanOptions) > 0 && view.WallCount > 0 {
		fmt.Printf("CPU declares kan of %d.\n", view.KanOptions[0])
		return must(s.Dispatch(shared.ActionKan, game.IndexOf(view.Hand, view.KanOptions[0]), cpu))
	}
	return must(s.Dispatch(shared.ActionDiscard, game.SuggestDiscard(view.Hand), cpu))
}

func yourTurn(s *room.Session, view *shared.Result, in *bufio.Reader) map[string]*shared.Result {
	fmt.Printf("\nTurn %d, wall %d, scores %v\n", view.TurnNumber, view.WallCount, view.Scores)
	fmt.Printf("CPU discards: %v  melds: %v\n", tiles(view.Discards[cpu]), view.Melds[cpu])
	fmt.Printf("Your melds: %v\n", view.Melds[you])
	printHand(view.Hand)
	if len(view.KanOptions) > 0 {
		fmt.Printf("Kan available: %v\n", view.KanOptions)
	}
	fmt.Println("Commands: d N (discard), r N (riichi), k N (kan), t (tsumo)")

	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			os.Exit(0)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		idx := -1
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Index must be a number.")
				continue
			}
			idx = n - 1
		}
		action := map[string]string{
			"d": shared.ActionDiscard,
			"r": shared.ActionRiichi,
			"k": shared.ActionKan,
			"t": shared.ActionTsumo,
		}[parts[0]]
		if action == "" {
			fmt.Println("Unknown command.")
			continue
		}
		if res := dispatchOrSay(s, action, idx, you); res != nil {
			return res
		}
	}
}

func completes(judge agari.Judge, hand []game.Tile, melds []game.Meld) bool {
	_, err := judge.Evaluate(agari.Request{Hand: hand, Melds: melds, WinTile: hand[len(hand)-1]})
	return err == nil
}

func lastDiscard(view *shared.Result, who string) game.Tile {
	d := view.Discards[who]
	return d[len(d)-1].Tile
}

func dispatchOrSay(s *room.Session, action string, idx int, player string) map[string]*shared.Result {
	res, err := s.Dispatch(action, idx, player)
	if err != nil {
		fmt.Println("Not allowed:", err)
		return nil
	}
	return res
}

func must(res map[string]*shared.Result, err error) map[string]*shared.Result {
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine error:", err)
		os.Exit(1)
	}
	return res
}

func report(r *shared.Result) {
	if r == nil {
		return
	}
	switch r.Outcome {
	case shared.OutcomeWin:
		fmt.Printf("\n%s wins by %s: %d han, %d points %v\n", r.Win.Winner, r.Win.Agari, r.Win.Han, r.Win.Point, r.Win.Yaku)
		fmt.Printf("Winning hand: %v %v\n", r.Win.Hand, r.Win.Melds)
	case shared.OutcomeFailedClaim:
		fmt.Printf("\n%s claimed a win without one and pays the penalty.\n", r.PlayerID)
	case shared.OutcomeExhausted:
		fmt.Println("\nThe wall is empty. Exhaustive draw.")
	}
	fmt.Printf("Scores: %v\n", r.Scores)
}

func printHand(hand []game.Tile) {
	var nums, vals strings.Builder
	for i, t := range hand {
		fmt.Fprintf(&nums, "%3d", i+1)
		fmt.Fprintf(&vals, "%3d", t)
	}
	fmt.Println(nums.String())
	fmt.Println(vals.String())
}

func tiles(ds []game.Discard) []game.Tile {
	out := make([]game.Tile, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Tile)
	}
	return out
}

func ask(in *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := in.ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
}
