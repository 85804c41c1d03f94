package game

import (
	"errors"
	"testing"
)

func TestNewWallIsFullMultiset(t *testing.T) {
	w := NewWall()
	if err := checkMultiset(w.Tiles()); err != nil {
		t.Fatalf("new wall: %v", err)
	}
}

func TestShuffleKeepsMultisetAndVariesBySeed(t *testing.T) {
	a := NewWall()
	a.Shuffle(1)
	b := NewWall()
	b.Shuffle(2)

	if err := checkMultiset(a.Tiles()); err != nil {
		t.Fatalf("shuffled wall: %v", err)
	}
	same := true
	at, bt := a.Tiles(), b.Tiles()
	for i := range at {
		if at[i] != bt[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced the same order")
	}

	c := NewWall()
	c.Shuffle(1)
	ct := c.Tiles()
	for i := range at {
		if at[i] != ct[i] {
			t.Fatalf("same seed produced different orders at %d", i)
		}
	}
}

func TestDrawTakesFromFront(t *testing.T) {
	w := WallFromTiles([]Tile{1, 2, 3, 4})
	got, err := w.Draw(2)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("draw = %v, want [1 2]", got)
	}
	if w.Len() != 2 {
		t.Fatalf("len = %d, want 2", w.Len())
	}
}

func TestDrawTooMany(t *testing.T) {
	w := WallFromTiles([]Tile{1, 2})
	if _, err := w.Draw(3); !errors.Is(err, ErrInsufficientTiles) {
		t.Fatalf("err = %v, want ErrInsufficientTiles", err)
	}
	if w.Len() != 2 {
		t.Fatalf("failed draw changed wall length to %d", w.Len())
	}
}

func TestDrawTail(t *testing.T) {
	w := WallFromTiles([]Tile{1, 2, 3})
	got, err := w.DrawTail()
	if err != nil {
		t.Fatalf("tail draw: %v", err)
	}
	if got != 3 {
		t.Fatalf("tail = %d, want 3", got)
	}

	empty := WallFromTiles(nil)
	if _, err := empty.DrawTail(); !errors.Is(err, ErrInsufficientTiles) {
		t.Fatalf("err = %v, want ErrInsufficientTiles", err)
	}
}

func TestDealSizes(t *testing.T) {
	w := NewWall()
	w.Shuffle(7)
	dealer := NewPlayerState("d", 0)
	guest := NewPlayerState("g", 0)
	if err := Deal(w, dealer, guest); err != nil {
		t.Fatalf("deal: %v", err)
	}
	if len(dealer.Hand) != DealerHandSize || len(guest.Hand) != GuestHandSize {
		t.Fatalf("hands = %d/%d, want 14/13", len(dealer.Hand), len(guest.Hand))
	}
	if err := CheckConservation(w, dealer, guest); err != nil {
		t.Fatalf("conservation: %v", err)
	}
}

func TestDebugWallDealsFixtureHands(t *testing.T) {
	for code, fx := range fixtures {
		w, err := DebugWall(code)
		if err != nil {
			t.Fatalf("debug wall %d: %v", code, err)
		}
		dealer := NewPlayerState("d", 0)
		guest := NewPlayerState("g", 0)
		if err := Deal(w, dealer, guest); err != nil {
			t.Fatalf("deal %d: %v", code, err)
		}
		if got := tilesString(dealer.Hand); got != fx.Dealer {
			t.Errorf("code %d dealer = %s, want %s", code, got, fx.Dealer)
		}
		if got := tilesString(guest.Hand); got != fx.Guest {
			t.Errorf("code %d guest = %s, want %s", code, got, fx.Guest)
		}
		if got := tilesString(w.Tiles()); got != fx.Rest {
			t.Errorf("code %d rest = %s, want %s", code, got, fx.Rest)
		}
	}
}

func TestDebugWallUnknownCode(t *testing.T) {
	if _, err := DebugWall(1); err == nil {
		t.Fatalf("expected error for unknown code")
	}
	if HasFixture(1) {
		t.Fatalf("HasFixture(1) = true")
	}
}

func tilesString(tiles []Tile) string {
	b := make([]byte, len(tiles))
	for i, t := range tiles {
		b[i] = byte('0' + t)
	}
	return string(b)
}
