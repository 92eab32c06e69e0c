package goban

import "testing"

// A two-stone group on the left edge of a small board, hemmed in by
// black, is driven into the corner: every branch of the read ends in a
// capture.
//
//	 5x5:   X X . . .
//	        O X . . .
//	        O X . . .
//	        . . . . .
//	        . . . . .
func TestShichoEdgeLadderCaught(t *testing.T) {
	b := NewBoard(5, 5)

	mustPlay(t, b, 0, 1, White)
	mustPlay(t, b, 0, 2, White)
	mustPlay(t, b, 0, 0, Black)
	mustPlay(t, b, 1, 0, Black)
	mustPlay(t, b, 1, 1, Black)
	mustPlay(t, b, 1, 2, Black)

	if spaces := b.GetRenSpace(0, 1); spaces != 1 {
		t.Fatalf("white liberties = %d, want 1", spaces)
	}
	if !b.IsShicho(0, 1) {
		t.Fatal("edge ladder not detected")
	}
	if !b.IsShicho(0, 2) {
		t.Fatal("ladder flag missing on the second stone")
	}
	if b.IsShicho(0, 0) {
		t.Fatal("black chaser flagged as laddered")
	}
}

// Same shape, but the black stone at (0,0) is unsupported: white can
// counter-capture it instead of running.
func TestShichoCounterCaptureEscapes(t *testing.T) {
	b := NewBoard(5, 5)

	mustPlay(t, b, 0, 1, White)
	mustPlay(t, b, 0, 2, White)
	mustPlay(t, b, 0, 0, Black)
	mustPlay(t, b, 1, 1, Black)
	mustPlay(t, b, 1, 2, Black)

	if spaces := b.GetRenSpace(0, 0); spaces != 1 {
		t.Fatalf("black corner stone liberties = %d, want 1", spaces)
	}
	if b.IsShicho(0, 1) {
		t.Fatal("group with a counter-capture flagged as laddered")
	}
}

// A lone stone with two contact enemies in the open escapes: both
// chasing ataris let it extend into three liberties.
func TestShichoLoneStoneEscapesToCenter(t *testing.T) {
	b := NewBoard(19, 19)

	mustPlay(t, b, 3, 3, White)
	mustPlay(t, b, 3, 2, Black)
	mustPlay(t, b, 2, 3, Black)

	if spaces := b.GetRenSpace(3, 3); spaces != 2 {
		t.Fatalf("white liberties = %d, want 2", spaces)
	}
	if b.IsShicho(3, 3) {
		t.Fatal("open-board stone flagged as laddered")
	}
}

func TestShichoManyLiberties(t *testing.T) {
	b := NewBoard(19, 19)

	mustPlay(t, b, 5, 5, White)
	mustPlay(t, b, 5, 6, White)

	if b.IsShicho(5, 5) {
		t.Fatal("free group flagged as laddered")
	}
	if b.IsShicho(9, 9) {
		t.Fatal("empty cell flagged as laddered")
	}
}

// The ladder query is lazy: a move invalidates it, the next query
// recomputes.
func TestShichoInvalidation(t *testing.T) {
	b := NewBoard(5, 5)

	mustPlay(t, b, 0, 1, White)
	mustPlay(t, b, 0, 2, White)
	mustPlay(t, b, 0, 0, Black)
	mustPlay(t, b, 1, 1, Black)
	mustPlay(t, b, 1, 2, Black)

	// The corner stone is loose, so white can counter-capture.
	if b.IsShicho(0, 1) {
		t.Fatal("group with a counter-capture flagged as laddered")
	}

	// Protecting the corner stone turns the position into a ladder.
	mustPlay(t, b, 1, 0, Black)

	if !b.IsShicho(0, 1) {
		t.Fatal("ladder flag not recomputed after the protecting move")
	}
}
