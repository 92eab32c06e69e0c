package goban

import "testing"

// fillExcept fills the whole board with one color, skipping the listed
// cells.
func fillExcept(t *testing.T, b *Board, color int, skip ...[2]int) {
	t.Helper()

	skipped := func(x, y int) bool {
		for _, s := range skip {
			if s[0] == x && s[1] == y {
				return true
			}
		}
		return false
	}

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if !skipped(x, y) {
				mustPlay(t, b, x, y, color)
			}
		}
	}
}

// A group with two one-point eyes is fixed; its eyes and stones are all
// confirmed territory.
func TestTerritoriesTwoEyes(t *testing.T) {
	b := NewBoard(5, 5)
	fillExcept(t, b, Black, [2]int{0, 0}, [2]int{4, 4})

	territories := b.GetTerritories(Black)
	for i, owner := range territories {
		if owner != Black {
			t.Fatalf("cell %d owner = %d, want black", i, owner)
		}
	}

	// The eyes are not playable for white (suicide) nor sensible for
	// black (own territory filtered by the evaluator, but still legal).
	if b.IsEnabled(0, 0, White, false) {
		t.Fatal("eye fill by white reported legal")
	}
}

// A single eye is not enough: the region demotion empties the board's
// territory.
func TestTerritoriesSingleEyeNotFixed(t *testing.T) {
	b := NewBoard(5, 5)
	fillExcept(t, b, Black, [2]int{0, 0})

	territories := b.GetTerritories(Black)
	for i, owner := range territories {
		if owner != Empty {
			t.Fatalf("cell %d owner = %d, want empty", i, owner)
		}
	}
}

// An open region bordered by loose stones is unconfirmed: cells without
// a friendly neighbor demote it.
func TestTerritoriesOpenRegionUnconfirmed(t *testing.T) {
	b := NewBoard(9, 9)

	mustPlay(t, b, 4, 4, Black)

	territories := b.GetTerritories(Black)
	for i, owner := range territories {
		if i == 4*9+4 {
			continue
		}
		if owner != Empty {
			t.Fatalf("cell %d owner = %d, want empty", i, owner)
		}
	}
}

// The reference color flips the report.
func TestTerritoriesReferenceColor(t *testing.T) {
	b := NewBoard(5, 5)
	fillExcept(t, b, Black, [2]int{0, 0}, [2]int{4, 4})

	territories := b.GetTerritories(White)
	for i, owner := range territories {
		if owner != White {
			t.Fatalf("cell %d owner = %d, want white (relative)", i, owner)
		}
	}
}

func TestOwnersFillsSingleColorRegions(t *testing.T) {
	b := NewBoard(5, 5)

	// A lone black stone owns nothing under territory rules, but under
	// Chinese counting the whole empty region borders only black.
	mustPlay(t, b, 2, 2, Black)

	owners := b.GetOwners(Black, RuleCH)
	for i, owner := range owners {
		if owner != Black {
			t.Fatalf("cell %d owner = %d, want black", i, owner)
		}
	}

	// Japanese rules leave the unconfirmed region neutral.
	owners = b.GetOwners(Black, RuleJP)
	for i, owner := range owners {
		if i == 2*5+2 {
			if owner != Black {
				t.Fatal("stone cell not owned by black")
			}
			continue
		}
		if owner != Empty {
			t.Fatalf("cell %d owner = %d, want empty under JP", i, owner)
		}
	}
}

func TestOwnersMixedBorders(t *testing.T) {
	b := NewBoard(5, 5)

	mustPlay(t, b, 1, 2, Black)
	mustPlay(t, b, 3, 2, White)

	// The shared empty region touches both colors: nobody owns it.
	owners := b.GetOwners(Black, RuleCH)
	for i, owner := range owners {
		switch i {
		case 2*5 + 1:
			if owner != Black {
				t.Fatal("black stone not owned by black")
			}
		case 2*5 + 3:
			if owner != White {
				t.Fatal("white stone not owned by white")
			}
		default:
			if owner != Empty {
				t.Fatalf("cell %d owner = %d, want empty", i, owner)
			}
		}
	}
}
