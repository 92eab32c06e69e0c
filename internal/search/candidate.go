package search

import (
	"fmt"
	"math"

	"maru/internal/goban"
)

// Candidate is one move suggestion extracted from the tree.
type Candidate struct {
	X          int
	Y          int
	Color      int
	Visits     int
	Playouts   int
	Policy     float32
	Value      float32
	Variations [][2]int
}

// WinChance converts the signed value into a win probability for the
// candidate's color.
func (c Candidate) WinChance() float64 {
	return float64(c.Value)*float64(c.Color)*0.5 + 0.5
}

// WinChanceLCB is the lower confidence bound of WinChance.
func (c Candidate) WinChanceLCB() float64 {
	return c.WinChance() - 1.96*0.25/math.Sqrt(float64(c.Visits)+1)
}

// IsPass reports whether the candidate is a pass.
func (c Candidate) IsPass() bool {
	return c.X < 0 || c.Y < 0
}

func (c Candidate) String() string {
	return fmt.Sprintf(
		"Candidate(pos=(%d,%d), color=%s, visits=%d, policy=%.2f, value=%.2f, win_chance=%.2f)",
		c.X, c.Y, goban.ColorName(c.Color), c.Visits, c.Policy, c.Value, c.WinChance())
}
