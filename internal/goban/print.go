package goban

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an ASCII rendering of the board: X for black, O for white,
// K for the ko point.
func (b *Board) Print(w io.Writer) {
	fmt.Fprint(w, "   ")
	for x := 0; x < b.Width(); x++ {
		fmt.Fprintf(w, "%2d", x)
	}
	fmt.Fprintln(w)

	border := "  +" + strings.Repeat("--", b.Width()) + "-+"
	fmt.Fprintln(w, border)

	for y := 0; y < b.Height(); y++ {
		fmt.Fprintf(w, "%2d|", y)
		for x := 0; x < b.Width(); x++ {
			switch {
			case b.index(x, y) == b.koIndex:
				fmt.Fprint(w, " K")
			case b.GetColor(x, y) == Black:
				fmt.Fprint(w, " X")
			case b.GetColor(x, y) == White:
				fmt.Fprint(w, " O")
			default:
				fmt.Fprint(w, " .")
			}
		}
		fmt.Fprintln(w, " |")
	}

	fmt.Fprintln(w, border)
}
