package goban

// IsShicho reports whether the group at (x, y) is caught in a ladder.
func (b *Board) IsShicho(x, y int) bool {
	b.updateShicho()

	renID := b.renIds[b.index(x, y)]
	if renID == -1 {
		return false
	}
	return b.rens[renID].Shicho
}

// updateShicho recomputes the ladder flag of every group. A group in
// atari is laddered when the escape search proves capture; a group with
// two liberties is laddered when chasing at either liberty leads to a
// proven ladder, which is the same rule the search applies one ply deeper.
func (b *Board) updateShicho() {
	if b.shichoUpdated {
		return
	}

	for index := 0; index < b.length; index++ {
		// One position of every group equals its id.
		if b.renIds[index] != index {
			continue
		}

		ren := &b.rens[index]
		if ren.Color != Black && ren.Color != White {
			continue
		}

		switch len(ren.Spaces) {
		case 1:
			ren.Shicho = b.isShichoRen(index)
		case 2:
			ren.Shicho = b.isShichoChase(index)
		default:
			ren.Shicho = false
		}
	}

	b.shichoUpdated = true
}

// isShichoChase plays the chaser at each liberty of a two-liberty group on
// a copy of the board and reads the resulting atari.
func (b *Board) isShichoChase(index int) bool {
	ren := &b.rens[b.renIds[index]]
	opColor := Opposite(ren.Color)

	for _, space := range ren.Spaces.clone() {
		chase := b.clone()
		if chase.Play(chase.posX(space), chase.posY(space), opColor) < 0 {
			continue
		}
		if len(chase.rens[chase.renIds[index]].Spaces) == 1 && chase.isShichoRen(index) {
			return true
		}
	}

	return false
}

// isShichoRen reads out a group in atari by depth-first search over board
// copies. The defender's escape is forced (the single liberty); the
// chaser branches over the two liberties left after the escape. The group
// is laddered when some chasing branch forces the capture.
func (b *Board) isShichoRen(index int) bool {
	if len(b.rens[b.renIds[index]].Spaces) > 1 {
		return false
	}

	stack := []*Board{b.clone()}

	for len(stack) > 0 {
		board := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		renID := board.renIds[index]
		color := board.rens[renID].Color
		opColor := Opposite(color)

		// A counter-capture of an adjacent enemy group in atari ends the
		// ladder in this branch.
		escaped := false

		for _, pos := range board.rens[renID].Positions {
			for _, a := range board.arounds() {
				targetID := board.renIds[pos+a]
				if targetID != -1 &&
					board.rens[targetID].Color == opColor &&
					len(board.rens[targetID].Spaces) == 1 {
					escaped = true
					break
				}
			}
			if escaped {
				break
			}
		}

		if escaped {
			continue
		}

		// Play the only escape move.
		curr := board.clone()
		currPos := board.rens[renID].Spaces.first()

		if curr.Play(curr.posX(currPos), curr.posY(currPos), color) < 0 {
			if b.isNakade(board.rens[renID].Positions) {
				continue
			}
			return true
		}

		currID := curr.renIds[index]

		switch {
		case len(curr.rens[currID].Spaces) == 1:
			if b.isNakade(curr.rens[currID].Positions) {
				continue
			}
			return true
		case len(curr.rens[currID].Spaces) > 2:
			continue
		}

		for _, nextPos := range curr.rens[currID].Spaces.clone() {
			next := curr.clone()
			next.Play(next.posX(nextPos), next.posY(nextPos), opColor)
			stack = append(stack, next)
		}
	}

	return false
}
