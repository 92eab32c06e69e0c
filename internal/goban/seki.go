package goban

// isSeki reports whether placing color at index would fill a point of a
// mutual-life position. Such moves are rejected when legality is checked
// with checkSeki.
func (b *Board) isSeki(index, color int) bool {
	opColor := Opposite(color)

	// An adjacent enemy group in atari can be captured instead.
	for _, a := range b.arounds() {
		renID := b.renIds[index+a]
		if renID != -1 &&
			b.rens[renID].Color == opColor &&
			len(b.rens[renID].Spaces) == 1 {
			return false
		}
	}

	// The friendly groups the move would join.
	var renIds posSet

	for _, a := range b.arounds() {
		renID := b.renIds[index+a]
		if renID != -1 && b.rens[renID].Color == color {
			renIds.insert(renID)
		}
	}

	if len(renIds) == 0 {
		return false
	}

	// Combined liberties of the joined group; nine or more puts the move
	// outside the seki shapes.
	var spaces posSet

	for _, a := range b.arounds() {
		if b.renIds[index+a] == -1 {
			spaces.insert(index + a)
		}
	}

	for _, renID := range renIds {
		spaces.insertAll(b.rens[renID].Spaces)
		if len(spaces) >= 9 {
			return false
		}
	}

	spaces.remove(index)

	switch {
	case len(spaces) == 0:
		return false
	case len(spaces) == 1:
		return b.isSekiRen(index, color, renIds, spaces.first())
	default:
		return b.isSekiArea(index, color, renIds, spaces)
	}
}

// isSekiRen judges the one-liberty case: the joined group and the enemy
// groups around it share their last liberties.
func (b *Board) isSekiRen(index, color int, renIds posSet, spaceIndex int) bool {
	opColor := Opposite(color)
	var opRenIds posSet

	for _, a := range b.arounds() {
		for _, target := range [2]int{index + a, spaceIndex + a} {
			renID := b.renIds[target]

			if target != index && target != spaceIndex && renID == -1 {
				return false
			}
			if renID != -1 && b.rens[renID].Color == opColor {
				opRenIds.insert(renID)
			}
		}
	}

	if len(opRenIds) == 0 {
		return false
	}

	// Every adjacent enemy group must be down to exactly two liberties.
	for _, renID := range opRenIds {
		if len(b.rens[renID].Spaces) != 2 {
			return false
		}
	}

	// Shapes of seven or more stones always live in seki.
	var positions posSet
	positions.insert(index)

	for _, renID := range renIds {
		positions.insertAll(b.rens[renID].Positions)
		if len(positions) >= 7 {
			return true
		}
	}

	if len(positions) >= 4 && !b.isNakade(positions) {
		return true
	}

	// Enemy liberties elsewhere keep the position a seki; otherwise the
	// shape is a nakade and dies.
	var opSpaces posSet

	for _, renID := range opRenIds {
		opSpaces.insertAll(b.rens[renID].Spaces)
	}

	opSpaces.remove(index)
	opSpaces.remove(spaceIndex)

	return len(opSpaces) > 0
}

// isSekiArea judges the multi-liberty case by flooding the enclosed
// region. The flood is seeded from the liberty set only; the move cell is
// counted in the region from the start but the flood never expands from it.
func (b *Board) isSekiArea(index, color int, renIds, spacesIndices posSet) bool {
	opColor := Opposite(color)
	var positions posSet
	var connectedIds posSet
	var stack []int

	positions.insert(index)

	for _, spaceIndex := range spacesIndices {
		stack = append(stack, spaceIndex)
		positions.insert(spaceIndex)
	}

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, a := range b.arounds() {
			target := pos + a
			renID := b.renIds[target]

			if (renID == -1 || b.rens[renID].Color == opColor) && !positions.has(target) {
				stack = append(stack, target)
				positions.insert(target)
			}

			if renID != -1 && b.rens[renID].Color == color {
				connectedIds.insert(renID)
			}
		}

		if len(positions) >= 9 {
			return false
		}
	}

	// The region must touch exactly the groups the move joins.
	if !connectedIds.equal(renIds) {
		return false
	}

	// Before the move: if the region is a single area and removing any one
	// empty point leaves a nakade, the position is already dead.
	if b.isSingleArea(positions, color, -1) {
		for _, pos := range positions {
			if b.renIds[pos] != -1 {
				continue
			}

			tmp := positions.clone()
			tmp.remove(pos)

			if b.isNakade(tmp) {
				return false
			}
		}
	}

	// After the move the remaining region must still be a single area.
	positions.remove(index)

	if !b.isSingleArea(positions, color, index) {
		return false
	}

	for _, pos := range positions {
		if b.renIds[pos] != -1 {
			continue
		}

		tmp := positions.clone()
		tmp.remove(pos)

		if b.isNakade(tmp) {
			return true
		}
	}

	return false
}

// isNakade reports whether the positions form a shape reducible to one
// eye: at most six stones inside a 3x3 box with a vital point connected
// to all other stones orthogonally plus at most one diagonal (a corner
// diagonal when the shape touches a true board corner).
func (b *Board) isNakade(positions posSet) bool {
	const length = 5

	arounds := [4]int{1, -1, length, -length}
	horizontals := [4]int{1, -1, 1, -1}
	verticals := [4]int{length, length, -length, -length}

	if len(positions) == 0 || len(positions) >= 7 {
		return false
	}

	startX := b.width - 2
	startY := b.height - 2
	endX := 0
	endY := 0

	for _, p := range positions {
		x := b.posX(p)
		y := b.posY(p)

		startX = min(x, startX)
		startY = min(y, startY)
		endX = max(x, endX)
		endY = max(y, endY)
	}

	// No vital point exists in shapes wider than the 3x3 box.
	if endX-startX > 3 || endY-startY > 3 {
		return false
	}

	var board [length * length]int
	var corner [length * length]int

	for _, p := range positions {
		srcX := b.posX(p)
		srcY := b.posY(p)
		dstX := srcX - startX + 1
		dstY := srcY - startY + 1

		board[dstY*length+dstX] = 1

		if (srcX == 0 || srcX == b.width-3) && (srcY == 0 || srcY == b.height-3) {
			corner[dstY*length+dstX] = 1
		}
	}

	for y := 1; y < length-1; y++ {
		for x := 1; x < length-1; x++ {
			p := y*length + x

			if board[p] != 1 {
				continue
			}

			directConnections := 0
			for _, a := range arounds {
				directConnections += board[p+a]
			}

			skewConnections := 0
			cornerConnections := 0

			for i := 0; i < 4; i++ {
				v := verticals[i]
				h := horizontals[i]

				if board[p+v+h] != 1 {
					continue
				}

				if cornerConnections == 0 && corner[p+v] == 1 && board[p+v] == 1 {
					cornerConnections = 1
				} else if cornerConnections == 0 && corner[p+h] == 1 && board[p+h] == 1 {
					cornerConnections = 1
				} else if skewConnections == 0 && board[p+v] == 1 && board[p+h] == 1 {
					skewConnections = 1
				}
			}

			if directConnections+skewConnections+cornerConnections >= len(positions)-1 {
				return true
			}
		}
	}

	return false
}

// isSingleArea reports whether every listed position lies in one
// connected area of empty or opponent cells, ignoring excludedIndex.
func (b *Board) isSingleArea(positions posSet, color, excludedIndex int) bool {
	opColor := Opposite(color)
	var areas posSet

	stack := []int{positions.first()}
	areas.insert(positions.first())

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, a := range b.arounds() {
			target := pos + a
			renID := b.renIds[target]

			if (renID == -1 || b.rens[renID].Color == opColor) &&
				target != excludedIndex && !areas.has(target) {
				stack = append(stack, target)
				areas.insert(target)
			}
		}
	}

	for _, p := range positions {
		if !areas.has(p) {
			return false
		}
	}

	return true
}
