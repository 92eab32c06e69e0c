package goban

// updateArea rebuilds the territory-candidate regions for both colors.
//
// For each color c, a region is the maximal flood of cells that are empty
// or hold the opponent's stones. A region starts out confirmed for c and
// is demoted when some interior cell touches a different set of friendly
// groups than the region's seed does; an interior cell with no friendly
// neighbor at all is demoted individually. A group of c stays fixed
// (alive) only while it borders at least two confirmed regions, and the
// regions of a demoted group are demoted in turn, until fixpoint.
func (b *Board) updateArea() {
	if b.areaUpdated {
		return
	}

	for c := 0; c < 2; c++ {
		color := Black
		if c == 1 {
			color = White
		}
		opColor := Opposite(color)

		// Groups of this color, reset to the confirmed state.
		var renIds posSet

		for index := 0; index < b.length; index++ {
			renID := b.renIds[index]
			if renID != -1 && b.rens[renID].Color == color {
				renIds.insert(renID)
			}
		}

		for _, renID := range renIds {
			b.rens[renID].Areas = b.rens[renID].Areas[:0]
			b.rens[renID].Fixed = true
		}

		checks := make([]bool, b.length)

		for index := 0; index < b.length; index++ {
			if checks[index] {
				continue
			}

			indexColor := b.getColor(index)

			if indexColor != Empty && indexColor != opColor {
				b.areaIds[c][index] = -1
				continue
			}

			// Friendly groups touching the region seed.
			var connectedIds posSet

			for _, a := range b.arounds() {
				if b.getColor(index+a) == color {
					connectedIds.insert(b.renIds[index+a])
				}
			}

			stack := []int{index}
			b.areaFlags[c][index] = true

			for len(stack) > 0 {
				pos := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if checks[pos] {
					continue
				}
				checks[pos] = true

				b.areaIds[c][pos] = index

				var aroundIds posSet

				for _, a := range b.arounds() {
					targetID := b.renIds[pos+a]
					if targetID != -1 && b.rens[targetID].Color == color {
						aroundIds.insert(targetID)
					}
				}

				// A cell with no friendly neighbor is unconfirmed on its own.
				if len(aroundIds) == 0 {
					b.areaFlags[c][pos] = false
				}

				// A cell bordering different friendly groups than the seed
				// demotes the whole region.
				if !aroundIds.equal(connectedIds) {
					b.areaFlags[c][index] = false
				}

				for _, a := range b.arounds() {
					around := pos + a
					aroundColor := b.getColor(around)
					if aroundColor == Empty || aroundColor == opColor {
						stack = append(stack, around)
					}
				}
			}

			if b.areaFlags[c][index] {
				for _, renID := range connectedIds {
					b.rens[renID].Areas.insert(index)
				}
			}
		}

		// Demote until fixpoint: a group needs two confirmed regions to
		// stay fixed, and losing a group unconfirms its regions.
		updated := true

		for updated {
			updated = false

			for _, renID := range renIds {
				if !b.rens[renID].Fixed {
					continue
				}

				fixedCount := 0
				for _, areaID := range b.rens[renID].Areas {
					if b.areaFlags[c][areaID] {
						fixedCount++
					}
				}

				if fixedCount >= 2 {
					continue
				}

				b.rens[renID].Fixed = false

				for _, areaID := range b.rens[renID].Areas {
					if b.areaFlags[c][areaID] {
						b.areaFlags[c][areaID] = false
						updated = true
					}
				}
			}
		}
	}

	b.areaUpdated = true
}

// GetTerritories returns the confirmed ownership of every cell, row-major,
// multiplied by the reference color: stones of fixed groups and cells of
// confirmed regions carry their owner's color, everything else is Empty.
func (b *Board) GetTerritories(color int) []int {
	b.updateArea()

	territories := make([]int, b.Width()*b.Height())

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			index := b.index(x, y)
			renID := b.renIds[index]
			cell := y*b.Width() + x

			switch {
			case renID != -1 && b.rens[renID].Fixed:
				territories[cell] = b.rens[renID].Color * color
			case b.areaIds[0][index] != -1 && b.areaFlags[0][b.areaIds[0][index]]:
				territories[cell] = Black * color
			case b.areaIds[1][index] != -1 && b.areaFlags[1][b.areaIds[1][index]]:
				territories[cell] = White * color
			default:
				territories[cell] = Empty
			}
		}
	}

	return territories
}

// GetOwners returns the final owner of every cell under the given rule,
// row-major, multiplied by the reference color. Starting from the
// confirmed territories, remaining stones own their own cells, and under
// non-Japanese rules empty regions bounded by a single color belong to
// that color.
func (b *Board) GetOwners(color, rule int) []int {
	owners := b.GetTerritories(color)

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			cell := y*b.Width() + x
			if owners[cell] == Empty {
				owners[cell] = b.GetColor(x, y) * color
			}
		}
	}

	if rule == RuleJP {
		return owners
	}

	areas := make([]int, b.length)
	checks := make([]bool, b.length)

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			index := b.index(x, y)

			if checks[index] || b.GetColor(x, y) != Empty {
				continue
			}

			var positions posSet
			var colors posSet
			stack := []int{index}

			for len(stack) > 0 {
				pos := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if checks[pos] {
					continue
				}
				checks[pos] = true
				positions.insert(pos)

				for _, a := range b.arounds() {
					target := pos + a
					targetColor := b.getColor(target)

					if targetColor == Empty {
						stack = append(stack, target)
					} else if targetColor != Edge {
						colors.insert(targetColor)
					}
				}
			}

			if len(colors) == 1 {
				for _, pos := range positions {
					areas[pos] = colors.first()
				}
			}
		}
	}

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			index := b.index(x, y)
			cell := y*b.Width() + x

			if owners[cell] == Empty {
				owners[cell] = areas[index] * color
			}
		}
	}

	return owners
}
