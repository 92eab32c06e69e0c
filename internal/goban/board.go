package goban

// Board is the rules engine. The logical width x height grid is stored
// inside a border-padded (width+2) x (height+2) grid so neighbor lookups
// never have to branch on edges; the border cells belong to a sentinel
// group with id 0 and color Edge.
//
// renIds[i] is -1 for an empty cell, otherwise the id of the group owning
// the cell. A group id is always the position of one of its stones, and
// rens[id] holds the group record. Territory and shicho data are lazy:
// every mutation invalidates them, queries recompute on demand.
type Board struct {
	width  int // padded
	height int // padded
	length int

	renIds []int
	rens   []Ren

	areaIds   [2][]int
	areaFlags [2][]bool

	koIndex int
	koColor int

	histories [2]History
	pattern   Pattern

	areaUpdated   bool
	shichoUpdated bool
}

// NewBoard creates an empty board of the given logical size.
func NewBoard(width, height int) *Board {
	b := &Board{
		width:   width + 2,
		height:  height + 2,
		koIndex: -1,
		koColor: Empty,
		pattern: NewPattern(width, height),
	}
	b.length = b.width * b.height
	b.renIds = make([]int, b.length)
	b.rens = make([]Ren, b.length)

	for c := 0; c < 2; c++ {
		b.areaIds[c] = make([]int, b.length)
		b.areaFlags[c] = make([]bool, b.length)
	}

	for i := range b.renIds {
		b.renIds[i] = -1
	}

	b.histories[0] = NewHistory()
	b.histories[1] = NewHistory()

	// Sentinel group for the border.
	b.rens[0].Color = Edge
	b.rens[0].Spaces.insert(-1)

	for i := 0; i < b.width; i++ {
		b.renIds[i] = 0
		b.renIds[b.width*(b.height-1)+i] = 0
	}
	for i := 1; i < b.height-1; i++ {
		b.renIds[b.width*i] = 0
		b.renIds[b.width*i+b.width-1] = 0
	}

	return b
}

// Clear resets the interior of the board to the empty position.
func (b *Board) Clear() {
	for y := 0; y < b.height-2; y++ {
		for x := 0; x < b.width-2; x++ {
			index := b.index(x, y)
			b.renIds[index] = -1
			b.rens[index].clear()
		}
	}

	b.areaUpdated = false
	b.shichoUpdated = false

	b.koIndex = -1
	b.koColor = Empty

	b.histories[0].Clear()
	b.histories[1].Clear()

	b.pattern.Clear()
}

// Width returns the logical board width.
func (b *Board) Width() int {
	return b.width - 2
}

// Height returns the logical board height.
func (b *Board) Height() int {
	return b.height - 2
}

func (b *Board) arounds() [4]int {
	return [4]int{-1, -b.width, 1, b.width}
}

func (b *Board) validPosition(x, y int) bool {
	return x >= 0 && x < b.width-2 && y >= 0 && y < b.height-2
}

func (b *Board) index(x, y int) int {
	return (y+1)*b.width + (x + 1)
}

func (b *Board) posX(index int) int {
	return index%b.width - 1
}

func (b *Board) posY(index int) int {
	return index/b.width - 1
}

// Play places a stone and returns the number of captured stones, or -1 if
// the move is illegal. Off-board coordinates are a pass, which only clears
// the ko state.
func (b *Board) Play(x, y, color int) int {
	if !b.validPosition(x, y) {
		b.koIndex = -1
		b.koColor = Empty
		return 0
	}

	index := b.index(x, y)
	opColor := Opposite(color)

	if !b.isEnabled(index, color, false) {
		return -1
	}

	b.put(index, color)

	if color == Black {
		b.histories[0].Add(index)
	} else if color == White {
		b.histories[1].Add(index)
	}

	removed := 0

	for _, a := range b.arounds() {
		renID := b.renIds[index+a]
		switch {
		case renID == -1:
			// empty neighbor
		case b.rens[renID].Color == color && renID != b.renIds[index]:
			b.mergeRen(index, index+a)
		case b.rens[renID].Color == opColor && len(b.rens[renID].Spaces) == 0:
			removed += len(b.rens[renID].Positions)
			b.removeRen(index + a)
			b.koIndex = index + a
		}
	}

	// Ko arises only from a single-stone capture that leaves the placed
	// stone alone in atari.
	ren := &b.rens[b.renIds[index]]

	if removed != 1 || len(ren.Positions) > 1 || len(ren.Spaces) > 1 {
		b.koIndex = -1
		b.koColor = Empty
	} else {
		b.koColor = opColor
	}

	b.areaUpdated = false
	b.shichoUpdated = false

	return removed
}

// GetKo returns the coordinates at which color is currently ko-banned, or
// (-1, -1) if there is no ko for that color.
func (b *Board) GetKo(color int) (int, int) {
	if b.koIndex != -1 && color == b.koColor {
		return b.posX(b.koIndex), b.posY(b.koIndex)
	}
	return -1, -1
}

// GetHistories returns the most recent move coordinates for a color,
// oldest first. Pass entries are omitted.
func (b *Board) GetHistories(color int) [][2]int {
	var moves [][2]int

	historyIndex := 0
	if color != Black {
		historyIndex = 1
	}

	for _, index := range b.histories[historyIndex].Get() {
		if index < 0 {
			continue
		}
		x := b.posX(index)
		y := b.posY(index)
		if b.validPosition(x, y) {
			moves = append(moves, [2]int{x, y})
		}
	}

	return moves
}

// GetColor returns the color of the stone at (x, y).
func (b *Board) GetColor(x, y int) int {
	return b.getColor(b.index(x, y))
}

// GetColors returns the stone colors of every cell, row-major, multiplied
// by the reference color (so passing White swaps black and white).
func (b *Board) GetColors(color int) []int {
	colors := make([]int, b.Width()*b.Height())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			colors[y*b.Width()+x] = b.GetColor(x, y) * color
		}
	}
	return colors
}

// GetRenSize returns the number of stones in the group at (x, y).
func (b *Board) GetRenSize(x, y int) int {
	renID := b.renIds[b.index(x, y)]
	if renID == -1 {
		return 0
	}
	return len(b.rens[renID].Positions)
}

// GetRenSpace returns the number of liberties of the group at (x, y).
func (b *Board) GetRenSpace(x, y int) int {
	renID := b.renIds[b.index(x, y)]
	if renID == -1 {
		return 0
	}
	return len(b.rens[renID].Spaces)
}

// IsEnabled reports whether a stone of the given color may be placed at
// (x, y). With checkSeki, moves classified as seki are rejected too.
func (b *Board) IsEnabled(x, y, color int, checkSeki bool) bool {
	return b.isEnabled(b.index(x, y), color, checkSeki)
}

// GetEnableds returns the legality of every cell, row-major.
func (b *Board) GetEnableds(color int, checkSeki bool) []bool {
	enableds := make([]bool, b.Width()*b.Height())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			enableds[y*b.Width()+x] = b.isEnabled(b.index(x, y), color, checkSeki)
		}
	}
	return enableds
}

// CopyFrom makes this board an exact copy of the other board. Both boards
// must have the same dimensions. Lazy caches are invalidated, not copied.
func (b *Board) CopyFrom(o *Board) {
	copy(b.renIds, o.renIds)

	for i := range b.rens {
		b.rens[i].copyFrom(&o.rens[i])
	}

	b.koIndex = o.koIndex
	b.koColor = o.koColor

	b.pattern.CopyFrom(&o.pattern)

	b.histories[0] = o.histories[0]
	b.histories[1] = o.histories[1]

	b.areaUpdated = false
	b.shichoUpdated = false
}

func (b *Board) clone() *Board {
	c := NewBoard(b.Width(), b.Height())
	c.CopyFrom(b)
	return c
}

// put places a stone without merging or removing groups.
func (b *Board) put(index, color int) {
	b.pattern.Put(b.posX(index), b.posY(index), color)

	b.renIds[index] = index
	b.rens[index].Color = color
	b.rens[index].Positions.insert(index)

	for _, a := range b.arounds() {
		renID := b.renIds[index+a]
		if renID == -1 {
			b.rens[index].Spaces.insert(index + a)
		} else {
			b.rens[renID].Spaces.remove(index)
		}
	}
}

// mergeRen folds the group at srcIndex into the group at dstIndex.
func (b *Board) mergeRen(srcIndex, dstIndex int) {
	srcID := b.renIds[srcIndex]
	dstID := b.renIds[dstIndex]

	b.rens[dstID].Positions.insertAll(b.rens[srcID].Positions)
	b.rens[dstID].Spaces.insertAll(b.rens[srcID].Spaces)

	for _, pos := range b.rens[srcID].Positions {
		b.renIds[pos] = dstID
	}

	b.rens[srcID].clear()
}

// removeRen removes a captured group and returns its liberties to the
// surrounding groups.
func (b *Board) removeRen(index int) {
	renID := b.renIds[index]
	color := b.rens[renID].Color

	for _, pos := range b.rens[renID].Positions {
		b.renIds[pos] = -1
		b.pattern.Remove(b.posX(pos), b.posY(pos), color)

		for _, a := range b.arounds() {
			targetID := b.renIds[pos+a]
			if targetID != -1 {
				b.rens[targetID].Spaces.insert(pos)
			}
		}
	}

	b.rens[renID].clear()
}

func (b *Board) getColor(index int) int {
	renID := b.renIds[index]
	if renID == -1 {
		return Empty
	}
	return b.rens[renID].Color
}

func (b *Board) isEnabled(index, color int, checkSeki bool) bool {
	// Occupied cell.
	if b.renIds[index] != -1 {
		return false
	}

	// Ko ban.
	if index == b.koIndex && color == b.koColor {
		return false
	}

	if checkSeki && b.isSeki(index, color) {
		return false
	}

	opColor := Opposite(color)

	for _, a := range b.arounds() {
		target := index + a

		// Adjacent empty cell.
		if b.renIds[target] == -1 {
			return true
		}

		ren := &b.rens[b.renIds[target]]

		// Adjacent friendly group with spare liberties.
		if ren.Color == color && len(ren.Spaces) > 1 {
			return true
		}

		// Adjacent enemy group that this move captures.
		if ren.Color == opColor && len(ren.Spaces) == 1 {
			return true
		}
	}

	return false
}
