package goban

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
)

// GetState returns a compact, deterministic encoding of the board: the
// packed pattern words, one ko word, and one history word per color.
func (b *Board) GetState() []int32 {
	state := b.pattern.Values()

	state = append(state, int32((b.koIndex+1)<<2|(b.koColor+1)))

	blackHistories := b.histories[0].Get()
	whiteHistories := b.histories[1].Get()

	state = append(state, int32(
		(blackHistories[0]+1)<<20|
			(blackHistories[1]+1)<<10|
			(blackHistories[2]+1)))
	state = append(state, int32(
		(whiteHistories[0]+1)<<20|
			(whiteHistories[1]+1)<<10|
			(whiteHistories[2]+1)))

	return state
}

// LoadState restores a board from a GetState encoding by replaying the
// stone placement, then restoring ko and the histories. History fields
// decoding to absent entries are skipped, so states saved near the start
// of a game load cleanly.
func (b *Board) LoadState(state []int32) {
	b.Clear()

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			pos := y*b.Width() + x
			value := state[pos/16] >> uint((pos%16)*2) & 3

			if value == 1 {
				b.Play(x, y, Black)
			} else if value == 2 {
				b.Play(x, y, White)
			}
		}
	}

	koInfo := state[len(state)-3]

	b.koIndex = int(koInfo>>2&0x3FFFF) - 1
	b.koColor = int(koInfo&3) - 1

	b.histories[0].Clear()
	b.histories[1].Clear()

	for i := 0; i < 3; i++ {
		blackHistory := int(state[len(state)-2]>>uint(20-i*10)&0x3FF) - 1
		whiteHistory := int(state[len(state)-1]>>uint(20-i*10)&0x3FF) - 1

		if blackHistory != -1 {
			b.histories[0].Add(blackHistory)
		}
		if whiteHistory != -1 {
			b.histories[1].Add(whiteHistory)
		}
	}

	b.areaUpdated = false
	b.shichoUpdated = false
}

// GetPatterns returns the packed stone-arrangement words.
func (b *Board) GetPatterns() []int32 {
	return b.pattern.Values()
}

// PatternHash hashes the stone arrangement. Positions with the same hash
// count as repetitions for the superko rule.
func (b *Board) PatternHash() uint64 {
	h := xxhash.New64()
	var buf [4]byte

	for _, v := range b.pattern.values {
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		h.Write(buf[:])
	}

	return h.Sum64()
}
