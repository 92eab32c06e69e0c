package goban

// GetInputs builds the feature tensor for the network: ModelFeatures board
// planes plus a mask plane on the centered ModelSize grid, then the scalar
// tail. color is the side to move; all stone planes are relative to it.
func (b *Board) GetInputs(color int, komi float64, rule int, superko bool) []float32 {
	length := ModelSize * ModelSize
	offsetX := (ModelSize - b.Width()) / 2
	offsetY := (ModelSize - b.Height()) / 2

	b.updateShicho()

	inputs := make([]float32, ModelInputSize)

	// Stone planes: empty, own/opponent stones, ladder flags, liberty
	// buckets, and the on-board mask.
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			renID := b.renIds[b.index(x, y)]
			index := (offsetY+y)*ModelSize + (offsetX + x)

			inputs[length*ModelFeatures+index] = 1.0

			if renID == -1 {
				inputs[index] = 1.0
				continue
			}

			shicho := float32(0.0)
			if b.rens[renID].Shicho {
				shicho = 1.0
			}
			size := min(len(b.rens[renID].Spaces), 8)

			if b.rens[renID].Color*color == Black {
				inputs[length*1+index] = 1.0
				inputs[length*2+index] = shicho
				inputs[length*(2+size)+index] = 1.0
			} else if b.rens[renID].Color*color == White {
				inputs[length*14+index] = 1.0
				inputs[length*15+index] = shicho
				inputs[length*(15+size)+index] = 1.0
			}
		}
	}

	// Move histories, most recent first.
	ownHistories := b.histories[(1-color)/2].Get()
	opHistories := b.histories[(1+color)/2].Get()

	for i := 0; i < 3; i++ {
		own := ownHistories[2-i]
		if own > 0 {
			x := b.posX(own)
			y := b.posY(own)
			inputs[length*(11+i)+(offsetY+y)*ModelSize+(offsetX+x)] = 1.0
		}

		op := opHistories[2-i]
		if op > 0 {
			x := b.posX(op)
			y := b.posY(op)
			inputs[length*(24+i)+(offsetY+y)*ModelSize+(offsetX+x)] = 1.0
		}
	}

	// Rings at distance one to four from the board edge.
	for i := 0; i < 4; i++ {
		beginX := offsetX + i
		endX := offsetX + b.Width() - i
		beginY := offsetY + i
		endY := offsetY + b.Height() - i

		for y := beginY; y < endY; y++ {
			inputs[length*(27+i)+y*ModelSize+beginX] = 1.0
			inputs[length*(27+i)+y*ModelSize+endX-1] = 1.0
		}
		for x := beginX; x < endX; x++ {
			inputs[length*(27+i)+beginY*ModelSize+x] = 1.0
			inputs[length*(27+i)+(endY-1)*ModelSize+x] = 1.0
		}
	}

	// Ko point for the side to move.
	if b.koColor == color && b.koIndex > 0 {
		x := b.posX(b.koIndex)
		y := b.posY(b.koIndex)
		inputs[length*31+(offsetY+y)*ModelSize+(offsetX+x)] = 1.0
	}

	// Scalar tail.
	infoOffset := (ModelFeatures + 1) * length

	if color == Black {
		inputs[infoOffset+0] = 1.0
	} else {
		inputs[infoOffset+1] = 1.0
	}

	inputs[infoOffset+2] = float32(komi) * float32(color) / 13.0

	if superko {
		inputs[infoOffset+3] = 1.0
	}

	if b.koColor == color && b.koIndex > 0 {
		inputs[infoOffset+4] = 1.0
	}

	if rule != RuleJP {
		inputs[infoOffset+5] = 1.0
	} else {
		inputs[infoOffset+6] = 1.0
	}

	return inputs
}
