package search

import (
	"maru/internal/goban"
	"maru/internal/infer"
)

// Evaluator turns one board position into candidate policies and a value
// through a single Processor call. Results are memoized: the first
// Evaluate fills them, later calls are no-ops.
type Evaluator struct {
	processor *infer.Processor
	komi      float64
	rule      int
	superko   bool

	policies  []Policy
	value     float32
	evaluated bool
}

func newEvaluator(processor *infer.Processor, komi float64, rule int, superko bool) Evaluator {
	return Evaluator{
		processor: processor,
		komi:      komi,
		rule:      rule,
		superko:   superko,
	}
}

func (e *Evaluator) clear() {
	e.policies = nil
	e.value = 0
	e.evaluated = false
}

func (e *Evaluator) isEvaluated() bool {
	return e.evaluated
}

// evaluate runs inference for the given side to move and decodes the
// outputs into legal, non-territory candidate moves and a value signed
// for that side. An interrupted request leaves a terminal result: no
// policies, neutral value.
func (e *Evaluator) evaluate(board *goban.Board, color int) {
	if e.evaluated {
		return
	}

	inputs := board.GetInputs(color, e.komi, e.rule, e.superko)
	outputs := make([]float32, goban.ModelOutputSize)

	if !e.processor.Execute(inputs, outputs, 1) {
		e.policies = nil
		e.value = 0
		e.evaluated = true
		return
	}

	width := board.Width()
	height := board.Height()
	offsetX := (goban.ModelSize - width) / 2
	offsetY := (goban.ModelSize - height) / 2

	enableds := board.GetEnableds(color, true)
	territories := board.GetTerritories(color)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			boardIndex := y*width + x
			modelIndex := (offsetY+y)*goban.ModelSize + (offsetX + x)

			if enableds[boardIndex] && territories[boardIndex] == goban.Empty {
				e.policies = append(e.policies, Policy{X: x, Y: y, Prior: outputs[modelIndex]})
			}
		}
	}

	e.value = outputs[goban.ModelPredictions*goban.ModelSize*goban.ModelSize]*2 - 1

	if color == goban.White {
		e.value = -e.value
	}

	e.evaluated = true
}

func (e *Evaluator) getPolicies() []Policy {
	return e.policies
}

func (e *Evaluator) getValue() float32 {
	return e.value
}
