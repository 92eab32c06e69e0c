package search

import (
	"testing"

	"maru/internal/goban"
	"maru/internal/infer"
)

// rampModel is a deterministic stand-in for the network: the policy of
// each cell follows a fixed ramp and the value head is constant.
type rampModel struct{}

func (rampModel) Forward(inputs, outputs []float32, n int) error {
	length := goban.ModelSize * goban.ModelSize

	for i := 0; i < n; i++ {
		out := outputs[i*goban.ModelOutputSize : (i+1)*goban.ModelOutputSize]
		for j := 0; j < length; j++ {
			out[j] = float32((j*37)%101) / 1000.0
		}
		out[goban.ModelPredictions*length] = 0.7
	}

	return nil
}

func testProcessor(t *testing.T) *infer.Processor {
	t.Helper()

	p, err := infer.NewProcessor(
		func(device int) (infer.Model, error) { return rampModel{}, nil },
		[]int{-1}, 16, 1,
		goban.ModelInputSize, goban.ModelOutputSize)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	t.Cleanup(p.Close)
	return p
}

func testConfig(p *infer.Processor) Config {
	return Config{
		Processor: p,
		Width:     19,
		Height:    19,
		Komi:      7.5,
		Rule:      goban.RuleCH,
	}
}
