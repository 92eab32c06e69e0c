package infer

import (
	"errors"
	"sync"
	"testing"
)

func TestProcessorExecute(t *testing.T) {
	model := &echoModel{}

	p, err := NewProcessor(
		func(device int) (Model, error) { return model, nil },
		[]int{-1}, 8, 2, testInputLen, testOutputLen)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inputs := []float32{float32(i), 0}
			outputs := make([]float32, testOutputLen)
			if !p.Execute(inputs, outputs, 1) {
				t.Errorf("request %d interrupted", i)
				return
			}
			if outputs[0] != float32(i) {
				t.Errorf("request %d outputs = %v", i, outputs)
			}
		}(i)
	}
	wg.Wait()
}

func TestProcessorFactoryError(t *testing.T) {
	boom := errors.New("no device")

	_, err := NewProcessor(
		func(device int) (Model, error) {
			if device == 1 {
				return nil, boom
			}
			return &echoModel{}, nil
		},
		[]int{0, 1}, 8, 1, testInputLen, testOutputLen)

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped factory error", err)
	}
}

func TestProcessorNoExecutors(t *testing.T) {
	_, err := NewProcessor(
		func(device int) (Model, error) { return &echoModel{}, nil },
		nil, 8, 1, testInputLen, testOutputLen)

	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("err = %v, want ErrResourceUnavailable", err)
	}
}

func TestProcessorCloseInterruptsPending(t *testing.T) {
	gate := make(chan struct{})
	model := &echoModel{gate: gate}

	p, err := NewProcessor(
		func(device int) (Model, error) { return model, nil },
		[]int{-1}, 1, 1, testInputLen, testOutputLen)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	results := make(chan bool, 4)
	for i := 0; i < 4; i++ {
		go func() {
			inputs := []float32{1, 0}
			outputs := make([]float32, testOutputLen)
			results <- p.Execute(inputs, outputs, 1)
		}()
	}

	// Release the gate and close; every waiter must come back.
	close(gate)
	p.Close()

	for i := 0; i < 4; i++ {
		<-results
	}
}
