package infer

import (
	"fmt"
	"sync"
)

// ModelFactory creates the Model for one device. It is called once per
// executor; errors abort Processor construction.
type ModelFactory func(device int) (Model, error)

// Processor is the single front door to inference. It owns one Executor
// per (device x thread) and routes each request to the least loaded one.
type Processor struct {
	mu        sync.Mutex
	executors []*Executor
}

// NewProcessor builds the executor fleet: threadsPerDevice executors for
// every listed device, each with its own Model from the factory.
func NewProcessor(factory ModelFactory, devices []int, batchSize, threadsPerDevice, inputLen, outputLen int) (*Processor, error) {
	var executors []*Executor

	for _, device := range devices {
		for i := 0; i < threadsPerDevice; i++ {
			model, err := factory(device)
			if err != nil {
				for _, e := range executors {
					e.Close()
				}
				return nil, fmt.Errorf("infer: device %d: %w", device, err)
			}
			executors = append(executors, NewExecutor(model, batchSize, inputLen, outputLen))
		}
	}

	if len(executors) == 0 {
		return nil, fmt.Errorf("infer: no executors: %w", ErrResourceUnavailable)
	}

	return &Processor{executors: executors}, nil
}

// Execute routes one request of size items to the executor with the
// lowest waiting+reserved load, reserves the slots, and blocks until the
// batch containing the request has run. It returns false when the request
// was interrupted by shutdown or a model failure.
func (p *Processor) Execute(inputs, outputs []float32, size int) bool {
	p.mu.Lock()

	minIndex := 0
	minCount := p.executors[0].WaitingCount()

	for i := 1; i < len(p.executors); i++ {
		if count := p.executors[i].WaitingCount(); count < minCount {
			minIndex = i
			minCount = count
		}
	}

	p.executors[minIndex].AddReserved(size)
	p.mu.Unlock()

	return p.executors[minIndex].Execute(inputs, outputs, size)
}

// Close shuts down every executor, draining their queues.
func (p *Processor) Close() {
	for _, e := range p.executors {
		e.Close()
	}
}
