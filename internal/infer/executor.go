package infer

import "sync"

// Executor owns one Model and one goroutine servicing a FIFO of inference
// jobs. On each wakeup it drains jobs from the head until the accumulated
// item count would exceed the batch size, concatenates their inputs, runs
// the model once, and scatters the outputs back.
//
// waiting counts the items sitting in the queue; reserved counts items the
// Processor has routed here but not yet enqueued. Their sum is the load
// metric the Processor balances on.
type Executor struct {
	mu   sync.Mutex
	cond *sync.Cond

	model     Model
	batchSize int
	inputLen  int
	outputLen int

	queue      []*job
	waiting    int
	reserved   int
	terminated bool

	done chan struct{}
}

// NewExecutor starts the executor goroutine. inputLen and outputLen are
// the per-item tensor lengths.
func NewExecutor(model Model, batchSize, inputLen, outputLen int) *Executor {
	e := &Executor{
		model:     model,
		batchSize: batchSize,
		inputLen:  inputLen,
		outputLen: outputLen,
		done:      make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)

	go e.run()

	return e
}

// Execute queues a job of size items and blocks until it completes.
// It returns false when the executor shut down or the model failed before
// the outputs were produced.
func (e *Executor) Execute(inputs, outputs []float32, size int) bool {
	j := newJob(inputs, outputs, size)

	e.mu.Lock()
	if e.terminated {
		e.mu.Unlock()
		return false
	}
	e.queue = append(e.queue, j)
	e.waiting += size
	e.reserved = max(0, e.reserved-size)
	e.cond.Broadcast()
	e.mu.Unlock()

	j.wait()

	return !j.interrupted
}

// WaitingCount returns the queued plus reserved item count.
func (e *Executor) WaitingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waiting + e.reserved
}

// AddReserved raises the reservation by n items.
func (e *Executor) AddReserved(n int) {
	e.mu.Lock()
	e.reserved += n
	e.mu.Unlock()
}

// Close wakes the executor, waits for it to drain the queue, and joins
// the goroutine. Every pending job is completed with the interrupted flag
// so no waiter is orphaned.
func (e *Executor) Close() {
	e.mu.Lock()
	e.terminated = true
	e.cond.Broadcast()
	e.mu.Unlock()

	<-e.done
}

func (e *Executor) run() {
	defer close(e.done)

	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.terminated {
			e.cond.Wait()
		}

		if e.terminated {
			for _, j := range e.queue {
				j.interrupted = true
				j.notify()
			}
			e.queue = nil
			e.mu.Unlock()
			return
		}

		var jobs []*job
		total := 0

		for len(e.queue) > 0 {
			j := e.queue[0]
			if len(jobs) > 0 && total+j.size > e.batchSize {
				break
			}
			e.queue = e.queue[1:]
			e.waiting -= j.size
			jobs = append(jobs, j)
			total += j.size
		}
		e.mu.Unlock()

		e.forward(jobs, total)

		for _, j := range jobs {
			j.notify()
		}
	}
}

func (e *Executor) forward(jobs []*job, total int) {
	allInputs := make([]float32, total*e.inputLen)
	allOutputs := make([]float32, total*e.outputLen)

	offset := 0
	for _, j := range jobs {
		copy(allInputs[offset*e.inputLen:], j.inputs[:j.size*e.inputLen])
		offset += j.size
	}

	if err := e.model.Forward(allInputs, allOutputs, total); err != nil {
		for _, j := range jobs {
			j.interrupted = true
		}
		return
	}

	offset = 0
	for _, j := range jobs {
		copy(j.outputs[:j.size*e.outputLen], allOutputs[offset*e.outputLen:])
		offset += j.size
	}
}
