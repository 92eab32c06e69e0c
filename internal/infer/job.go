package infer

// job is one queued inference request. The submitter blocks on wait until
// the executor has filled outputs and called notify; interrupted marks
// jobs completed by a shutdown drain instead of a forward pass.
type job struct {
	inputs      []float32
	outputs     []float32
	size        int
	interrupted bool
	done        chan struct{}
}

func newJob(inputs, outputs []float32, size int) *job {
	return &job{
		inputs:  inputs,
		outputs: outputs,
		size:    size,
		done:    make(chan struct{}),
	}
}

func (j *job) wait() {
	<-j.done
}

func (j *job) notify() {
	close(j.done)
}
