// Package infer runs neural-network inference for the search: concurrent
// evaluation requests are queued onto per-device executors, batched up to
// the device's batch size, and run through a single Model call, while
// each requester blocks until its slice of the batch is done.
package infer

import "errors"

// Model is the inference primitive: one forward pass over n inputs packed
// back to back. Implementations must be safe for use from the single
// executor goroutine that owns them; executors never share a Model.
type Model interface {
	Forward(inputs, outputs []float32, n int) error
}

// ErrResourceUnavailable reports that an inference device or model file
// could not be opened at construction time.
var ErrResourceUnavailable = errors.New("infer: resource unavailable")
