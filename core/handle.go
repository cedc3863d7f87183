package core

import (
	"context"
	"fmt"
)

// Handle is returned for every launched neuron. It cancels that neuron alone
// and lets callers wait for its run loop to return.
type Handle struct {
	id     NeuronID
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// launch runs n on its own goroutine under a child of ctx.
func launch(ctx context.Context, n *Neuron, onExit func()) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:     n.ID(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer onExit()
		defer close(h.done)
		defer cancel()
		h.err = n.Run(runCtx)
	}()

	return h
}

// ID returns the neuron id.
func (h *Handle) ID() NeuronID {
	return h.id
}

// String returns a string representation of the handle.
func (h *Handle) String() string {
	return fmt.Sprintf("neuron:%d", h.id)
}

// Done is closed when the neuron's run loop has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the run loop's error once Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Stop cancels the neuron without waiting.
func (h *Handle) Stop() {
	h.cancel()
}

// Wait blocks until the run loop returns or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
