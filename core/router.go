package core

import (
	"context"
	"fmt"
)

// Router holds one mailbox per neuron id and delivers signals between them.
// The set of mailboxes is fixed when the router is built, so lookups need no
// locking.
type Router struct {
	mailboxes []*Mailbox
}

// NewRouter creates a mailbox for every id in [0, size).
func NewRouter(size, capacity int, policy OverflowPolicy) *Router {
	r := &Router{mailboxes: make([]*Mailbox, size)}
	for id := range r.mailboxes {
		r.mailboxes[id] = NewMailbox(NeuronID(id), capacity, policy)
	}
	return r
}

// Deliver sends value to target's mailbox. Errors are ErrUnknownNeuron,
// ErrMailboxClosed, ErrMailboxFull or a context error under the Block policy.
func (r *Router) Deliver(ctx context.Context, target NeuronID, value float64) error {
	mb, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("target neuron %d: %w", target, ErrUnknownNeuron)
	}
	return mb.Send(ctx, value)
}

// Lookup returns the mailbox of id.
func (r *Router) Lookup(id NeuronID) (*Mailbox, bool) {
	if int(id) >= len(r.mailboxes) {
		return nil, false
	}
	return r.mailboxes[id], true
}

// Size returns the number of mailboxes.
func (r *Router) Size() int {
	return len(r.mailboxes)
}

// Pending returns the number of queued values for id, or 0 for unknown ids.
func (r *Router) Pending(id NeuronID) int {
	mb, ok := r.Lookup(id)
	if !ok {
		return 0
	}
	return mb.Pending()
}

// Close closes every mailbox. Later deliveries fail with ErrMailboxClosed.
func (r *Router) Close() {
	for _, mb := range r.mailboxes {
		mb.Close()
	}
}
