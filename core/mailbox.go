package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Mailbox is a bounded multiple-producer, single-consumer queue of signals.
// Only the owning neuron drains it; any neuron may send to it.
type Mailbox struct {
	owner  NeuronID
	policy OverflowPolicy

	queue chan float64

	// done is closed by Close. The queue itself is never closed so that a
	// late sender cannot panic.
	done      chan struct{}
	closeOnce sync.Once

	dropped uint64
}

// NewMailbox creates a mailbox for owner. A non-positive capacity selects
// DefaultMailboxSize.
func NewMailbox(owner NeuronID, capacity int, policy OverflowPolicy) *Mailbox {
	if capacity <= 0 {
		capacity = DefaultMailboxSize
	}
	return &Mailbox{
		owner:  owner,
		policy: policy,
		queue:  make(chan float64, capacity),
		done:   make(chan struct{}),
	}
}

// Owner returns the id of the receiving neuron.
func (m *Mailbox) Owner() NeuronID {
	return m.owner
}

// Send enqueues value according to the overflow policy. Only the Block policy
// can wait, and then only until room appears, the mailbox closes or ctx ends.
func (m *Mailbox) Send(ctx context.Context, value float64) error {
	select {
	case <-m.done:
		return fmt.Errorf("neuron %d: %w", m.owner, ErrMailboxClosed)
	default:
	}

	switch m.policy {
	case Block:
		select {
		case m.queue <- value:
			return nil
		case <-m.done:
			return fmt.Errorf("neuron %d: %w", m.owner, ErrMailboxClosed)
		case <-ctx.Done():
			return ctx.Err()
		}

	case RejectNew:
		select {
		case m.queue <- value:
			return nil
		default:
			atomic.AddUint64(&m.dropped, 1)
			return fmt.Errorf("neuron %d: %w", m.owner, ErrMailboxFull)
		}

	default:
		for {
			select {
			case m.queue <- value:
				return nil
			default:
			}

			// Full: evict one pending value and retry. Another sender may take
			// the freed slot first, so loop until ours lands.
			select {
			case <-m.queue:
				atomic.AddUint64(&m.dropped, 1)
			default:
			}
		}
	}
}

// Drain removes every value currently queued and returns their sum and count.
// It never blocks; values sent concurrently may land in the next drain.
func (m *Mailbox) Drain() (sum float64, n int) {
	for {
		select {
		case v := <-m.queue:
			sum += v
			n++
		default:
			return sum, n
		}
	}
}

// Pending returns the number of queued values.
func (m *Mailbox) Pending() int {
	return len(m.queue)
}

// Capacity returns the queue bound.
func (m *Mailbox) Capacity() int {
	return cap(m.queue)
}

// Dropped returns how many values were evicted or rejected.
func (m *Mailbox) Dropped() uint64 {
	return atomic.LoadUint64(&m.dropped)
}

// Close stops accepting values. It is safe to call more than once.
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}
