package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NeuronID identifies one neuron and its mailbox.
type NeuronID uint32

// Link is a directed, signed connection to another neuron.
type Link struct {
	// Target is the receiving neuron
	Target NeuronID `json:"target"`

	// Weight is the signed connection strength
	Weight float64 `json:"weight"`
}

// Sample is one entry of an activity snapshot.
type Sample struct {
	ID       NeuronID `json:"id"`
	Activity float64  `json:"activity"`
}

// NeuronState represents the lifecycle state of a neuron goroutine.
type NeuronState uint8

const (
	// NeuronStateIdle means the neuron has been built but not started
	NeuronStateIdle NeuronState = iota

	// NeuronStateRunning means the neuron is cycling
	NeuronStateRunning

	// NeuronStateStopping means cancellation was requested
	NeuronStateStopping

	// NeuronStateStopped means the run loop has returned
	NeuronStateStopped
)

// String returns the string representation of NeuronState.
func (s NeuronState) String() string {
	switch s {
	case NeuronStateIdle:
		return "idle"
	case NeuronStateRunning:
		return "running"
	case NeuronStateStopping:
		return "stopping"
	case NeuronStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// OverflowPolicy decides what a full mailbox does with a new value.
type OverflowPolicy uint8

const (
	// DropOldest evicts the oldest pending value to make room. Never blocks.
	DropOldest OverflowPolicy = iota

	// RejectNew drops the new value and reports ErrMailboxFull.
	RejectNew

	// Block waits for room, for the mailbox to close, or for ctx. Two
	// neurons sending to each other's full mailboxes wait on each other until
	// ctx is cancelled, so a running network under Block only unwinds through
	// Shutdown. StepAll refuses this policy.
	Block
)

// String returns the configuration name of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case RejectNew:
		return "reject-new"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy maps a configuration name to an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-oldest", "drop_oldest":
		return DropOldest, nil
	case "reject-new", "reject_new":
		return RejectNew, nil
	case "block":
		return Block, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Params is the immutable configuration shared by every neuron.
type Params struct {
	// Size is the number of neurons
	Size int

	// MaxEnergy caps the energy a neuron can accumulate
	MaxEnergy float64

	// Threshold is the firing threshold per second of elapsed time
	Threshold float64

	// MaxLink caps the number of outgoing links per neuron
	MaxLink int
}

// DefaultParams returns the stock network parameters.
func DefaultParams() Params {
	return Params{
		Size:      100,
		MaxEnergy: 10.0,
		Threshold: 0.5,
		MaxLink:   20,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	switch {
	case p.Size < 1:
		return fmt.Errorf("%w: size must be at least 1, got %d", ErrInvalidParams, p.Size)
	case !finite(p.MaxEnergy) || p.MaxEnergy <= 0:
		return fmt.Errorf("%w: max energy must be positive and finite, got %g", ErrInvalidParams, p.MaxEnergy)
	case !finite(p.Threshold) || p.Threshold < 0:
		return fmt.Errorf("%w: threshold must be finite and not negative, got %g", ErrInvalidParams, p.Threshold)
	case p.MaxLink < 0:
		return fmt.Errorf("%w: max link must not be negative, got %d", ErrInvalidParams, p.MaxLink)
	}
	return nil
}

// finite reports whether x is neither NaN nor infinite.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

const (
	// MinSleep is the polling interval of an excited neuron.
	MinSleep = time.Millisecond

	// MaxSleep caps the quiescent backoff.
	MaxSleep = 1000 * time.Millisecond

	// DefaultMailboxSize is the per-neuron mailbox capacity.
	DefaultMailboxSize = 1024

	// pruneWeight is the magnitude at or below which a decayed link is dropped.
	pruneWeight = 0.01

	// linkBias is added to activity in both the link trigger and the acceptance test.
	linkBias = 0.1
)

// CycleResult describes what one neuron cycle did.
type CycleResult struct {
	// Dt is the elapsed time in seconds used for this cycle
	Dt float64

	// Recv is the drained input sum after noise injection
	Recv float64

	// Received is the number of mailbox values drained
	Received int

	// Fired reports whether the firing branch ran
	Fired bool

	// LinkFormed reports whether a new link was appended
	LinkFormed bool

	// Delivered counts signals accepted by target mailboxes
	Delivered int

	// Dropped counts signals that could not be delivered
	Dropped int

	// Sleep is the interval to wait before the next cycle
	Sleep time.Duration
}

// NeuronStats is a point-in-time copy of a neuron's state. Dropped counts
// values evicted or rejected by this neuron's own mailbox; Undelivered counts
// outgoing signals the neuron failed to hand to another mailbox.
type NeuronStats struct {
	ID          NeuronID      `json:"id"`
	State       string        `json:"state"`
	Cycles      uint64        `json:"cycles"`
	Fires       uint64        `json:"fires"`
	Energy      float64       `json:"energy"`
	Activity    float64       `json:"activity"`
	Links       []Link        `json:"links"`
	Sleep       time.Duration `json:"sleep"`
	Pending     int           `json:"pending"`
	Dropped     uint64        `json:"dropped"`
	Undelivered uint64        `json:"undelivered"`
	LastCycleAt time.Time     `json:"last_cycle_at"`
}
