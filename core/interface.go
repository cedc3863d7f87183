package core

import (
	"context"
	"time"
)

// ActivityTable publishes each neuron's latest activity for the others to read.
//
// Each neuron writes only its own key, so writers never conflict. There is no
// atomicity across keys: a reader may see a fresh value for one neuron and a
// stale value for another, and a Snapshot is not a consistent cut.
type ActivityTable interface {
	// Publish overwrites the entry for id.
	Publish(id NeuronID, activity float64)

	// Read returns the last published value for id, or 0 if there is none.
	// It never fails, including for ids outside the network.
	Read(id NeuronID) float64

	// Snapshot returns one sample per neuron in ascending id order.
	Snapshot() []Sample
}

// Clock supplies time to neurons. RealClock is used in production; ManualClock
// decouples simulations and tests from wall time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep suspends for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RandSource supplies the random draws of a neuron cycle.
type RandSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64

	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}
