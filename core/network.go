package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Network builds the neurons and their shared state, runs one goroutine per
// neuron and serves activity snapshots.
type Network struct {
	runID   string
	shared  *SharedState
	neurons []*Neuron
	handles []*Handle
	clock   Clock
	seed    uint64
	policy  OverflowPolicy
	logger  *zap.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	// Wait group for all neuron goroutines
	wg sync.WaitGroup
}

type networkOptions struct {
	clock       Clock
	randFactory RandFactory
	seed        uint64
	seeded      bool
	mailboxSize int
	policy      OverflowPolicy
	logger      *zap.Logger
	traceNeuron int
}

// Option configures a Network.
type Option func(*networkOptions)

// WithClock sets the clock used by every neuron. The default is RealClock.
func WithClock(clock Clock) Option {
	return func(o *networkOptions) { o.clock = clock }
}

// WithSeed makes the default random sources reproducible.
func WithSeed(seed uint64) Option {
	return func(o *networkOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithRandFactory replaces the per-neuron random sources. It takes precedence
// over WithSeed.
func WithRandFactory(factory RandFactory) Option {
	return func(o *networkOptions) { o.randFactory = factory }
}

// WithMailbox sets the mailbox capacity and overflow policy.
func WithMailbox(capacity int, policy OverflowPolicy) Option {
	return func(o *networkOptions) {
		o.mailboxSize = capacity
		o.policy = policy
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *networkOptions) { o.logger = logger }
}

// WithTraceNeuron logs every cycle of neuron id at debug level. A negative id
// disables tracing.
func WithTraceNeuron(id int) Option {
	return func(o *networkOptions) { o.traceNeuron = id }
}

// NewNetwork builds a network: one mailbox per id, an activity table with
// every entry at 0, and neurons seeded with energy and activity in [0, 1).
// Energy is additionally capped at MaxEnergy.
func NewNetwork(params Params, opts ...Option) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := networkOptions{
		clock:       RealClock{},
		mailboxSize: DefaultMailboxSize,
		policy:      DropOldest,
		logger:      zap.NewNop(),
		traceNeuron: -1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
	}
	if o.randFactory == nil {
		o.randFactory = SeededRandFactory(o.seed)
	}

	nw := &Network{
		runID:   uuid.NewString(),
		shared:  NewSharedState(params, o.mailboxSize, o.policy),
		neurons: make([]*Neuron, params.Size),
		clock:   o.clock,
		seed:    o.seed,
		policy:  o.policy,
	}
	nw.logger = o.logger.With(zap.String("run_id", nw.runID))

	for i := range nw.neurons {
		id := NeuronID(i)
		rnd := o.randFactory(id)
		n := newNeuron(id, nw.shared, rnd, o.clock, nw.logger)
		n.energy = min(rnd.Float64(), params.MaxEnergy)
		n.activity = rnd.Float64()
		n.trace = o.traceNeuron == i
		n.publishStats()
		nw.neurons[i] = n
	}

	nw.logger.Info("network built",
		zap.Int("size", params.Size),
		zap.Float64("max_energy", params.MaxEnergy),
		zap.Float64("threshold", params.Threshold),
		zap.Int("max_link", params.MaxLink),
		zap.Int("mailbox_size", o.mailboxSize),
		zap.Stringer("overflow_policy", o.policy),
		zap.Uint64("seed", o.seed))

	return nw, nil
}

// Start launches one goroutine per neuron. The neurons run until ctx is done
// or Shutdown is called.
func (nw *Network) Start(ctx context.Context) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()

	if nw.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	nw.cancel = cancel
	nw.handles = make([]*Handle, len(nw.neurons))
	for i, n := range nw.neurons {
		nw.wg.Add(1)
		nw.handles[i] = launch(runCtx, n, nw.wg.Done)
	}
	nw.started = true

	nw.logger.Info("network started", zap.Int("neurons", len(nw.neurons)))
	return nil
}

// Shutdown cancels every neuron and waits for them, bounded by ctx. Once all
// neurons have returned, the mailboxes are closed. Calling it again is a no-op.
func (nw *Network) Shutdown(ctx context.Context) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()

	if !nw.started {
		return ErrNotStarted
	}
	if nw.stopped {
		return nil
	}

	nw.cancel()

	done := make(chan struct{})
	go func() {
		nw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for neurons: %w", ctx.Err())
	}

	nw.shared.router.Close()
	nw.stopped = true

	nw.logger.Info("network stopped")
	return nil
}

// StepAll runs one Step of every neuron in id order on the calling goroutine.
// It gives a deterministic schedule for simulations on a virtual clock and
// is only allowed before Start, and never under the Block policy, where a
// delivery into a full mailbox would wait for a drain that runs on this same
// goroutine.
func (nw *Network) StepAll(ctx context.Context, dt float64) ([]CycleResult, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()

	if nw.started {
		return nil, ErrAlreadyStarted
	}
	if nw.policy == Block {
		return nil, ErrBlockingPolicy
	}

	results := make([]CycleResult, len(nw.neurons))
	for i, n := range nw.neurons {
		results[i] = n.Step(ctx, dt)
	}
	return results, nil
}

// Report returns a point-in-time activity snapshot over all ids. It is safe
// to call while neurons run; values may be a mix of fresh and slightly stale.
func (nw *Network) Report() []Sample {
	return nw.shared.activity.Snapshot()
}

// Stats returns the published state of every neuron.
func (nw *Network) Stats() []NeuronStats {
	stats := make([]NeuronStats, len(nw.neurons))
	for i, n := range nw.neurons {
		stats[i] = n.Stats()
	}
	return stats
}

// Neuron returns the neuron with id.
func (nw *Network) Neuron(id NeuronID) (*Neuron, bool) {
	if int(id) >= len(nw.neurons) {
		return nil, false
	}
	return nw.neurons[id], true
}

// Handle returns the launch handle of id. It is only available after Start.
func (nw *Network) Handle(id NeuronID) (*Handle, bool) {
	nw.mu.Lock()
	defer nw.mu.Unlock()

	if int(id) >= len(nw.handles) {
		return nil, false
	}
	return nw.handles[id], true
}

// Shared returns the shared state.
func (nw *Network) Shared() *SharedState {
	return nw.shared
}

// Params returns the network parameters.
func (nw *Network) Params() Params {
	return nw.shared.params
}

// Size returns the number of neurons.
func (nw *Network) Size() int {
	return len(nw.neurons)
}

// RunID identifies this network instance in logs and reports.
func (nw *Network) RunID() string {
	return nw.runID
}

// Seed returns the seed of the default random sources.
func (nw *Network) Seed() uint64 {
	return nw.seed
}

// Policy returns the mailbox overflow policy.
func (nw *Network) Policy() OverflowPolicy {
	return nw.policy
}

// Running reports whether the network has been started and not shut down.
func (nw *Network) Running() bool {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	return nw.started && !nw.stopped
}
