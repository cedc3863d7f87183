package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Neuron is one independently scheduled agent. Its state is owned by the
// goroutine running it; other goroutines observe it only through Stats and the
// shared activity table.
type Neuron struct {
	id     NeuronID
	shared *SharedState
	inbox  *Mailbox
	rand   RandSource
	clock  Clock
	logger *zap.Logger
	trace  bool

	energy     float64
	activity   float64
	lastUpdate time.Time
	sleep      time.Duration
	links      []Link

	// Published for observers
	state       int32 // NeuronState
	cycles      uint64
	fires       uint64
	undelivered uint64
	statsMu     sync.RWMutex
	stats       NeuronStats
}

// newNeuron wires a neuron to its mailbox and the shared state.
func newNeuron(id NeuronID, shared *SharedState, rnd RandSource, clock Clock, logger *zap.Logger) *Neuron {
	inbox, _ := shared.router.Lookup(id)

	n := &Neuron{
		id:         id,
		shared:     shared,
		inbox:      inbox,
		rand:       rnd,
		clock:      clock,
		logger:     logger.With(zap.Uint32("neuron", uint32(id))),
		lastUpdate: clock.Now(),
		sleep:      MinSleep,
	}
	n.publishStats()
	return n
}

// ID returns the neuron id.
func (n *Neuron) ID() NeuronID {
	return n.id
}

// Run cycles until ctx is done. Cancellation is checked at every cycle
// boundary and while sleeping. Run returns nil on cancellation and an error
// only if the neuron is already running or has stopped.
func (n *Neuron) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&n.state, int32(NeuronStateIdle), int32(NeuronStateRunning)) {
		return fmt.Errorf("neuron %d cannot run from state %s",
			n.id, NeuronState(atomic.LoadInt32(&n.state)))
	}
	defer func() {
		atomic.StoreInt32(&n.state, int32(NeuronStateStopped))
		n.publishStats()
	}()

	// Δt of the first cycle counts from launch, not from construction.
	n.lastUpdate = n.clock.Now()

	for {
		if ctx.Err() != nil {
			atomic.StoreInt32(&n.state, int32(NeuronStateStopping))
			return nil
		}

		res := n.Cycle(ctx)

		if err := n.clock.Sleep(ctx, res.Sleep); err != nil {
			atomic.StoreInt32(&n.state, int32(NeuronStateStopping))
			return nil
		}
	}
}

// Cycle measures Δt on the clock and runs one Step.
func (n *Neuron) Cycle(ctx context.Context) CycleResult {
	now := n.clock.Now()
	dt := now.Sub(n.lastUpdate).Seconds()
	if dt < 0 {
		dt = 0
	}
	n.lastUpdate = now
	return n.Step(ctx, dt)
}

// Step runs one update with an elapsed time of dt seconds. For a fixed
// RandSource the outcome depends only on the neuron state, dt, the mailbox
// contents and the activity table.
func (n *Neuron) Step(ctx context.Context, dt float64) CycleResult {
	params := n.shared.params
	table := n.shared.activity

	res := CycleResult{Dt: dt}

	recv, received := n.inbox.Drain()
	res.Received = received

	// One draw drives the noise, the link trigger, the acceptance test and
	// the new link's weight.
	r := n.rand.Float64()
	recv += (r*2 - 1) * dt

	decay := math.Pow(0.5, dt)
	n.activity *= decay
	n.energy = math.Min(n.energy+dt, params.MaxEnergy)

	if r < (n.activity+linkBias)*dt {
		target := NeuronID(n.rand.IntN(params.Size))
		if len(n.links) < params.MaxLink &&
			target != n.id &&
			r < table.Read(target)+linkBias {
			n.links = append(n.links, Link{Target: target, Weight: r*2 - 1})
			res.LinkFormed = true
		}
	}

	if recv > params.Threshold*dt {
		res.Fired = true
		n.activity += math.Abs(recv)

		for i := range n.links {
			link := &n.links[i]
			err := n.shared.router.Deliver(ctx, link.Target, recv*link.Weight*n.energy)
			if err != nil {
				res.Dropped++
				n.logger.Debug("signal dropped",
					zap.Uint32("target", uint32(link.Target)),
					zap.Error(err))
			} else {
				res.Delivered++
			}
			link.Weight += sign(link.Weight) * dt * n.activity * table.Read(link.Target)
		}

		n.energy = 0
		n.sleep = MinSleep
	} else {
		kept := n.links[:0]
		for _, link := range n.links {
			link.Weight *= decay
			if math.Abs(link.Weight) > pruneWeight {
				kept = append(kept, link)
			}
		}
		n.links = kept

		n.sleep = min(n.sleep*2, MaxSleep)
	}

	table.Publish(n.id, n.activity)

	res.Recv = recv
	res.Sleep = n.sleep

	atomic.AddUint64(&n.cycles, 1)
	if res.Fired {
		atomic.AddUint64(&n.fires, 1)
	}
	if res.Dropped > 0 {
		atomic.AddUint64(&n.undelivered, uint64(res.Dropped))
	}
	n.publishStats()

	if n.trace {
		n.logger.Debug("cycle",
			zap.Float64("dt", dt),
			zap.Float64("activity", n.activity),
			zap.Float64("energy", n.energy),
			zap.Float64("recv", recv),
			zap.Bool("fired", res.Fired),
			zap.Any("links", n.links))
	}

	return res
}

// Stats returns a copy of the state published at the end of the last cycle.
func (n *Neuron) Stats() NeuronStats {
	n.statsMu.RLock()
	stats := n.stats
	stats.Links = append([]Link(nil), n.stats.Links...)
	n.statsMu.RUnlock()

	stats.State = NeuronState(atomic.LoadInt32(&n.state)).String()
	stats.Cycles = atomic.LoadUint64(&n.cycles)
	stats.Fires = atomic.LoadUint64(&n.fires)
	stats.Undelivered = atomic.LoadUint64(&n.undelivered)
	stats.Pending = n.inbox.Pending()
	stats.Dropped = n.inbox.Dropped()
	return stats
}

// publishStats copies the goroutine-owned state for Stats readers.
func (n *Neuron) publishStats() {
	n.statsMu.Lock()
	defer n.statsMu.Unlock()

	n.stats = NeuronStats{
		ID:          n.id,
		Energy:      n.energy,
		Activity:    n.activity,
		Links:       append([]Link(nil), n.links...),
		Sleep:       n.sleep,
		LastCycleAt: n.lastUpdate,
	}
}

// sign returns -1, 0 or 1. A zero weight gets no reinforcement.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
