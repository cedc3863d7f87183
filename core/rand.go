package core

import (
	"math/rand/v2"
	"sync"
)

// pcgSource is the default RandSource, one per neuron so no locking is needed.
type pcgSource struct {
	r *rand.Rand
}

// NewRandSource returns a PCG-backed RandSource seeded with (seed, stream).
func NewRandSource(seed, stream uint64) RandSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, stream))}
}

func (s *pcgSource) Float64() float64 { return s.r.Float64() }
func (s *pcgSource) IntN(n int) int   { return s.r.IntN(n) }

// RandFactory builds the RandSource for one neuron.
type RandFactory func(id NeuronID) RandSource

// SeededRandFactory gives every neuron its own PCG stream derived from seed,
// so a run is reproducible for a fixed seed and fixed Δt sequence.
func SeededRandFactory(seed uint64) RandFactory {
	return func(id NeuronID) RandSource {
		return NewRandSource(seed, uint64(id)+1)
	}
}

// SequenceSource replays fixed draws, wrapping around at the end of each
// sequence. An empty float sequence yields 0 and an empty int sequence yields
// 0. Int draws are reduced modulo n. It is safe for concurrent use.
type SequenceSource struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	fi, ii int
}

// NewSequenceSource creates a source replaying floats and ints.
func NewSequenceSource(floats []float64, ints []int) *SequenceSource {
	return &SequenceSource{
		floats: append([]float64(nil), floats...),
		ints:   append([]int(nil), ints...),
	}
}

// Float64 returns the next float in the sequence.
func (s *SequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

// IntN returns the next int in the sequence reduced to [0, n).
func (s *SequenceSource) IntN(n int) int {
	if n <= 0 {
		panic("core: SequenceSource.IntN called with n <= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
