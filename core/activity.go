package core

import (
	"sync"
)

// activityTable is the sync.Map backed ActivityTable. Keys are written by
// their owning neuron only, which is the access pattern sync.Map is built for.
type activityTable struct {
	size    int
	entries sync.Map // map[NeuronID]float64
}

// NewActivityTable creates a table for ids [0, size) with every entry at 0.
func NewActivityTable(size int) ActivityTable {
	t := &activityTable{size: size}
	for id := 0; id < size; id++ {
		t.entries.Store(NeuronID(id), 0.0)
	}
	return t
}

// Publish overwrites the entry for id.
func (t *activityTable) Publish(id NeuronID, activity float64) {
	t.entries.Store(id, activity)
}

// Read returns the last published value for id, or 0.
func (t *activityTable) Read(id NeuronID) float64 {
	if v, ok := t.entries.Load(id); ok {
		return v.(float64)
	}
	return 0
}

// Snapshot returns one sample per neuron in ascending id order.
func (t *activityTable) Snapshot() []Sample {
	samples := make([]Sample, t.size)
	for id := range samples {
		samples[id] = Sample{ID: NeuronID(id), Activity: t.Read(NeuronID(id))}
	}
	return samples
}
