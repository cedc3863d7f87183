package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "defaults", params: DefaultParams(), wantErr: false},
		{name: "single neuron", params: Params{Size: 1, MaxEnergy: 1, Threshold: 0, MaxLink: 0}, wantErr: false},
		{name: "zero size", params: Params{Size: 0, MaxEnergy: 10, Threshold: 0.5, MaxLink: 20}, wantErr: true},
		{name: "zero max energy", params: Params{Size: 10, MaxEnergy: 0, Threshold: 0.5, MaxLink: 20}, wantErr: true},
		{name: "negative threshold", params: Params{Size: 10, MaxEnergy: 10, Threshold: -1, MaxLink: 20}, wantErr: true},
		{name: "NaN max energy", params: Params{Size: 10, MaxEnergy: math.NaN(), Threshold: 0.5, MaxLink: 20}, wantErr: true},
		{name: "infinite max energy", params: Params{Size: 10, MaxEnergy: math.Inf(1), Threshold: 0.5, MaxLink: 20}, wantErr: true},
		{name: "NaN threshold", params: Params{Size: 10, MaxEnergy: 10, Threshold: math.NaN(), MaxLink: 20}, wantErr: true},
		{name: "infinite threshold", params: Params{Size: 10, MaxEnergy: 10, Threshold: math.Inf(1), MaxLink: 20}, wantErr: true},
		{name: "negative max link", params: Params{Size: 10, MaxEnergy: 10, Threshold: 0.5, MaxLink: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Size != 100 || p.MaxEnergy != 10.0 || p.Threshold != 0.5 || p.MaxLink != 20 {
		t.Errorf("Unexpected defaults: %+v", p)
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverflowPolicy
		wantErr bool
	}{
		{in: "", want: DropOldest},
		{in: "drop-oldest", want: DropOldest},
		{in: "DROP_OLDEST", want: DropOldest},
		{in: "reject-new", want: RejectNew},
		{in: " block ", want: Block},
		{in: "unbounded", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOverflowPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOverflowPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOverflowPolicy(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNeuronStateString(t *testing.T) {
	if NeuronStateRunning.String() != "running" {
		t.Errorf("Expected 'running', got '%s'", NeuronStateRunning)
	}
	if NeuronState(42).String() != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", NeuronState(42))
	}
}

func TestFormatReport(t *testing.T) {
	samples := []Sample{
		{ID: 0, Activity: 1.5},
		{ID: 1, Activity: 0.123456},
		{ID: 2, Activity: 0},
	}

	got := FormatReport(samples)
	want := "0: 1.5000\t1: 0.1235\t2: 0.0000\t\n"
	if got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}

	if FormatReport(nil) != "\n" {
		t.Errorf("Expected a bare newline for an empty report")
	}
}

func TestActivityTable(t *testing.T) {
	table := NewActivityTable(3)

	// Every entry starts at zero
	for id := NeuronID(0); id < 3; id++ {
		if v := table.Read(id); v != 0 {
			t.Errorf("Expected initial activity 0 for %d, got %f", id, v)
		}
	}

	table.Publish(1, 2.5)
	if v := table.Read(1); v != 2.5 {
		t.Errorf("Expected 2.5, got %f", v)
	}

	// Unknown ids resolve to zero instead of failing
	if v := table.Read(99); v != 0 {
		t.Errorf("Expected 0 for unknown id, got %f", v)
	}

	snap := table.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(snap))
	}
	for i, s := range snap {
		if s.ID != NeuronID(i) {
			t.Errorf("Expected sample %d to have id %d, got %d", i, i, s.ID)
		}
	}
	if snap[1].Activity != 2.5 {
		t.Errorf("Expected snapshot activity 2.5, got %f", snap[1].Activity)
	}
}

func TestRouterDeliver(t *testing.T) {
	router := NewRouter(2, 4, DropOldest)
	ctx := context.Background()

	if err := router.Deliver(ctx, 1, 0.75); err != nil {
		t.Fatalf("Failed to deliver: %v", err)
	}
	if router.Pending(1) != 1 {
		t.Errorf("Expected 1 pending value, got %d", router.Pending(1))
	}

	err := router.Deliver(ctx, 5, 1)
	if !errors.Is(err, ErrUnknownNeuron) {
		t.Errorf("Expected ErrUnknownNeuron, got %v", err)
	}

	router.Close()
	err = router.Deliver(ctx, 0, 1)
	if !errors.Is(err, ErrMailboxClosed) {
		t.Errorf("Expected ErrMailboxClosed after close, got %v", err)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	clock.Advance(250 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms elapsed, got %v", got)
	}

	if err := clock.Sleep(context.Background(), time.Second); err != nil {
		t.Fatalf("Sleep failed: %v", err)
	}
	if got := clock.Now().Sub(start); got != 1250*time.Millisecond {
		t.Errorf("Expected 1.25s elapsed, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := clock.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRealClockSleepCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := RealClock{}.Sleep(ctx, 5*time.Second)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Sleep did not return promptly on cancellation")
	}
}

func TestSequenceSource(t *testing.T) {
	src := NewSequenceSource([]float64{0.1, 0.2}, []int{7, -1})

	if v := src.Float64(); v != 0.1 {
		t.Errorf("Expected 0.1, got %f", v)
	}
	if v := src.Float64(); v != 0.2 {
		t.Errorf("Expected 0.2, got %f", v)
	}
	if v := src.Float64(); v != 0.1 {
		t.Errorf("Expected wrap-around to 0.1, got %f", v)
	}

	if v := src.IntN(5); v != 2 {
		t.Errorf("Expected 7 mod 5 = 2, got %d", v)
	}
	if v := src.IntN(5); v != 4 {
		t.Errorf("Expected -1 reduced to 4, got %d", v)
	}

	empty := NewSequenceSource(nil, nil)
	if empty.Float64() != 0 || empty.IntN(3) != 0 {
		t.Errorf("Expected zero draws from an empty source")
	}
}

func TestSeededRandFactoryReproducible(t *testing.T) {
	a := SeededRandFactory(7)(3)
	b := SeededRandFactory(7)(3)
	other := SeededRandFactory(7)(4)

	same := true
	differs := false
	for i := 0; i < 10; i++ {
		x, y, z := a.Float64(), b.Float64(), other.Float64()
		if x != y {
			same = false
		}
		if x != z {
			differs = true
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Draw out of range: %f", x)
		}
	}
	if !same {
		t.Error("Expected identical streams for the same seed and neuron")
	}
	if !differs {
		t.Error("Expected different streams for different neurons")
	}
}
