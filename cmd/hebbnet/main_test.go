package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/najoast/hebbnet/config"
	"github.com/najoast/hebbnet/core"
)

// execute runs the root command with args and returns its output
func execute(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, nil, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("Expected version %s in %q", version, out)
	}
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addNetworkFlags(flags)
	if err := flags.Parse([]string{"--size=3", "--policy=block", "--seed=9", "--log-level=debug"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applyFlags(flags, cfg); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}

	if cfg.Network.Size != 3 || cfg.Mailbox.Policy != "block" || cfg.Log.Level != config.LogLevelDebug {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.Network.Seed == nil || *cfg.Network.Seed != 9 {
		t.Errorf("Expected seed 9, got %v", cfg.Network.Seed)
	}
	// Unset flags keep the configured values
	if cfg.Network.Threshold != 0.5 || cfg.Network.TraceNeuron != -1 {
		t.Errorf("Unset flags changed the config: %+v", cfg.Network)
	}
}

func TestSimulateReproducible(t *testing.T) {
	args := []string{"simulate", "--size=5", "--seed=7", "--steps=50", "--dt=20ms", "--every=25", "--log-level=error"}

	first, err := execute(t, nil, args...)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	second, err := execute(t, nil, args...)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical output for the same seed:\n%s\n%s", first, second)
	}

	lines := splitLines(first)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 report lines, got %d: %q", len(lines), first)
	}
	for _, line := range lines {
		if strings.Count(line, ": ") != 5 || !strings.HasPrefix(line, "0: ") {
			t.Errorf("Unexpected report line %q", line)
		}
	}
}

func TestSimulateInvalidFlags(t *testing.T) {
	tests := [][]string{
		{"simulate", "--size=0"},
		{"simulate", "--steps=0"},
		{"simulate", "--policy=unbounded"},
		{"simulate", "--max-energy=NaN"},
	}
	for _, args := range tests {
		if _, err := execute(t, nil, append(args, "--log-level=error")...); err == nil {
			t.Errorf("Expected %v to fail", args)
		}
	}
}

func TestSimulateRejectsBlockPolicy(t *testing.T) {
	result := make(chan error, 1)
	go func() {
		_, err := execute(t, nil, "simulate", "--size=2", "--mailbox=1", "--policy=block", "--steps=10", "--log-level=error")
		result <- err
	}()

	select {
	case err := <-result:
		if !errors.Is(err, core.ErrBlockingPolicy) {
			t.Errorf("Expected ErrBlockingPolicy, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("simulate did not return under the block policy")
	}
}

func TestRunCmdStopsAtEOF(t *testing.T) {
	done := make(chan struct{})
	var out string
	var err error
	go func() {
		defer close(done)
		out, err = execute(t, strings.NewReader("\n\n"), "run", "--size=4", "--seed=1", "--log-level=error")
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop at end of input")
	}

	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := splitLines(out)
	if len(lines) != 2 {
		t.Fatalf("Expected one report per input line, got %d: %q", len(lines), out)
	}
	for _, line := range lines {
		if strings.Count(line, ": ") != 4 {
			t.Errorf("Unexpected report line %q", line)
		}
	}
}

func newTestNetwork(t *testing.T) *core.Network {
	t.Helper()
	nw, err := core.NewNetwork(core.Params{Size: 3, MaxEnergy: 10, Threshold: 0.5, MaxLink: 2}, core.WithSeed(2))
	if err != nil {
		t.Fatalf("Failed to build network: %v", err)
	}
	return nw
}

func TestConsoleLoop(t *testing.T) {
	nw := newTestNetwork(t)
	var out bytes.Buffer

	err := consoleLoop(context.Background(), strings.NewReader("a\nb\nc\n"), &out, nw)
	if err != nil {
		t.Fatalf("consoleLoop failed: %v", err)
	}

	want := strings.Repeat(core.FormatReport(nw.Report()), 3)
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestConsoleLoopCancel(t *testing.T) {
	nw := newTestNetwork(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- consoleLoop(ctx, pr, io.Discard, nw)
	}()

	cancel()
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Expected nil on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consoleLoop did not return after cancellation")
	}
}
