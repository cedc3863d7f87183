package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMailboxDrain(t *testing.T) {
	mb := NewMailbox(0, 8, DropOldest)
	ctx := context.Background()

	sum, n := mb.Drain()
	if sum != 0 || n != 0 {
		t.Errorf("Expected empty drain, got sum=%f n=%d", sum, n)
	}

	for _, v := range []float64{0.5, -0.25, 1} {
		if err := mb.Send(ctx, v); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	sum, n = mb.Drain()
	if sum != 1.25 || n != 3 {
		t.Errorf("Expected sum=1.25 n=3, got sum=%f n=%d", sum, n)
	}
	if mb.Pending() != 0 {
		t.Errorf("Expected nothing pending after drain, got %d", mb.Pending())
	}
}

func TestMailboxDropOldest(t *testing.T) {
	mb := NewMailbox(1, 2, DropOldest)
	ctx := context.Background()

	for _, v := range []float64{1, 2, 3} {
		if err := mb.Send(ctx, v); err != nil {
			t.Fatalf("DropOldest send must not fail: %v", err)
		}
	}

	sum, n := mb.Drain()
	if sum != 5 || n != 2 {
		t.Errorf("Expected the two newest values (sum=5 n=2), got sum=%f n=%d", sum, n)
	}
	if mb.Dropped() != 1 {
		t.Errorf("Expected 1 dropped value, got %d", mb.Dropped())
	}
}

func TestMailboxRejectNew(t *testing.T) {
	mb := NewMailbox(2, 2, RejectNew)
	ctx := context.Background()

	_ = mb.Send(ctx, 1)
	_ = mb.Send(ctx, 2)
	err := mb.Send(ctx, 3)
	if !errors.Is(err, ErrMailboxFull) {
		t.Fatalf("Expected ErrMailboxFull, got %v", err)
	}

	sum, _ := mb.Drain()
	if sum != 3 {
		t.Errorf("Expected the two oldest values to be kept (sum=3), got %f", sum)
	}
	if mb.Dropped() != 1 {
		t.Errorf("Expected 1 dropped value, got %d", mb.Dropped())
	}
}

func TestMailboxBlock(t *testing.T) {
	mb := NewMailbox(3, 1, Block)

	if err := mb.Send(context.Background(), 1); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := mb.Send(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded while full, got %v", err)
	}

	// A blocked sender is released by Close
	result := make(chan error, 1)
	go func() {
		result <- mb.Send(context.Background(), 3)
	}()

	time.Sleep(10 * time.Millisecond)
	mb.Close()

	select {
	case err := <-result:
		if !errors.Is(err, ErrMailboxClosed) {
			t.Errorf("Expected ErrMailboxClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Blocked sender was not released by Close")
	}
}

func TestMailboxClose(t *testing.T) {
	mb := NewMailbox(4, 4, DropOldest)

	mb.Close()
	mb.Close() // idempotent

	if !mb.Closed() {
		t.Error("Expected mailbox to report closed")
	}
	if err := mb.Send(context.Background(), 1); !errors.Is(err, ErrMailboxClosed) {
		t.Errorf("Expected ErrMailboxClosed, got %v", err)
	}
}

func TestMailboxDefaultCapacity(t *testing.T) {
	mb := NewMailbox(0, 0, DropOldest)
	if mb.Capacity() != DefaultMailboxSize {
		t.Errorf("Expected capacity %d, got %d", DefaultMailboxSize, mb.Capacity())
	}
	if mb.Owner() != 0 {
		t.Errorf("Expected owner 0, got %d", mb.Owner())
	}
}

func TestMailboxConcurrentSenders(t *testing.T) {
	mb := NewMailbox(5, 4096, DropOldest)
	ctx := context.Background()

	const senders, perSender = 8, 100
	done := make(chan struct{})
	for i := 0; i < senders; i++ {
		go func() {
			for j := 0; j < perSender; j++ {
				_ = mb.Send(ctx, 1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < senders; i++ {
		<-done
	}

	sum, n := mb.Drain()
	if n != senders*perSender || sum != float64(senders*perSender) {
		t.Errorf("Expected %d values, got n=%d sum=%f", senders*perSender, n, sum)
	}
}
