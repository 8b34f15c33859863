package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	p := NewPacer(100 * time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("first Wait() should be immediate")
	}
}

func TestPacer_ConsecutiveCallsSpaced(t *testing.T) {
	const interval = 50 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	start := time.Now()
	stamps := make([]time.Time, 0, 4)
	for i := 0; i < 4; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait() %d failed: %v", i, err)
		}
		stamps = append(stamps, time.Now())
	}

	// Four calls through a 50ms pacer take at least 150ms total.
	if elapsed := time.Since(start); elapsed < 3*interval-5*time.Millisecond {
		t.Errorf("4 calls completed in %v, want at least %v", elapsed, 3*interval)
	}

	// No adjacent pair lands closer than the interval.
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < interval-5*time.Millisecond {
			t.Errorf("calls %d and %d spaced %v apart, want at least %v", i-1, i, gap, interval)
		}
	}
}

func TestPacer_NoBurstAfterIdle(t *testing.T) {
	const interval = 50 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	// Idle long enough for a token bucket to accumulate capacity.
	time.Sleep(3 * interval)

	// One call may go immediately, but the one after it still waits.
	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < interval-5*time.Millisecond {
		t.Errorf("two calls after idle completed in %v, want at least %v", elapsed, interval)
	}
}

func TestPacer_WaitContextCancelled(t *testing.T) {
	p := NewPacer(10 * time.Second)

	// Consume the available slot.
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); err == nil {
		t.Error("Wait() should fail when context deadline cannot be met")
	}
}
