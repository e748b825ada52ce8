package translation

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestInFlightLeaderElection(t *testing.T) {
	r := NewInFlightRegistry()

	c1, leader1 := r.Acquire("Checkout", "pt")
	if !leader1 {
		t.Fatal("first acquire should lead")
	}
	c2, leader2 := r.Acquire("Checkout", "pt")
	if leader2 {
		t.Fatal("second acquire should follow")
	}
	if c1 != c2 {
		t.Fatal("followers must share the leader's call")
	}

	// A different pair gets its own leader.
	if _, leader := r.Acquire("Checkout", "es"); !leader {
		t.Error("different language should elect its own leader")
	}
}

func TestInFlightCompleteWakesAllFollowers(t *testing.T) {
	r := NewInFlightRegistry()
	r.Acquire("Checkout", "pt")

	const followers = 8
	var wg sync.WaitGroup
	results := make([]string, followers)
	for i := 0; i < followers; i++ {
		call, leader := r.Acquire("Checkout", "pt")
		if leader {
			t.Fatal("unexpected leader")
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = call.Wait(context.Background(), "fallback")
		}(i)
	}

	r.Complete("Checkout", "pt", "Finalizar compra")
	wg.Wait()

	for i, got := range results {
		if got != "Finalizar compra" {
			t.Errorf("follower %d got %q", i, got)
		}
	}
	if r.Len() != 0 {
		t.Errorf("registry should be empty after complete, len=%d", r.Len())
	}
}

func TestInFlightWaitContextExpiry(t *testing.T) {
	r := NewInFlightRegistry()
	r.Acquire("Checkout", "pt")
	call, _ := r.Acquire("Checkout", "pt")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if got := call.Wait(ctx, "Checkout"); got != "Checkout" {
		t.Errorf("expired wait = %q, want fallback", got)
	}
}

func TestInFlightReacquireAfterComplete(t *testing.T) {
	r := NewInFlightRegistry()

	r.Acquire("Checkout", "pt")
	r.Complete("Checkout", "pt", "Finalizar compra")

	// The entry is gone, so the next caller leads a fresh resolution.
	if _, leader := r.Acquire("Checkout", "pt"); !leader {
		t.Error("expected fresh leader after complete")
	}
}

func TestInFlightCompleteWithoutAcquire(t *testing.T) {
	r := NewInFlightRegistry()
	// Must not panic.
	r.Complete("never acquired", "pt", "x")
}
