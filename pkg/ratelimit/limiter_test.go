package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedDelay(t *testing.T) {
	fd := NewFixedDelay(50 * time.Millisecond)

	// First request goes through immediately
	if !fd.Allow() {
		t.Error("Expected first request to be allowed")
	}

	// Immediately after, the interval has not elapsed
	if fd.Allow() {
		t.Error("Expected second request to be denied inside the interval")
	}

	// After the interval, allowed again
	time.Sleep(60 * time.Millisecond)
	if !fd.Allow() {
		t.Error("Expected request to be allowed after the interval")
	}

	// Reset forgets the last request
	fd.Reset()
	if !fd.Allow() {
		t.Error("Expected request to be allowed after reset")
	}
}

func TestFixedDelayWait(t *testing.T) {
	fd := NewFixedDelay(50 * time.Millisecond)

	// Wait always sleeps the full interval
	start := time.Now()
	fd.Wait(context.Background())
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected wait to sleep the full interval, took %v", elapsed)
	}

	// A recorded request means Allow sees the interval as consumed
	if fd.Allow() {
		t.Error("Expected Allow to deny immediately after Wait")
	}
}

func TestFixedDelayZero(t *testing.T) {
	fd := NewFixedDelay(0)

	start := time.Now()
	fd.Wait(context.Background())
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("Expected zero-interval wait to return immediately, took %v", elapsed)
	}
}

func TestFixedDelayWaitCancelled(t *testing.T) {
	fd := NewFixedDelay(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	fd.Wait(ctx)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected cancelled wait to return immediately, took %v", elapsed)
	}

	// Nothing was recorded, so the next request goes straight through
	if !fd.Allow() {
		t.Error("Expected Allow to pass after a cancelled wait")
	}
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}
