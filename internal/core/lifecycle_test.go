package core

import (
	"context"
	"testing"
	"time"
)

func TestMonitorTransitions(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	if got := m.Tick(created.Add(5 * time.Minute)); got != StateFresh {
		t.Errorf("at 5m: %v, want fresh", got)
	}
	if got := m.Tick(created.Add(13 * time.Minute)); got != StateNearExpiry {
		t.Errorf("at 13m: %v, want near_expiry", got)
	}
	if got := m.Tick(created.Add(15 * time.Minute)); got != StateExpired {
		t.Errorf("at 15m: %v, want expired", got)
	}
}

func TestMonitorExpiredIsTerminal(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	m.Tick(created.Add(16 * time.Minute))
	if got := m.Tick(created.Add(1 * time.Minute)); got != StateExpired {
		t.Errorf("ticking backwards resurrected the quote: %v", got)
	}
	if m.CheckoutAllowed(created.Add(1 * time.Minute)) {
		t.Error("checkout allowed on an expired monitor")
	}
}

func TestMonitorSkipsStraightToExpired(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	// A coarse tick interval may never observe the warning window.
	var expired bool
	m.OnExpire = func() { expired = true }
	if got := m.Tick(created.Add(20 * time.Minute)); got != StateExpired {
		t.Fatalf("got %v, want expired", got)
	}
	if !expired {
		t.Error("OnExpire did not fire")
	}
}

func TestMonitorWarnFiresOnce(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	var warns int
	var lastRemaining time.Duration
	m.OnWarn = func(remaining time.Duration) {
		warns++
		lastRemaining = remaining
	}

	m.Tick(created.Add(13*time.Minute + 30*time.Second))
	m.Tick(created.Add(14 * time.Minute))
	m.Tick(created.Add(14*time.Minute + 30*time.Second))

	if warns != 1 {
		t.Errorf("OnWarn fired %d times, want 1", warns)
	}
	if lastRemaining != 90*time.Second {
		t.Errorf("remaining = %v, want 90s", lastRemaining)
	}
}

func TestMonitorWarnSuppressedDuringPayment(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	var warns int
	m.OnWarn = func(time.Duration) { warns++ }
	m.PaymentSelected = func() bool { return true }

	m.Tick(created.Add(14 * time.Minute))
	if warns != 0 {
		t.Errorf("warning interrupted a payment attempt, fired %d times", warns)
	}
	// Still transitions; only the callback is suppressed.
	if m.State() != StateNearExpiry {
		t.Errorf("state = %v, want near_expiry", m.State())
	}
}

func TestMonitorRemaining(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	if got := m.Remaining(created.Add(10 * time.Minute)); got != 5*time.Minute {
		t.Errorf("remaining = %v, want 5m", got)
	}
	if got := m.Remaining(created.Add(20 * time.Minute)); got != 0 {
		t.Errorf("remaining = %v, want 0 past expiry", got)
	}
}

func TestMonitorRunStopsOnExpiry(t *testing.T) {
	created := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	m := NewMonitor(created, 15*time.Minute, 2*time.Minute)

	// The fake clock jumps past expiry on the first observation.
	now := created.Add(16 * time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond, func() time.Time { return now })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after expiry")
	}
	if m.State() != StateExpired {
		t.Errorf("state = %v, want expired", m.State())
	}
}
