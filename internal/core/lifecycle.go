package core

import (
	"context"
	"time"
)

// LifecycleState tracks a quote's shopping-cart validity, not its
// cover period. Fresh quotes may check out; NearExpiry warns; Expired
// is terminal and blocks payment.
type LifecycleState string

const (
	StateFresh      LifecycleState = "fresh"
	StateNearExpiry LifecycleState = "near_expiry"
	StateExpired    LifecycleState = "expired"
)

// Monitor is an explicit state machine over elapsed time since a
// quote's creation. The caller owns it and advances it: either by
// calling Tick with instants it controls (deterministic in tests), or
// by letting Run drive Tick from a ticker until the context is
// cancelled. There is no resurrection from Expired.
type Monitor struct {
	createdAt time.Time
	validity  time.Duration
	lead      time.Duration

	state  LifecycleState
	warned bool

	// OnWarn fires once on entering NearExpiry. It is suppressed when
	// a payment method is already selected, so a warning never
	// interrupts an in-progress payment attempt.
	OnWarn func(remaining time.Duration)

	// OnExpire fires once on entering Expired.
	OnExpire func()

	// PaymentSelected is the host's "a payment method is chosen" hint.
	PaymentSelected func() bool
}

// NewMonitor creates a monitor for a quote created at createdAt, valid
// for validity, warning lead before the end.
func NewMonitor(createdAt time.Time, validity, lead time.Duration) *Monitor {
	return &Monitor{
		createdAt: createdAt,
		validity:  validity,
		lead:      lead,
		state:     StateFresh,
	}
}

func (m *Monitor) State() LifecycleState { return m.state }

// Remaining is the time left before the quote expires, floored at 0.
func (m *Monitor) Remaining(now time.Time) time.Duration {
	left := m.createdAt.Add(m.validity).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Tick advances the state machine to the state implied by now and
// fires any transition callbacks. Expired is terminal; later ticks are
// no-ops.
func (m *Monitor) Tick(now time.Time) LifecycleState {
	if m.state == StateExpired {
		return m.state
	}

	left := m.Remaining(now)
	switch {
	case left <= 0:
		m.state = StateExpired
		if m.OnExpire != nil {
			m.OnExpire()
		}
	case left <= m.lead:
		m.state = StateNearExpiry
		if !m.warned {
			m.warned = true
			interrupting := m.PaymentSelected != nil && m.PaymentSelected()
			if m.OnWarn != nil && !interrupting {
				m.OnWarn(left)
			}
		}
	}
	return m.state
}

// CheckoutAllowed gates progression to payment.
func (m *Monitor) CheckoutAllowed(now time.Time) bool {
	return m.Tick(now) != StateExpired
}

// Run ticks the monitor every interval until the quote expires or the
// context is cancelled. The ticker always stops on return, so tearing
// down the host view cannot leak a repeating callback.
func (m *Monitor) Run(ctx context.Context, interval time.Duration, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Tick(clock()) == StateExpired {
				return
			}
		}
	}
}
