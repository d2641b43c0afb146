// Package poll provides the single poll-until-deadline primitive used for
// every blocking wait in the automation core: export detection, control
// availability and window attachment. Centralizing the loop keeps timeout
// semantics uniform and lets tests swap in a fake clock.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the deadline elapses before the condition holds.
var ErrTimeout = errors.New("poll: deadline exceeded")

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = systemClock{}

// Poller repeatedly evaluates a condition until it holds or the timeout
// elapses. The zero value is not usable; both Interval and Timeout must be
// positive.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
}

// New returns a Poller on the system clock.
func New(interval, timeout time.Duration) Poller {
	return Poller{Interval: interval, Timeout: timeout, Clock: SystemClock}
}

// Wait calls fn at each interval until it reports done, fails, or the timeout
// elapses. fn is always evaluated once immediately so an already-true
// condition returns without sleeping. Returns ErrTimeout on deadline, or the
// context error on cancellation.
func (p Poller) Wait(ctx context.Context, fn func() (bool, error)) error {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock
	}
	deadline := clock.Now().Add(p.Timeout)

	for {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !clock.Now().Before(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(p.Interval):
		}
	}
}
