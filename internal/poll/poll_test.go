package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock advances by a fixed step on every After call so Wait loops
// deterministically without real sleeping.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(c.step)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func TestWaitImmediateSuccess(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Second}
	p := Poller{Interval: time.Second, Timeout: 10 * time.Second, Clock: clock}

	calls := 0
	err := p.Wait(context.Background(), func() (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("condition evaluated %d times, want 1", calls)
	}
	if !clock.now.Equal(time.Unix(0, 0)) {
		t.Errorf("clock advanced on immediate success")
	}
}

func TestWaitEventualSuccess(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Second}
	p := Poller{Interval: time.Second, Timeout: 10 * time.Second, Clock: clock}

	calls := 0
	err := p.Wait(context.Background(), func() (bool, error) {
		calls++
		return calls >= 4, nil
	})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if calls != 4 {
		t.Errorf("condition evaluated %d times, want 4", calls)
	}
}

func TestWaitTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Second}
	p := Poller{Interval: time.Second, Timeout: 5 * time.Second, Clock: clock}

	calls := 0
	err := p.Wait(context.Background(), func() (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Wait() error = %v, want ErrTimeout", err)
	}
	// Initial evaluation plus one per elapsed interval.
	if calls != 6 {
		t.Errorf("condition evaluated %d times, want 6", calls)
	}
}

func TestWaitPropagatesConditionError(t *testing.T) {
	p := Poller{Interval: time.Millisecond, Timeout: time.Second, Clock: &fakeClock{step: time.Millisecond}}
	boom := errors.New("boom")

	err := p.Wait(context.Background(), func() (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Wait() error = %v, want boom", err)
	}
}

func TestWaitHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(time.Millisecond, time.Second)
	err := p.Wait(ctx, func() (bool, error) { return false, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait() error = %v, want context.Canceled", err)
	}
}
