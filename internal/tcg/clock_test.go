package tcg

import (
	"sort"
	"sync"
	"time"
)

// fakeClock runs timers only when the test moves time forward
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func newFakeClock() *fakeClock {
	return &fakeClock{}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, deadline: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AdvanceTo moves the clock to at, firing timers due strictly before it.
// A timer due exactly at `at` stays pending so input arriving at that
// instant is seen first; call Flush to fire it.
func (c *fakeClock) AdvanceTo(at time.Duration) {
	for c.fireNext(func(deadline time.Duration) bool { return deadline < at }) {
	}
	c.mu.Lock()
	if at > c.now {
		c.now = at
	}
	c.mu.Unlock()
}

// Flush fires every timer due at or before the current time
func (c *fakeClock) Flush() {
	for c.fireNext(func(deadline time.Duration) bool { return deadline <= c.now }) {
	}
}

func (c *fakeClock) fireNext(due func(time.Duration) bool) bool {
	c.mu.Lock()
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].deadline < c.timers[j].deadline
	})
	var next *fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && due(t.deadline) {
			next = t
			break
		}
	}
	if next == nil {
		c.mu.Unlock()
		return false
	}
	next.fired = true
	if next.deadline > c.now {
		c.now = next.deadline
	}
	c.mu.Unlock()

	next.fn()
	return true
}
