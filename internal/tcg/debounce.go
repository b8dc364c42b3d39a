package tcg

import (
	"sync"
	"time"
)

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Clock schedules calls. The real clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock
func RealClock() Clock {
	return realClock{}
}

// Debouncer holds at most one pending call. Scheduling replaces and
// cancels whatever was pending, so only the most recently scheduled call
// can ever run.
type Debouncer struct {
	mu         sync.Mutex
	interval   time.Duration
	clock      Clock
	pending    Timer
	generation uint64
}

// NewDebouncer creates a debouncer that waits interval after the last
// Schedule before running
func NewDebouncer(interval time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{
		interval: interval,
		clock:    clock,
	}
}

// Schedule cancels any pending call and arranges for fn to run once the
// interval has passed without another Schedule or Cancel
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.generation

	d.pending = d.clock.AfterFunc(d.interval, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run
		if gen != d.generation {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.generation++
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending call, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
}

// Pending reports whether a call is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.generation++
}
