package tcg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_RunsOnceAfterQuietPeriod(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(3*time.Second, clock)

	var runs []string
	var firedAt []time.Duration
	schedule := func(q string) {
		d.Schedule(func() {
			runs = append(runs, q)
			firedAt = append(firedAt, clock.Now())
		})
	}

	schedule("a")
	clock.AdvanceTo(1 * time.Second)
	schedule("ab")
	clock.AdvanceTo(4 * time.Second)
	schedule("abc")
	clock.AdvanceTo(7 * time.Second)
	assert.Empty(t, runs, "nothing may run before the quiet period ends")

	clock.Flush()
	assert.Equal(t, []string{"abc"}, runs)
	assert.Equal(t, []time.Duration{7 * time.Second}, firedAt)
	assert.False(t, d.Pending())

	clock.AdvanceTo(20 * time.Second)
	clock.Flush()
	assert.Len(t, runs, 1)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(time.Second, clock)

	ran := false
	d.Schedule(func() { ran = true })
	assert.True(t, d.Pending())

	d.Cancel()
	assert.False(t, d.Pending())

	clock.AdvanceTo(5 * time.Second)
	clock.Flush()
	assert.False(t, ran)
}

// staleClock never stops timers, like a timer that already fired and is
// waiting on the lock when it gets replaced
type staleClock struct {
	*fakeClock
}

type unstoppable struct{}

func (unstoppable) Stop() bool { return false }

func (c staleClock) AfterFunc(d time.Duration, f func()) Timer {
	c.fakeClock.AfterFunc(d, f)
	return unstoppable{}
}

func TestDebouncer_StaleTimerDoesNotRun(t *testing.T) {
	clock := staleClock{newFakeClock()}
	d := NewDebouncer(time.Second, clock)

	var runs []string
	d.Schedule(func() { runs = append(runs, "first") })
	clock.AdvanceTo(500 * time.Millisecond)
	d.Schedule(func() { runs = append(runs, "second") })

	clock.AdvanceTo(10 * time.Second)
	assert.Equal(t, []string{"second"}, runs)
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(time.Second, clock)

	count := 0
	d.Schedule(func() { count++ })
	clock.AdvanceTo(2 * time.Second)
	d.Schedule(func() { count++ })
	clock.AdvanceTo(4 * time.Second)

	assert.Equal(t, 2, count)
}
