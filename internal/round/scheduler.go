package round

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback returned by a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer before it fired.
	Stop() bool
}

// Scheduler supplies time to the controller.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules callbacks on the system clock. Callbacks run on
// their own goroutines.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

func (WallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Scheduler whose time only moves when Advance is called.
// Callbacks run synchronously on the goroutine calling Advance, in due
// order.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending map[int]*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	id    int
	due   time.Time
	f     func()
}

// NewManualClock creates a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start, pending: make(map[int]*manualTimer)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, due: c.now.Add(d), f: f}
	c.pending[t.id] = t
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.pending[t.id]; !ok {
		return false
	}
	delete(t.clock.pending, t.id)
	return true
}

// Advance moves time forward by d, running every callback that comes due.
// Callbacks scheduled by callbacks are honored if they fall inside the span.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.earliestLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		delete(c.pending, next.id)
		if next.due.After(c.now) {
			c.now = next.due
		}
		c.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of timers not yet fired or stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *ManualClock) earliestLocked(limit time.Time) *manualTimer {
	if len(c.pending) == 0 {
		return nil
	}
	timers := make([]*manualTimer, 0, len(c.pending))
	for _, t := range c.pending {
		timers = append(timers, t)
	}
	sort.Slice(timers, func(i, j int) bool {
		if timers[i].due.Equal(timers[j].due) {
			return timers[i].id < timers[j].id
		}
		return timers[i].due.Before(timers[j].due)
	})
	if timers[0].due.After(limit) {
		return nil
	}
	return timers[0]
}
