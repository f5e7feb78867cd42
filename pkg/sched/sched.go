// Package sched provides the repeating timers that templates use to
// coalesce updates.
//
// Templates are not safe for concurrent use, so all timer callbacks of a
// Scheduler must be called serially. Manual calls them synchronously from
// Advance; Loop calls them from its Run goroutine.
package sched

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies a timer. The zero Handle never identifies a timer.
type Handle uint64

// Scheduler schedules repeating timers.
type Scheduler interface {
	// SetInterval arranges for fn to be called every d until the timer is
	// cleared.
	SetInterval(fn func(), d time.Duration) Handle
	// ClearInterval stops a timer. Clearing a timer that has already been
	// cleared, or the zero Handle, does nothing.
	ClearInterval(h Handle)
}

// Manual is a Scheduler driven by a fake clock. Nothing happens until
// Advance is called.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	next   Handle
	timers map[Handle]*manualTimer
}

type manualTimer struct {
	h     Handle
	fn    func()
	every time.Duration
	due   time.Duration
}

var _ Scheduler = (*Manual)(nil)

// NewManual returns a Manual whose clock is at zero.
func NewManual() *Manual { return &Manual{timers: map[Handle]*manualTimer{}} }

// SetInterval implements Scheduler. An interval that is not positive is
// treated as 1ns.
func (m *Manual) SetInterval(fn func(), d time.Duration) Handle {
	if d <= 0 {
		d = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.timers[m.next] = &manualTimer{m.next, fn, d, m.now + d}
	return m.next
}

// ClearInterval implements Scheduler.
func (m *Manual) ClearInterval(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timers, h)
}

// Now returns the time elapsed on the fake clock.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of active timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing timers as they become due.
// Timers due at the same time fire in the order they were set. Callbacks may
// set and clear timers.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		t := m.earliest(end)
		if t == nil {
			m.now = end
			m.mu.Unlock()
			return
		}
		m.now = t.due
		t.due += t.every
		m.mu.Unlock()
		t.fn()
	}
}

// Must be called with m.mu held.
func (m *Manual) earliest(end time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if t.due <= end {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].h < due[j].h
	})
	return due[0]
}
