package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose time moves only when Advance is called. Pending
// timers fire in deadline order on the goroutine calling Advance, with
// the clock's internal lock released, so callbacks may freely call back
// into the Fake.
//
// Unlike time.AfterFunc, a callback scheduled with a zero or negative
// duration does not run inline: it is registered at the current instant
// and runs on the next Advance (Advance(0) suffices). This keeps
// callers that schedule work while holding their own locks from being
// re-entered before they release them.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	fn       func()
	ch       chan time.Time
	interval time.Duration // non-zero for tickers
	fired    bool
	stopped  bool
}

// NewFake returns a Fake positioned at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// NewFakeAt returns a Fake positioned at t.
func NewFakeAt(t time.Time) *Fake {
	return &Fake{now: t}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	f.timers = append(f.timers, &fakeTimer{deadline: f.deadlineLocked(d), ch: ch})
	return ch
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{deadline: f.deadlineLocked(d), fn: fn}
	f.timers = append(f.timers, t)
	return &fakeTimerHandle{f: f, t: t}
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{deadline: f.now.Add(d), ch: make(chan time.Time, 1), interval: d}
	f.timers = append(f.timers, t)
	return &fakeTickerHandle{f: f, t: t}
}

func (f *Fake) Sleep(d time.Duration) {
	<-f.After(d)
}

func (f *Fake) deadlineLocked(d time.Duration) time.Time {
	if d < 0 {
		d = 0
	}
	return f.now.Add(d)
}

// Advance moves the clock forward by d, firing every timer whose
// deadline falls within the window in deadline order. Timers scheduled
// by a firing callback are honored within the same Advance when their
// deadline also falls inside the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		t := f.nextDueLocked(target)
		if t == nil {
			break
		}
		if t.deadline.After(f.now) {
			f.now = t.deadline
		}
		fireAt := f.now
		if t.interval > 0 {
			t.deadline = t.deadline.Add(t.interval)
		} else {
			t.fired = true
		}
		fn, ch := t.fn, t.ch
		f.mu.Unlock()
		if fn != nil {
			fn()
		} else {
			select {
			case ch <- fireAt:
			default:
			}
		}
		f.mu.Lock()
	}
	f.now = target
	f.compactLocked()
	f.mu.Unlock()
}

// Pending reports how many timers are armed and not yet fired.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// nextDueLocked returns the live timer with the earliest deadline at or
// before target, preferring registration order on ties.
func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var due *fakeTimer
	for _, t := range f.timers {
		if t.fired || t.stopped || t.deadline.After(target) {
			continue
		}
		if due == nil || t.deadline.Before(due.deadline) {
			due = t
		}
	}
	return due
}

func (f *Fake) compactLocked() {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	f.timers = live
}

type fakeTimerHandle struct {
	f *Fake
	t *fakeTimer
}

func (h *fakeTimerHandle) Stop() bool {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	if h.t.fired || h.t.stopped {
		return false
	}
	h.t.stopped = true
	return true
}

type fakeTickerHandle struct {
	f *Fake
	t *fakeTimer
}

func (h *fakeTickerHandle) Chan() <-chan time.Time { return h.t.ch }

func (h *fakeTickerHandle) Stop() {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	h.t.stopped = true
}
