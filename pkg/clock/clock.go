// Package clock abstracts time operations so timer-driven code can be
// tested deterministically. Production code injects System; tests inject
// a Fake and advance it explicitly.
package clock

import "time"

// Clock is the time source used by coalescing, dispatch spacing, and
// polling loops. Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed.
	After(d time.Duration) <-chan time.Time

	// AfterFunc schedules f to run after d. f runs on its own goroutine
	// (or on the advancing goroutine for a Fake); callers holding locks
	// are never re-entered synchronously.
	AfterFunc(d time.Duration, f func()) Timer

	// NewTicker returns a ticker that delivers on its channel every d.
	NewTicker(d time.Duration) Ticker

	// Sleep blocks the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Timer is a handle to a pending AfterFunc call.
type Timer interface {
	// Stop cancels the pending call. It reports whether the call was
	// still pending; false means it already ran or was stopped.
	Stop() bool
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// Chan returns the delivery channel. Ticks are dropped, not queued,
	// when the consumer falls behind.
	Chan() <-chan time.Time

	// Stop turns the ticker off. It does not close the channel.
	Stop()
}

// System is the Clock backed by the time package.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (systemClock) Sleep(d time.Duration)                  { time.Sleep(d) }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{t: time.AfterFunc(d, f)}
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() bool { return s.t.Stop() }

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) Chan() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()                  { s.t.Stop() }
