package engine

import (
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/clock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// DispatchGate spaces dispatches at least minInterval apart and keeps at
// most one produce/send in flight. An attempt arriving before the budget
// boundary is deferred to fire exactly at the boundary; further attempts
// while a deferred run is armed, or while a dispatch is executing, are
// dropped. Their sections stay pending, because the gate never clears
// the pending set itself.
//
// The gate owns no lock; the engine serializes every call, including the
// deferred fire callback.
type DispatchGate struct {
	clk         clock.Clock
	minInterval time.Duration
	fire        func()

	last     time.Time
	inFlight bool
	deferred clock.Timer
}

func newDispatchGate(clk clock.Clock, minInterval time.Duration, fire func()) *DispatchGate {
	return &DispatchGate{clk: clk, minInterval: minInterval, fire: fire}
}

// Run executes produce and hands a non-nil payload to send, subject to
// exclusivity and spacing. A nil payload means nothing to send: no
// consumer call is made and the spacing clock is not advanced, so an
// empty flush costs no budget. The first dispatch after startup is never
// delayed.
func (g *DispatchGate) Run(produce func() *Message, send func(Message)) {
	if g.inFlight {
		logging.Debug("Gate", "Dispatch in flight, dropping attempt")
		return
	}
	now := g.clk.Now()
	if !g.last.IsZero() {
		if wait := g.minInterval - now.Sub(g.last); wait > 0 {
			if g.deferred == nil {
				g.deferred = g.clk.AfterFunc(wait, g.fire)
				logging.Debug("Gate", "Attempt %v early, deferred to budget boundary", wait)
			}
			return
		}
	}
	if g.deferred != nil {
		g.deferred.Stop()
		g.deferred = nil
	}

	g.inFlight = true
	if payload := produce(); payload != nil {
		send(*payload)
		g.last = g.clk.Now()
	}
	g.inFlight = false
}

// Stop cancels a deferred run.
func (g *DispatchGate) Stop() {
	if g.deferred != nil {
		g.deferred.Stop()
		g.deferred = nil
	}
}
