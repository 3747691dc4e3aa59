package engine

import (
	"sort"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/clock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// CoalescingScheduler accumulates dirty sections behind a single debounce
// timer and hands them off when the timer fires. The timer's delay
// follows the highest priority seen since the set was opened: a
// higher-priority arrival re-arms the timer with its shorter delay,
// measured from the arrival, so no update waits out a slower timer that
// happened to start first.
//
// The scheduler owns no lock; the engine serializes every call,
// including the fire callback.
type CoalescingScheduler struct {
	clk  clock.Clock
	cfg  Config
	fire func()

	pending  map[string]struct{}
	priority Priority
	openedAt time.Time
	timer    clock.Timer
}

func newCoalescingScheduler(clk clock.Clock, cfg Config, fire func()) *CoalescingScheduler {
	return &CoalescingScheduler{
		clk:     clk,
		cfg:     cfg,
		fire:    fire,
		pending: make(map[string]struct{}),
	}
}

// MarkDirty unions sections into the pending set at the given priority.
// From idle it opens a new pending set and arms the timer; while pending
// it re-arms only when the priority rises. Equal or lower priorities
// ride the already-armed (sooner or equal) timer.
func (c *CoalescingScheduler) MarkDirty(sections []string, p Priority) {
	if len(sections) == 0 {
		return
	}
	wasIdle := len(c.pending) == 0
	for _, s := range sections {
		c.pending[s] = struct{}{}
	}
	switch {
	case wasIdle:
		c.priority = p
		c.openedAt = c.clk.Now()
		c.arm(p)
	case p > c.priority:
		c.priority = p
		c.arm(p)
	}
}

// arm replaces any armed timer so at most one is outstanding.
func (c *CoalescingScheduler) arm(p Priority) {
	if c.timer != nil {
		c.timer.Stop()
	}
	delay := c.cfg.delay(p)
	c.timer = c.clk.AfterFunc(delay, c.fire)
	logging.Debug("Scheduler", "Armed %s timer (%v) for %d pending section(s)", p, delay, len(c.pending))
}

// Take returns the pending sections in sorted order and resets the
// scheduler to idle, cancelling any armed timer. It returns nil when
// nothing is pending.
func (c *CoalescingScheduler) Take() []string {
	if len(c.pending) == 0 {
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	out := make([]string, 0, len(c.pending))
	for s := range c.pending {
		out = append(out, s)
	}
	sort.Strings(out)
	logging.Debug("Scheduler", "Taking %d section(s) opened %v ago at %s priority",
		len(out), c.clk.Now().Sub(c.openedAt), c.priority)

	c.pending = make(map[string]struct{})
	c.priority = PriorityBackground
	c.openedAt = time.Time{}
	return out
}

// HasPending reports whether any section awaits dispatch.
func (c *CoalescingScheduler) HasPending() bool {
	return len(c.pending) > 0
}

// Stop cancels the armed timer, leaving the pending set intact.
func (c *CoalescingScheduler) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
