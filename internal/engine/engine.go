package engine

import (
	"sync"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/clock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Engine is one differential state synchronization instance bound to one
// consumer sink. All mutable state lives on the instance; independent
// engines never interfere.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	clk       clock.Clock
	sink      Sink
	store     *SectionStore
	scheduler *CoalescingScheduler
	gate      *DispatchGate
	projector *Projector
	stopped   bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock substitutes the time source, letting tests drive timers
// deterministically.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) { e.clk = clk }
}

// New returns an engine dispatching to sink. Zero Config fields receive
// the defaults from DefaultConfig.
func New(cfg Config, sink Sink, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if cfg.BackgroundDelay == 0 {
		cfg.BackgroundDelay = defaults.BackgroundDelay
	}
	if cfg.NormalDelay == 0 {
		cfg.NormalDelay = defaults.NormalDelay
	}
	if cfg.InteractiveDelay == 0 {
		cfg.InteractiveDelay = defaults.InteractiveDelay
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = defaults.MinInterval
	}

	e := &Engine{
		cfg:  cfg,
		sink: sink,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clk == nil {
		e.clk = clock.System
	}

	e.store = NewSectionStore(NewChangeDetector())
	e.projector = NewProjector()
	e.scheduler = newCoalescingScheduler(e.clk, cfg, e.flush)
	e.gate = newDispatchGate(e.clk, cfg.MinInterval, e.flush)
	return e
}

// Register binds a projection builder to a section. Call during wiring,
// before producers start.
func (e *Engine) Register(section string, b Builder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.projector.Register(section, b)
}

// Update merges partial into section and, when the merged value differs
// from the last delivered one, schedules a dispatch at the given
// priority. It reports whether the section changed.
func (e *Engine) Update(section string, partial map[string]any, priority Priority) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged, changed := e.store.Apply(section, partial)
	if !changed {
		logging.Debug("Engine", "Section %q unchanged, nothing scheduled", section)
		return false
	}
	logging.Debug("Engine", "Section %q changed (%d key(s)), dirty at %s priority",
		section, len(merged), priority)
	e.scheduler.MarkDirty([]string{section}, priority)
	return true
}

// BulkUpdate applies every entry and reports the changed subset to the
// scheduler as one unit, at the highest priority among the changed
// entries, so a batch of simultaneous producer updates costs a single
// scheduling event. It returns the changed section names.
func (e *Engine) BulkUpdate(updates []SectionUpdate) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var changed []string
	seen := make(map[string]struct{})
	highest := PriorityBackground
	for _, u := range updates {
		if _, didChange := e.store.Apply(u.Section, u.Fields); !didChange {
			continue
		}
		if _, dup := seen[u.Section]; !dup {
			seen[u.Section] = struct{}{}
			changed = append(changed, u.Section)
		}
		if u.Priority > highest {
			highest = u.Priority
		}
	}
	if len(changed) > 0 {
		logging.Debug("Engine", "Bulk update changed %d of %d entries", len(changed), len(updates))
		e.scheduler.MarkDirty(changed, highest)
	}
	return changed
}

// Invalidate marks every stored section dirty so the next flush repaints
// the full surface even though no value changed.
func (e *Engine) Invalidate(priority Priority) {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := e.store.Names()
	if len(names) == 0 {
		return
	}
	logging.Debug("Engine", "Invalidating %d section(s) at %s priority", len(names), priority)
	e.scheduler.MarkDirty(names, priority)
}

// Snapshot returns a copy of every section's current value.
func (e *Engine) Snapshot() map[string]map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// ProjectAll renders every registered section's current state into one
// framed message, bypassing the dispatch pipeline. Used to bootstrap a
// consumer that attaches mid-run; returns nil when every builder
// suppressed its section.
func (e *Engine) ProjectAll() *Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Frame(e.projector.Project(e.projector.Sections(), e.store.Get))
}

// Flush forces a dispatch attempt now, still subject to the gate's
// spacing and exclusivity.
func (e *Engine) Flush() {
	e.flush()
}

// Stop cancels armed timers. Pending sections are discarded; the engine
// must not be used afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.scheduler.Stop()
	e.gate.Stop()
}

// flush is the timer-fire path: drain the pending set, project it, and
// send under the gate's rules.
func (e *Engine) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.gate.Run(e.produceLocked, e.sendLocked)
}

// produceLocked drains the pending sections into one framed payload,
// nil when there is nothing to send.
func (e *Engine) produceLocked() *Message {
	dirty := e.scheduler.Take()
	if len(dirty) == 0 {
		return nil
	}
	return Frame(e.projector.Project(dirty, e.store.Get))
}

func (e *Engine) sendLocked(m Message) {
	start := e.clk.Now()
	if err := e.sink.Send(m); err != nil {
		// Not retried; the next change-triggered flush carries
		// current state for every section.
		logging.Error("Engine", err, "Consumer send failed")
		return
	}
	if elapsed := e.clk.Now().Sub(start); elapsed > 50*time.Millisecond {
		logging.Warn("Engine", "Slow consumer send: %v", elapsed)
	}
}
