package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority classifies how quickly an update must reach the consumer.
// Higher values never wait behind lower ones.
type Priority int

const (
	// PriorityBackground is routine polling; generous coalescing.
	PriorityBackground Priority = iota
	// PriorityNormal is ordinary state churn.
	PriorityNormal
	// PriorityInteractive is state a user is waiting to see.
	PriorityInteractive
	// PriorityImmediate skips coalescing entirely; only the dispatch
	// gate's minimum interval still applies.
	PriorityImmediate
)

// String makes Priority satisfy the fmt.Stringer interface.
func (p Priority) String() string {
	switch p {
	case PriorityBackground:
		return "background"
	case PriorityNormal:
		return "normal"
	case PriorityInteractive:
		return "interactive"
	case PriorityImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority converts a wire or config priority name into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "background":
		return PriorityBackground, nil
	case "normal", "":
		return PriorityNormal, nil
	case "interactive":
		return PriorityInteractive, nil
	case "immediate":
		return PriorityImmediate, nil
	default:
		return PriorityNormal, fmt.Errorf("unknown priority %q", s)
	}
}

// Config carries the timing constants for one engine instance. Zero
// fields are filled with defaults by New; the values are fixed for the
// lifetime of the engine.
type Config struct {
	// BackgroundDelay is the debounce delay for background updates.
	BackgroundDelay time.Duration
	// NormalDelay is the debounce delay for normal updates.
	NormalDelay time.Duration
	// InteractiveDelay is the debounce delay for interactive updates.
	InteractiveDelay time.Duration
	// MinInterval is the minimum spacing between two dispatches.
	MinInterval time.Duration
}

// DefaultConfig returns the stock timing table.
func DefaultConfig() Config {
	return Config{
		BackgroundDelay:  2 * time.Second,
		NormalDelay:      750 * time.Millisecond,
		InteractiveDelay: 150 * time.Millisecond,
		MinInterval:      250 * time.Millisecond,
	}
}

// delay maps a priority to its debounce delay. The table is
// monotonically non-increasing in priority; immediate is always zero.
func (c Config) delay(p Priority) time.Duration {
	switch p {
	case PriorityImmediate:
		return 0
	case PriorityInteractive:
		return c.InteractiveDelay
	case PriorityNormal:
		return c.NormalDelay
	default:
		return c.BackgroundDelay
	}
}

// TypeBatchUpdate is the message type of the batch envelope wrapping
// several section messages into one atomic unit.
const TypeBatchUpdate = "batchUpdate"

// Message is one wire-shaped unit delivered to the rendering surface.
// Fields are flattened beside the type tag on the wire:
//
//	{"type": "alertsUpdate", "count": 2}
type Message struct {
	Type   string
	Fields map[string]any
}

// MarshalJSON flattens Fields into the top-level object. The type tag
// always wins over a same-named field.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["type"] = m.Type
	return json.Marshal(out)
}

// SectionUpdate is one entry of a bulk update.
type SectionUpdate struct {
	Section  string
	Fields   map[string]any
	Priority Priority
}

// Sink receives the projected messages, one per flush. Implementations
// are fire-and-forget: they must enqueue without blocking and must not
// call back into the engine.
type Sink interface {
	Send(Message) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Message) error

// Send calls f(m).
func (f SinkFunc) Send(m Message) error { return f(m) }
