package engine

import (
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Builder produces the wire representation of one section from a copy of
// its current value. Builders are pure: they read the value they are
// given and nothing else. Returning nil suppresses output for this
// flush, used when a section has nothing worth showing or when a richer
// representation supersedes a lighter one and exactly one of the two
// must be sent.
type Builder func(value map[string]any) *Message

// Projector maps dirty sections to consumer messages through a builder
// registry populated at startup. Registration order defines the message
// order inside a batch, so new sections are purely additive.
type Projector struct {
	order    []string
	builders map[string]Builder
}

// NewProjector returns an empty registry.
func NewProjector() *Projector {
	return &Projector{builders: make(map[string]Builder)}
}

// Register binds section to builder. Re-registering replaces the builder
// without changing the section's position in batch ordering.
func (p *Projector) Register(section string, b Builder) {
	if _, exists := p.builders[section]; !exists {
		p.order = append(p.order, section)
	}
	p.builders[section] = b
}

// Sections returns the registered section names in registration order.
func (p *Projector) Sections() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Project builds the messages for the dirty sections in registration
// order, reading each section's current value through values. Dirty
// sections without a registered builder are skipped.
func (p *Projector) Project(dirty []string, values func(section string) map[string]any) []Message {
	if len(dirty) == 0 {
		return nil
	}
	remaining := make(map[string]struct{}, len(dirty))
	for _, s := range dirty {
		remaining[s] = struct{}{}
	}

	var out []Message
	for _, section := range p.order {
		if _, isDirty := remaining[section]; !isDirty {
			continue
		}
		delete(remaining, section)
		if msg := p.builders[section](values(section)); msg != nil {
			out = append(out, *msg)
		}
	}
	for section := range remaining {
		logging.Debug("Projector", "No builder registered for section %q", section)
	}
	return out
}

// Frame chooses the wire framing for one flush: a single message stands
// alone, several share one batch envelope the consumer applies
// atomically, none yields nil.
func Frame(messages []Message) *Message {
	switch len(messages) {
	case 0:
		return nil
	case 1:
		return &messages[0]
	default:
		return &Message{
			Type:   TypeBatchUpdate,
			Fields: map[string]any{"messages": messages},
		}
	}
}
