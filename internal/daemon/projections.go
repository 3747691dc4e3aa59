package daemon

import (
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
)

// Projection binds one section to its builder.
type Projection struct {
	Section string
	Builder engine.Builder
}

// Projections returns the builder table for every section the companion
// renders. Table order fixes message order inside a batch.
func Projections() []Projection {
	return []Projection{
		{Section: "pipelines", Builder: passthrough("pipelinesUpdate")},
		{Section: "bots", Builder: buildBots},
		{Section: "alerts", Builder: passthrough("alertsUpdate")},
		{Section: "sessions", Builder: passthrough("sessionsUpdate")},
	}
}

// RegisterProjections installs the companion builder table on e.
func RegisterProjections(e *engine.Engine) {
	for _, p := range Projections() {
		e.Register(p.Section, p.Builder)
	}
}

// passthrough renders a section's value as one typed message, nothing
// when the section is empty.
func passthrough(msgType string) engine.Builder {
	return func(value map[string]any) *engine.Message {
		if len(value) == 0 {
			return nil
		}
		return &engine.Message{Type: msgType, Fields: value}
	}
}

// buildBots picks exactly one representation: the rich panel when an
// agent list is present, otherwise the badge summary without the empty
// list.
func buildBots(value map[string]any) *engine.Message {
	if len(value) == 0 {
		return nil
	}
	if hasItems(value["agents"]) {
		return &engine.Message{Type: "botsPanel", Fields: value}
	}
	fields := make(map[string]any, len(value))
	for k, v := range value {
		if k == "agents" {
			continue
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return nil
	}
	return &engine.Message{Type: "botsBadge", Fields: fields}
}

// hasItems reports whether v is a non-empty list. Poller output decodes
// lists as []any; in-process producers may pass typed slices.
func hasItems(v any) bool {
	switch items := v.(type) {
	case []any:
		return len(items) > 0
	case []map[string]any:
		return len(items) > 0
	case []string:
		return len(items) > 0
	default:
		return false
	}
}
