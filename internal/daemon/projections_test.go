package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
)

func TestProjectionsTableOrder(t *testing.T) {
	var sections []string
	for _, p := range Projections() {
		sections = append(sections, p.Section)
	}
	assert.Equal(t, []string{"pipelines", "bots", "alerts", "sessions"}, sections)
}

func TestPassthroughSuppressesEmpty(t *testing.T) {
	b := passthrough("alertsUpdate")

	assert.Nil(t, b(nil))
	assert.Nil(t, b(map[string]any{}))

	msg := b(map[string]any{"count": 2})
	require.NotNil(t, msg)
	assert.Equal(t, "alertsUpdate", msg.Type)
	assert.Equal(t, 2, msg.Fields["count"])
}

func TestBuildBotsPanelWhenAgentsPresent(t *testing.T) {
	msg := buildBots(map[string]any{
		"agents": []any{map[string]any{"name": "triage"}},
		"idle":   1,
	})

	require.NotNil(t, msg)
	assert.Equal(t, "botsPanel", msg.Type)
	assert.Contains(t, msg.Fields, "agents")
	assert.Equal(t, 1, msg.Fields["idle"])
}

func TestBuildBotsBadgeWithoutAgents(t *testing.T) {
	msg := buildBots(map[string]any{"count": 3})
	require.NotNil(t, msg)
	assert.Equal(t, "botsBadge", msg.Type)
	assert.Equal(t, 3, msg.Fields["count"])

	// An empty agent list renders the badge, not a hollow panel.
	msg = buildBots(map[string]any{"agents": []any{}, "count": 3})
	require.NotNil(t, msg)
	assert.Equal(t, "botsBadge", msg.Type)
	assert.NotContains(t, msg.Fields, "agents")
}

func TestBuildBotsEmptyIsNil(t *testing.T) {
	assert.Nil(t, buildBots(nil))
	assert.Nil(t, buildBots(map[string]any{}))
	assert.Nil(t, buildBots(map[string]any{"agents": []any{}}))
}

func TestRegisterProjectionsRendersAllSections(t *testing.T) {
	e := engine.New(engine.Config{}, engine.SinkFunc(func(engine.Message) error { return nil }))
	t.Cleanup(e.Stop)
	RegisterProjections(e)

	e.Update("pipelines", map[string]any{"active": 2}, engine.PriorityBackground)
	e.Update("bots", map[string]any{"count": 1}, engine.PriorityBackground)

	frame := e.ProjectAll()
	require.NotNil(t, frame)
	require.Equal(t, engine.TypeBatchUpdate, frame.Type)
	msgs, ok := frame.Fields["messages"].([]engine.Message)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "pipelinesUpdate", msgs[0].Type)
	assert.Equal(t, "botsBadge", msgs[1].Type)
}
