package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/clock"
)

// gateHarness wires a gate whose deferred runs re-enter Run the way the
// engine's flush path does.
type gateHarness struct {
	gate     *DispatchGate
	fc       *clock.Fake
	produced int
	payload  *Message
	sentAt   []time.Time
}

func newGateHarness(fc *clock.Fake) *gateHarness {
	h := &gateHarness{fc: fc, payload: &Message{Type: "x"}}
	h.gate = newDispatchGate(fc, 250*time.Millisecond, h.attempt)
	return h
}

func (h *gateHarness) attempt() {
	h.gate.Run(h.produce, h.send)
}

func (h *gateHarness) produce() *Message {
	h.produced++
	return h.payload
}

func (h *gateHarness) send(Message) {
	h.sentAt = append(h.sentAt, h.fc.Now())
}

func TestGateFirstDispatchNotDelayed(t *testing.T) {
	fc := clock.NewFake()
	h := newGateHarness(fc)

	h.attempt()

	require.Len(t, h.sentAt, 1)
	assert.Equal(t, fc.Now(), h.sentAt[0])
}

func TestGateEarlyAttemptDeferredToExactBoundary(t *testing.T) {
	fc := clock.NewFake()
	h := newGateHarness(fc)
	start := fc.Now()

	h.attempt() // first dispatch at t0
	fc.Advance(100 * time.Millisecond)
	h.attempt() // 150ms early: deferred, not dropped

	require.Len(t, h.sentAt, 1, "early attempt must not dispatch yet")

	fc.Advance(150 * time.Millisecond)
	require.Len(t, h.sentAt, 2)
	assert.Equal(t, 250*time.Millisecond, h.sentAt[1].Sub(start),
		"deferred dispatch must fire exactly at the budget boundary")
}

func TestGateDropsAttemptsWhileDeferred(t *testing.T) {
	fc := clock.NewFake()
	h := newGateHarness(fc)

	h.attempt()
	fc.Advance(100 * time.Millisecond)
	h.attempt() // arms the deferred run
	h.attempt() // dropped
	h.attempt() // dropped

	assert.Equal(t, 1, fc.Pending(), "dropped attempts must not arm extra timers")

	fc.Advance(150 * time.Millisecond)
	assert.Len(t, h.sentAt, 2, "exactly one dispatch at the boundary")
	assert.Equal(t, 2, h.produced)
}

func TestGateNilPayloadDoesNotConsumeBudget(t *testing.T) {
	fc := clock.NewFake()
	h := newGateHarness(fc)

	h.payload = nil
	h.attempt()
	require.Empty(t, h.sentAt, "nil payload must not be sent")

	// The spacing clock did not advance, so a real payload goes out
	// right away.
	h.payload = &Message{Type: "x"}
	h.attempt()
	require.Len(t, h.sentAt, 1)
	assert.Equal(t, fc.Now(), h.sentAt[0])
}

func TestGateReentrantAttemptDropped(t *testing.T) {
	fc := clock.NewFake()

	var g *DispatchGate
	produced := 0
	sent := 0
	produce := func() *Message {
		produced++
		// A second attempt arriving mid-dispatch must be dropped.
		g.Run(func() *Message { produced++; return &Message{Type: "inner"} },
			func(Message) { sent++ })
		return &Message{Type: "outer"}
	}
	g = newDispatchGate(fc, 250*time.Millisecond, func() {})

	g.Run(produce, func(Message) { sent++ })

	assert.Equal(t, 1, produced, "inner attempt must not produce")
	assert.Equal(t, 1, sent, "inner attempt must not send")
}

func TestGateStopCancelsDeferredRun(t *testing.T) {
	fc := clock.NewFake()
	h := newGateHarness(fc)

	h.attempt()
	fc.Advance(100 * time.Millisecond)
	h.attempt()
	h.gate.Stop()

	fc.Advance(time.Minute)
	assert.Len(t, h.sentAt, 1, "stopped gate must not run the deferred dispatch")
}
