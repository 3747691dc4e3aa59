// Package engine implements the differential state synchronization core:
// the component that decides which of companion's state changes reach the
// rendering surface, when, and in what shape.
//
// # Architecture
//
// State is divided into named sections (pipelines, bots, alerts,
// sessions). Producers (backend pollers, the notification-file watcher,
// socket request handlers) push partial values into the engine; a single
// consumer sink receives wire-shaped messages.
//
// The engine is assembled from five cooperating parts:
//
//   - **ChangeDetector**: fingerprints each section's merged value and
//     suppresses updates that resolve to the previously delivered state.
//   - **SectionStore**: the authoritative section → value map with
//     shallow-merge semantics for partial updates.
//   - **CoalescingScheduler**: accumulates dirty sections behind a single
//     debounce timer whose delay follows the highest pending priority.
//   - **DispatchGate**: spaces dispatches a minimum interval apart and
//     keeps exactly one projection/send in flight.
//   - **Projector**: maps each dirty section through a registered builder
//     to its wire message and picks standalone vs. batch framing.
//
// # Update Flow
//
//	engine.Update("alerts", map[string]any{"count": 2}, engine.PriorityInteractive)
//
// The partial is merged over the stored value; if the merged result's
// fingerprint differs from the baseline, the section joins the pending
// set and the debounce timer is armed (or tightened, when the new
// priority outranks the pending one). When the timer fires, the gate
// projects all pending sections and hands the consumer one message,
// standalone for a single section or a batchUpdate envelope when several
// changed together, so the surface repaints atomically.
//
// # Guarantees
//
//   - An update whose merged value equals the delivered state produces no
//     dispatch.
//   - A dirty section stays dirty until successfully projected and sent;
//     dropped or deferred flush attempts never lose sections.
//   - A pending flush never waits longer than the delay of its highest
//     priority update.
//   - Two dispatches are never closer than the configured minimum
//     interval (except the first after startup).
//
// # Concurrency
//
// All engine operations serialize on one internal mutex; timer callbacks
// re-enter through the same lock, so core transitions never interleave.
// The sink is called with the lock held and must therefore enqueue
// without blocking and never call back into the engine. Each Engine
// instance is fully self-contained: independent instances never share
// state.
package engine
