package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
)

// recordingApplier captures BulkUpdate batches and signals each one.
type recordingApplier struct {
	mu      sync.Mutex
	batches [][]engine.SectionUpdate
	applied chan struct{}
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{applied: make(chan struct{}, 16)}
}

func (a *recordingApplier) BulkUpdate(updates []engine.SectionUpdate) []string {
	a.mu.Lock()
	a.batches = append(a.batches, updates)
	a.mu.Unlock()
	a.applied <- struct{}{}

	names := make([]string, 0, len(updates))
	for _, u := range updates {
		names = append(names, u.Section)
	}
	return names
}

func (a *recordingApplier) batchCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

func (a *recordingApplier) batch(t *testing.T, i int) []engine.SectionUpdate {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.Greater(t, len(a.batches), i)
	return a.batches[i]
}

func (a *recordingApplier) waitApplied(t *testing.T) {
	t.Helper()
	select {
	case <-a.applied:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for entries to be applied")
	}
}

func startTestWatcher(t *testing.T) (*Store, *recordingApplier, *Watcher) {
	t.Helper()
	store := testStore(t)
	applier := newRecordingApplier()
	watcher := NewWatcher(store, applier, 30*time.Millisecond)
	require.NoError(t, watcher.Start(context.Background()))
	t.Cleanup(func() { watcher.Stop() })
	return store, applier, watcher
}

func TestWatcherAppliesAppendedEntries(t *testing.T) {
	store, applier, _ := startTestWatcher(t)

	_, err := store.Append("alerts", "interactive", map[string]any{"count": 3})
	require.NoError(t, err)

	applier.waitApplied(t)

	batch := applier.batch(t, 0)
	require.Len(t, batch, 1)
	assert.Equal(t, "alerts", batch[0].Section)
	assert.Equal(t, engine.PriorityInteractive, batch[0].Priority)
	assert.Equal(t, float64(3), batch[0].Fields["count"])
}

func TestWatcherBatchesBurstIntoOneApplication(t *testing.T) {
	store, applier, _ := startTestWatcher(t)

	for i, section := range []string{"alerts", "bots", "pipelines"} {
		_, err := store.Append(section, "normal", map[string]any{"seq": i})
		require.NoError(t, err)
	}

	applier.waitApplied(t)

	batch := applier.batch(t, 0)
	require.Len(t, batch, 3, "burst must drain as one scheduling unit")
	assert.Equal(t, "alerts", batch[0].Section)
	assert.Equal(t, "bots", batch[1].Section)
	assert.Equal(t, "pipelines", batch[2].Section)

	// The drain's own write-back must not ripple into a second batch.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, applier.batchCount())
}

func TestWatcherDrainsBacklogOnStart(t *testing.T) {
	store := testStore(t)
	_, err := store.Append("sessions", "background", map[string]any{"active": 2})
	require.NoError(t, err)

	applier := newRecordingApplier()
	watcher := NewWatcher(store, applier, 30*time.Millisecond)
	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	require.Equal(t, 1, applier.batchCount(), "backlog must be applied during Start")
	batch := applier.batch(t, 0)
	require.Len(t, batch, 1)
	assert.Equal(t, "sessions", batch[0].Section)
}

func TestWatcherStopPreventsFurtherDrains(t *testing.T) {
	store, applier, watcher := startTestWatcher(t)
	require.NoError(t, watcher.Stop())

	_, err := store.Append("alerts", "normal", map[string]any{"count": 1})
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, applier.batchCount(), "stopped watcher must not drain")
}

func TestWatcherStartTwiceIsIdempotent(t *testing.T) {
	store, applier, watcher := startTestWatcher(t)

	require.NoError(t, watcher.Start(context.Background()))

	_, err := store.Append("alerts", "normal", map[string]any{"count": 1})
	require.NoError(t, err)
	applier.waitApplied(t)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, applier.batchCount(), "double start must not double-apply")
}
