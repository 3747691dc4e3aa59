package poller

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Manager runs a set of pollers and serves on-demand refreshes.
type Manager struct {
	pollers []*Poller

	// singleflight group to deduplicate concurrent forced refreshes
	refreshGroup singleflight.Group
}

// NewManager creates a manager over the given pollers.
func NewManager(pollers ...*Poller) *Manager {
	return &Manager{pollers: pollers}
}

// Count returns the number of managed pollers.
func (m *Manager) Count() int {
	return len(m.pollers)
}

// Run starts every poller and blocks until the context is done and all
// pollers have returned.
func (m *Manager) Run(ctx context.Context) {
	if len(m.pollers) == 0 {
		logging.Debug("Poller", "No pollers configured")
		<-ctx.Done()
		return
	}

	logging.Info("Poller", "Starting %d pollers", len(m.pollers))

	var wg sync.WaitGroup
	for _, p := range m.pollers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx)
		}()
	}
	wg.Wait()

	logging.Info("Poller", "All pollers stopped")
}

// ForceAll polls every section immediately, ahead of schedule.
// Concurrent calls collapse into a single pass; every caller waits for
// that pass to finish.
func (m *Manager) ForceAll(ctx context.Context) {
	m.refreshGroup.Do("refresh", func() (interface{}, error) {
		for _, p := range m.pollers {
			p.poll(ctx)
		}
		return nil, nil
	})
}
