// Package filelock provides cross-process advisory locking over a shared
// file. The lock is a sibling marker file created exclusively; whoever
// creates it owns the lock until it releases the marker or another
// process reclaims it as stale. The protocol is cooperative: it only
// excludes writers that honor it.
package filelock

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Default timings, used for zero Locker fields. Overridable through the
// lock section of the config file.
const (
	DefaultTimeout       = 2 * time.Second
	DefaultRetryInterval = 50 * time.Millisecond
	DefaultStaleAfter    = 10 * time.Second
)

// ErrNotAcquired reports that the lock stayed busy for the whole wait.
// Callers must treat the protected access as skipped this cycle and rely
// on the next cycle, never on this attempt succeeding.
var ErrNotAcquired = errors.New("file lock not acquired")

// Record is what the owner writes into the marker. Informational only:
// liveness decisions use the marker's existence and mtime, never its
// contents.
type Record struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquiredAt"`
	Instance   string    `json:"instance"`
}

// Locker acquires advisory locks with bounded waiting and stale-marker
// recovery. The zero value is not usable; construct with New.
type Locker struct {
	// Timeout bounds the total wait of Acquire when the caller passes
	// no explicit timeout, and of WithLock always.
	Timeout time.Duration
	// RetryInterval is the sleep between acquisition attempts.
	RetryInterval time.Duration
	// StaleAfter is the marker age past which any process may reclaim
	// the lock.
	StaleAfter time.Duration

	instance string
}

// New returns a Locker with the given timings; zero values fall back to
// the package defaults.
func New(timeout, retryInterval, staleAfter time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Locker{
		Timeout:       timeout,
		RetryInterval: retryInterval,
		StaleAfter:    staleAfter,
		instance:      uuid.NewString(),
	}
}

// LockPath returns the marker path guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// Acquire attempts to take the lock for path, retrying until timeout
// elapses (timeout <= 0 uses the Locker's default). A marker older than
// StaleAfter is deleted and the attempt retried immediately, tolerating
// a concurrent deleter. Returns false once the wait is exhausted.
func (l *Locker) Acquire(path string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = l.Timeout
	}
	marker := LockPath(path)
	deadline := time.Now().Add(timeout)

	for {
		if l.tryCreate(marker) {
			return true
		}

		if age, stale := l.markerAge(marker); stale {
			err := os.Remove(marker)
			if err == nil {
				logging.Warn("FileLock", "Reclaimed stale marker %s (age %v)", marker, age)
			}
			if err == nil || os.IsNotExist(err) {
				// Ours or a racing reclaim; either way the marker is
				// gone, so try the create again right away.
				continue
			}
		}

		if time.Now().Add(l.RetryInterval).After(deadline) {
			logging.Debug("FileLock", "Gave up on %s after %v", marker, timeout)
			return false
		}
		time.Sleep(l.RetryInterval)
	}
}

// Release drops the lock for path, tolerating an already-removed marker.
func (l *Locker) Release(path string) error {
	err := os.Remove(LockPath(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WithLock runs fn while holding the lock for path and always releases
// it, fn error or not. When the lock cannot be acquired within the
// Locker's timeout it returns ErrNotAcquired without calling fn.
func (l *Locker) WithLock(path string, fn func() error) error {
	if !l.Acquire(path, l.Timeout) {
		return ErrNotAcquired
	}
	defer func() {
		if err := l.Release(path); err != nil {
			logging.Warn("FileLock", "Failed to release %s: %v", LockPath(path), err)
		}
	}()
	return fn()
}

// tryCreate attempts the exclusive create that decides ownership.
func (l *Locker) tryCreate(marker string) bool {
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if !os.IsExist(err) {
			logging.Debug("FileLock", "Create %s failed: %v", marker, err)
		}
		return false
	}
	record := Record{
		PID:        os.Getpid(),
		AcquiredAt: time.Now().UTC(),
		Instance:   l.instance,
	}
	if raw, err := json.Marshal(record); err == nil {
		// Content is informational; a failed write does not void the lock.
		_, _ = f.Write(raw)
	}
	_ = f.Close()
	return true
}

// markerAge stats the marker and reports its age and whether it is past
// the staleness threshold. A missing or unreadable marker is not stale;
// the next create attempt decides.
func (l *Locker) markerAge(marker string) (time.Duration, bool) {
	fi, err := os.Stat(marker)
	if err != nil {
		return 0, false
	}
	age := time.Since(fi.ModTime())
	return age, age > l.StaleAfter
}
