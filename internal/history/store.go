// Package history keeps a per-service, retention-bounded log of check
// results for the lifetime of the process.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/hazz-dev/stackmon/internal/probe"
)

const (
	// RetentionWindow is how long a recorded result stays eligible for
	// reads. Older entries are evicted on the next write to the same
	// service.
	RetentionWindow = 24 * time.Hour

	// DefaultHistoryLimit is the number of entries History returns when
	// no limit is given.
	DefaultHistoryLimit = 50

	// uptimeSampleSize caps how many recent entries feed the uptime
	// calculation.
	uptimeSampleSize = 100

	// DefaultUptimeWindow is the time window UptimePercent considers
	// when none is given.
	DefaultUptimeWindow = 24 * time.Hour
)

// Store is a thread-safe, in-memory log of results keyed by service name.
// Entries for a service are ordered oldest to newest. A single coarse lock
// guards the whole store.
type Store struct {
	mu      sync.Mutex
	results map[string][]probe.Result
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{results: make(map[string][]probe.Result)}
}

// Add appends a result to its service's log and evicts entries older than
// the retention window. A zero CheckedAt is set to now.
func (s *Store) Add(r probe.Result) {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.results[r.Name], r)
	cutoff := time.Now().Add(-RetentionWindow)
	kept := entries[:0]
	for _, e := range entries {
		if e.CheckedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	s.results[r.Name] = kept
}

// History returns up to limit most recent entries for the service in
// chronological order. limit <= 0 means DefaultHistoryLimit. Unknown names
// yield an empty slice.
func (s *Store) History(name string, limit int) []probe.Result {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.results[name]
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]probe.Result, len(entries))
	copy(out, entries)
	return out
}

// UptimePercent returns the percentage of healthy results among the most
// recent entries (at most 100) within the window. window <= 0 means
// DefaultUptimeWindow. Returns 0 when no entries qualify.
func (s *Store) UptimePercent(name string, window time.Duration) float64 {
	if window <= 0 {
		window = DefaultUptimeWindow
	}
	cutoff := time.Now().Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.results[name]
	if len(entries) > uptimeSampleSize {
		entries = entries[len(entries)-uptimeSampleSize:]
	}

	var total, healthy int
	for _, e := range entries {
		if !e.CheckedAt.After(cutoff) {
			continue
		}
		total++
		if e.Status.Healthy() {
			healthy++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(healthy) / float64(total) * 100
}

// ServiceNames returns the sorted names of all services with recorded
// results.
func (s *Store) ServiceNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.results))
	for name := range s.results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
