// Package mapping holds the in-memory prod→test ID table and the per-kind
// run statistics. The store is pure state: loading and persistence are the
// job of the sqlite and filesystem adapters.
package mapping

import (
	"time"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// Store maps production IDs to test IDs per resource kind and accumulates
// run statistics. It is owned by the sync service for the duration of a run
// and lent to each reconciliation pass; there is no concurrent writer.
type Store struct {
	mappings map[models.Kind]map[string]string
	stats    map[models.Kind]*models.Stats

	// fresh tracks entries added during this run, so only new mappings
	// are written back to the database at run end.
	fresh map[models.Kind]map[string]string
}

// NewStore returns an empty store with tables for every kind.
func NewStore() *Store {
	s := &Store{
		mappings: make(map[models.Kind]map[string]string),
		stats:    make(map[models.Kind]*models.Stats),
		fresh:    make(map[models.Kind]map[string]string),
	}
	for _, kind := range models.AllKinds() {
		s.mappings[kind] = make(map[string]string)
		s.stats[kind] = &models.Stats{}
		s.fresh[kind] = make(map[string]string)
	}
	return s
}

// Seed preloads mappings from a previous run without marking them fresh.
func (s *Store) Seed(loaded map[models.Kind]map[string]string) {
	for kind, table := range loaded {
		for prodID, testID := range table {
			s.mappings[kind][prodID] = testID
		}
	}
}

// Get returns the test ID recorded for a production ID.
func (s *Store) Get(kind models.Kind, prodID string) (string, bool) {
	testID, ok := s.mappings[kind][prodID]
	return testID, ok
}

// Add records a prod→test correspondence. A prod ID maps to at most one
// test ID. Re-adding an identical pair is a no-op, so mappings seeded from
// a previous run are not re-persisted when the update pass touches them.
func (s *Store) Add(kind models.Kind, prodID, testID string) {
	if existing, ok := s.mappings[kind][prodID]; ok && existing == testID {
		return
	}
	s.mappings[kind][prodID] = testID
	s.fresh[kind][prodID] = testID
}

// Fresh returns the mappings added during this run, grouped by kind.
func (s *Store) Fresh() map[models.Kind]map[string]string {
	out := make(map[models.Kind]map[string]string)
	for kind, table := range s.fresh {
		if len(table) == 0 {
			continue
		}
		copied := make(map[string]string, len(table))
		for k, v := range table {
			copied[k] = v
		}
		out[kind] = copied
	}
	return out
}

// MarkCreated increments the created counter for kind.
func (s *Store) MarkCreated(kind models.Kind) { s.stats[kind].Created++ }

// MarkUpdated increments the updated counter for kind.
func (s *Store) MarkUpdated(kind models.Kind) { s.stats[kind].Updated++ }

// MarkError increments the error counter for kind.
func (s *Store) MarkError(kind models.Kind) { s.stats[kind].Errors++ }

// Stats returns a copy of the counters for kind.
func (s *Store) Stats(kind models.Kind) models.Stats {
	return *s.stats[kind]
}

// Summary sums the counters across all kinds.
func (s *Store) Summary() models.Stats {
	var total models.Stats
	for _, kind := range models.AllKinds() {
		total.Add(*s.stats[kind])
	}
	return total
}

// Mappings returns a deep copy of every mapping table.
func (s *Store) Mappings() map[models.Kind]map[string]string {
	out := make(map[models.Kind]map[string]string, len(s.mappings))
	for kind, table := range s.mappings {
		copied := make(map[string]string, len(table))
		for k, v := range table {
			copied[k] = v
		}
		out[kind] = copied
	}
	return out
}

// Snapshot freezes the store into the immutable end-of-run artifact.
func (s *Store) Snapshot(runID string, at time.Time) *models.Snapshot {
	stats := make(map[models.Kind]models.Stats, len(s.stats))
	for kind, st := range s.stats {
		stats[kind] = *st
	}
	return &models.Snapshot{
		RunID:     runID,
		Timestamp: at,
		Mappings:  s.Mappings(),
		Stats:     stats,
		Summary:   s.Summary(),
	}
}
