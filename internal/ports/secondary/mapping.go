package secondary

import (
	"context"
	"time"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// MappingEntry is one durable prod→test ID correspondence.
type MappingEntry struct {
	Kind   models.Kind
	ProdID string
	TestID string
}

// RunRecord summarizes one finished copy run for the runs ledger.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	DryRun       bool
	Created      int
	Updated      int
	Errors       int
	SnapshotPath string
}

// MappingRepository persists ID mappings across runs. A (kind, prod_id)
// pair maps to at most one test_id for the lifetime of the store.
type MappingRepository interface {
	// LoadAll returns every stored mapping grouped by kind.
	LoadAll(ctx context.Context) (map[models.Kind]map[string]string, error)

	// Upsert stores or refreshes one mapping entry.
	Upsert(ctx context.Context, entry MappingEntry) error

	// CountByKind returns the number of stored mappings per kind.
	CountByKind(ctx context.Context) (map[models.Kind]int, error)

	// RecordRun appends a run summary to the runs ledger.
	RecordRun(ctx context.Context, run RunRecord) error
}

// SnapshotWriter persists the immutable end-of-run snapshot artifact.
type SnapshotWriter interface {
	// Write stores the snapshot and returns the path of the written file.
	Write(snapshot *models.Snapshot) (string, error)
}
