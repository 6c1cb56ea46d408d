// Package primary defines the driving ports: the use-case interfaces the
// CLI adapters call into.
package primary

import (
	"context"
	"time"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// RunRequest selects what a copy run does. Kinds may be any subset of the
// four resource kinds in any order; the service enforces dependency order.
type RunRequest struct {
	// Kinds to copy. Empty means all kinds.
	Kinds []models.Kind

	// DryRun exercises the full listing, matching and statistics path
	// without issuing any mutating call and without persisting anything.
	DryRun bool

	// SkipUnchanged skips matched resources whose mirrored fields are
	// already identical instead of re-issuing a zero-diff update.
	SkipUnchanged bool
}

// RunReport is the outcome of one copy run. It always reflects actual
// per-resource outcomes, including partial failures.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// Kinds actually processed, in execution order.
	Kinds []models.Kind

	// Stats per processed kind.
	Stats map[models.Kind]models.Stats

	// Summary sums the per-kind stats.
	Summary models.Stats

	// KindFailures records kinds whose listing failed and were skipped
	// entirely, keyed by kind with the failure message.
	KindFailures map[models.Kind]string

	// SnapshotPath is the mapping file written at run end (empty for dry
	// runs or when persistence failed).
	SnapshotPath string

	// PersistenceError is set when the mapping snapshot or database write
	// failed. Remote mutations already performed are not rolled back.
	PersistenceError string
}

// HasFailures reports whether any resource errored or any kind was skipped.
func (r *RunReport) HasFailures() bool {
	return r.Summary.Errors > 0 || len(r.KindFailures) > 0
}

// SyncService coordinates a full copy run across resource kinds.
type SyncService interface {
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
}
