// Package app implements the primary ports: the use cases driving the
// reconciliation core.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/reconcile"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/primary"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

// SyncServiceImpl implements the SyncService interface. It sequences kinds
// in dependency order, lends the shared mapping store to each pass, and
// persists the run outcome.
type SyncServiceImpl struct {
	client    secondary.ResourceClient
	repo      secondary.MappingRepository
	snapshots secondary.SnapshotWriter
	log       zerolog.Logger
}

// NewSyncService creates a new SyncService with injected dependencies.
func NewSyncService(client secondary.ResourceClient, repo secondary.MappingRepository, snapshots secondary.SnapshotWriter, log zerolog.Logger) *SyncServiceImpl {
	return &SyncServiceImpl{
		client:    client,
		repo:      repo,
		snapshots: snapshots,
		log:       log,
	}
}

// Run executes one copy run. Partial failures never abort the run: the
// report always reflects actual outcomes, and whatever progress was made is
// persisted even when some resources errored.
func (s *SyncServiceImpl) Run(ctx context.Context, req primary.RunRequest) (*primary.RunReport, error) {
	kinds, err := orderKinds(req.Kinds)
	if err != nil {
		return nil, err
	}

	store := mapping.NewStore()

	// Prior runs' mappings are the fast path that keeps re-runs from
	// creating duplicates.
	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored mappings: %w", err)
	}
	store.Seed(loaded)

	engine := reconcile.NewEngine(s.client, store, s.log, reconcile.Options{
		DryRun:        req.DryRun,
		SkipUnchanged: req.SkipUnchanged,
	})
	strategies := map[models.Kind]reconcile.Strategy{
		models.KindTaxRate: reconcile.NewTaxRateStrategy(),
		models.KindProduct: reconcile.NewProductStrategy(),
		models.KindPrice:   reconcile.NewPriceStrategy(store),
		models.KindCoupon:  reconcile.NewCouponStrategy(store, s.log),
	}

	report := &primary.RunReport{
		RunID:        uuid.NewString(),
		StartedAt:    time.Now(),
		DryRun:       req.DryRun,
		Kinds:        kinds,
		Stats:        make(map[models.Kind]models.Stats, len(kinds)),
		KindFailures: make(map[models.Kind]string),
	}

	for _, kind := range kinds {
		if err := engine.Reconcile(ctx, strategies[kind]); err != nil {
			// A failed listing skips the whole kind; it is reported,
			// never treated as an empty environment.
			report.KindFailures[kind] = err.Error()
			s.log.Error().Err(err).Str("kind", string(kind)).Msg("kind skipped")
			continue
		}
	}

	for _, kind := range kinds {
		report.Stats[kind] = store.Stats(kind)
	}
	report.Summary = store.Summary()
	report.FinishedAt = time.Now()

	if !req.DryRun {
		s.persist(ctx, store, report)
	}

	return report, nil
}

// persist writes new mappings, the snapshot file and the run row. Failures
// here are reported on the run, never fatal: remote mutations already
// performed are not transactional with the mapping write.
func (s *SyncServiceImpl) persist(ctx context.Context, store *mapping.Store, report *primary.RunReport) {
	for kind, table := range store.Fresh() {
		for prodID, testID := range table {
			err := s.repo.Upsert(ctx, secondary.MappingEntry{
				Kind:   kind,
				ProdID: prodID,
				TestID: testID,
			})
			if err != nil && report.PersistenceError == "" {
				report.PersistenceError = err.Error()
			}
		}
	}

	snapshot := store.Snapshot(report.RunID, report.FinishedAt)
	path, err := s.snapshots.Write(snapshot)
	if err != nil {
		if report.PersistenceError == "" {
			report.PersistenceError = err.Error()
		}
	} else {
		report.SnapshotPath = path
	}

	summary := report.Summary
	err = s.repo.RecordRun(ctx, secondary.RunRecord{
		ID:           report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		DryRun:       report.DryRun,
		Created:      summary.Created,
		Updated:      summary.Updated,
		Errors:       summary.Errors,
		SnapshotPath: report.SnapshotPath,
	})
	if err != nil && report.PersistenceError == "" {
		report.PersistenceError = err.Error()
	}

	if report.PersistenceError != "" {
		s.log.Error().Str("error", report.PersistenceError).Msg("run persistence incomplete, remote changes are kept")
	}
}

// orderKinds filters requested to valid kinds and returns them in canonical
// dependency order regardless of the requested order. Empty means all.
func orderKinds(requested []models.Kind) ([]models.Kind, error) {
	if len(requested) == 0 {
		return models.AllKinds(), nil
	}

	wanted := make(map[models.Kind]bool, len(requested))
	for _, kind := range requested {
		if !models.ValidKind(string(kind)) {
			return nil, fmt.Errorf("unknown resource kind: %s", kind)
		}
		wanted[kind] = true
	}

	var out []models.Kind
	for _, kind := range models.AllKinds() {
		if wanted[kind] {
			out = append(out, kind)
		}
	}
	return out, nil
}

// Ensure SyncServiceImpl implements the interface.
var _ primary.SyncService = (*SyncServiceImpl)(nil)
