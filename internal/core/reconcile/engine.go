package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

// Options tune one engine run.
type Options struct {
	// DryRun suppresses every mutating call while keeping the counters
	// identical to what a real run would produce.
	DryRun bool

	// SkipUnchanged turns zero-diff updates into uncounted no-ops.
	SkipUnchanged bool
}

// Engine is the generic reconciliation loop. It lists both environments
// once per kind, then walks the production list in order, deciding
// create-vs-update per resource through the strategy and the mapping store.
// Per-resource failures are counted and skipped; only a failed listing
// aborts a kind.
type Engine struct {
	client secondary.ResourceClient
	store  *mapping.Store
	log    zerolog.Logger
	opts   Options
}

// NewEngine returns an engine writing matches and statistics into store.
func NewEngine(client secondary.ResourceClient, store *mapping.Store, log zerolog.Logger, opts Options) *Engine {
	return &Engine{client: client, store: store, log: log, opts: opts}
}

// Reconcile copies every resource of the strategy's kind from production to
// test. The returned error is kind-fatal (a listing failed); per-resource
// failures are reflected in the store's error counter instead.
func (e *Engine) Reconcile(ctx context.Context, strategy Strategy) error {
	kind := strategy.Kind()
	log := e.log.With().Str("kind", string(kind)).Logger()

	sources, err := e.client.List(ctx, secondary.EnvironmentProduction, kind)
	if err != nil {
		return fmt.Errorf("listing %s from production: %w", kind, err)
	}
	log.Info().Int("count", len(sources)).Msg("fetched from production")

	if len(sources) == 0 {
		log.Info().Msg("nothing to copy")
		return nil
	}

	// The target list is frozen for the whole pass; resources created
	// during the pass are tracked through the mapping store, not by
	// re-listing.
	targets, err := e.client.List(ctx, secondary.EnvironmentTest, kind)
	if err != nil {
		return fmt.Errorf("listing %s from test: %w", kind, err)
	}

	for _, src := range sources {
		e.reconcileOne(ctx, strategy, log, src, targets)
	}

	stats := e.store.Stats(kind)
	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("errors", stats.Errors).
		Msg("pass finished")
	return nil
}

func (e *Engine) reconcileOne(ctx context.Context, strategy Strategy, log zerolog.Logger, src *models.Resource, targets []*models.Resource) {
	kind := strategy.Kind()

	existing, err := e.findExisting(strategy, src, targets)
	if err != nil {
		e.store.MarkError(kind)
		log.Error().Err(err).Str("prod_id", src.ID).Msg("match failed")
		return
	}

	if existing != nil {
		e.updateExisting(ctx, strategy, log, src, existing)
		return
	}
	e.createNew(ctx, strategy, log, src)
}

// findExisting implements the two-stage matcher: the mapping store fast
// path first, then the strategy's characteristic fallback. A recorded test
// ID that is absent from the frozen target list is an error, not a license
// to re-create: silently re-creating would race an out-of-band deletion
// into duplicates.
func (e *Engine) findExisting(strategy Strategy, src *models.Resource, targets []*models.Resource) (*models.Resource, error) {
	kind := strategy.Kind()
	if testID, ok := e.store.Get(kind, src.ID); ok {
		for _, t := range targets {
			if t.ID == testID {
				return t, nil
			}
		}
		return nil, fmt.Errorf("mapped test %s %s not found in test environment", kind, testID)
	}
	return strategy.Match(src, targets), nil
}

func (e *Engine) updateExisting(ctx context.Context, strategy Strategy, log zerolog.Logger, src, existing *models.Resource) {
	kind := strategy.Kind()

	if !strategy.CanUpdate() {
		// Immutable kinds (prices): a match means the copy already
		// exists. Not counted, so re-runs stay idempotent.
		e.store.Add(kind, src.ID, existing.ID)
		log.Debug().Str("prod_id", src.ID).Str("test_id", existing.ID).Msg("already exists, kind is immutable")
		return
	}

	if e.opts.SkipUnchanged && strategy.Unchanged(src, existing) {
		e.store.Add(kind, src.ID, existing.ID)
		log.Debug().Str("prod_id", src.ID).Str("test_id", existing.ID).Msg("unchanged, skipping")
		return
	}

	params, err := strategy.UpdateParams(src)
	if err != nil {
		e.store.MarkError(kind)
		log.Error().Err(err).Str("prod_id", src.ID).Msg("building update params failed")
		return
	}

	if e.opts.DryRun {
		e.store.Add(kind, src.ID, existing.ID)
		e.store.MarkUpdated(kind)
		log.Info().Str("prod_id", src.ID).Str("test_id", existing.ID).Msg("[dry-run] would update")
		return
	}

	if _, err := e.client.Update(ctx, secondary.EnvironmentTest, kind, existing.ID, params); err != nil {
		e.store.MarkError(kind)
		log.Error().Err(err).Str("prod_id", src.ID).Str("test_id", existing.ID).Msg("update failed")
		return
	}
	e.store.Add(kind, src.ID, existing.ID)
	e.store.MarkUpdated(kind)
	log.Debug().Str("prod_id", src.ID).Str("test_id", existing.ID).Msg("updated")
}

func (e *Engine) createNew(ctx context.Context, strategy Strategy, log zerolog.Logger, src *models.Resource) {
	kind := strategy.Kind()

	params, err := strategy.CreateParams(src)
	if err != nil {
		e.store.MarkError(kind)
		log.Error().Err(err).Str("prod_id", src.ID).Msg("building create params failed")
		return
	}

	// Stamp the origin so future runs match by identity instead of
	// characteristics.
	params.SetMetadata(map[string]string{models.MetadataProdID: src.ID})

	if e.opts.DryRun {
		// A placeholder mapping keeps later kinds resolving their
		// cross-references, so dry-run counts match a real run.
		e.store.Add(kind, src.ID, dryRunID(kind, src.ID))
		e.store.MarkCreated(kind)
		log.Info().Str("prod_id", src.ID).Msg("[dry-run] would create")
		return
	}

	created, err := e.client.Create(ctx, secondary.EnvironmentTest, kind, params)
	if err != nil {
		e.store.MarkError(kind)
		log.Error().Err(err).Str("prod_id", src.ID).Msg("create failed")
		return
	}
	e.store.Add(kind, src.ID, created.ID)
	e.store.MarkCreated(kind)
	log.Debug().Str("prod_id", src.ID).Str("test_id", created.ID).Msg("created")
}

func dryRunID(kind models.Kind, prodID string) string {
	return fmt.Sprintf("dry_run_%s_%s", kind, prodID)
}
