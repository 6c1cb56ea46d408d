package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type createCall struct {
	kind   models.Kind
	params *models.ResourceParams
}

type updateCall struct {
	kind   models.Kind
	id     string
	params *models.ResourceParams
}

// fakeClient implements secondary.ResourceClient for testing.
type fakeClient struct {
	sources map[models.Kind][]*models.Resource
	targets map[models.Kind][]*models.Resource

	listProdErr error
	listTestErr error
	createErr   error
	updateErr   error

	creates []createCall
	updates []updateCall
	nextID  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		sources: make(map[models.Kind][]*models.Resource),
		targets: make(map[models.Kind][]*models.Resource),
	}
}

func (f *fakeClient) List(ctx context.Context, env secondary.Environment, kind models.Kind) ([]*models.Resource, error) {
	if env == secondary.EnvironmentProduction {
		if f.listProdErr != nil {
			return nil, f.listProdErr
		}
		return f.sources[kind], nil
	}
	if f.listTestErr != nil {
		return nil, f.listTestErr
	}
	return f.targets[kind], nil
}

func (f *fakeClient) Create(ctx context.Context, env secondary.Environment, kind models.Kind, params *models.ResourceParams) (*models.Resource, error) {
	if env == secondary.EnvironmentProduction {
		return nil, secondary.ErrReadOnlyEnvironment
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, createCall{kind: kind, params: params})
	f.nextID++
	id := params.ID
	if id == "" {
		id = fmt.Sprintf("new_%s_%d", kind, f.nextID)
	}
	return &models.Resource{ID: id, Kind: kind, Metadata: params.Metadata}, nil
}

func (f *fakeClient) Update(ctx context.Context, env secondary.Environment, kind models.Kind, id string, params *models.ResourceParams) (*models.Resource, error) {
	if env == secondary.EnvironmentProduction {
		return nil, secondary.ErrReadOnlyEnvironment
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, updateCall{kind: kind, id: id, params: params})
	return &models.Resource{ID: id, Kind: kind, Metadata: params.Metadata}, nil
}

var _ secondary.ResourceClient = (*fakeClient)(nil)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestEngine(client *fakeClient, store *mapping.Store, opts Options) *Engine {
	return NewEngine(client, store, zerolog.Nop(), opts)
}

func product(id, name string) *models.Resource {
	return &models.Resource{ID: id, Kind: models.KindProduct, Name: name, Active: true}
}

// ============================================================================
// Create Path
// ============================================================================

func TestReconcile_CreatesMissingProduct(t *testing.T) {
	client := newFakeClient()
	client.sources[models.KindProduct] = []*models.Resource{product("P1", "Widget")}
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindProduct)
	if stats.Created != 1 || stats.Updated != 0 || stats.Errors != 0 {
		t.Errorf("expected {1 0 0}, got %+v", stats)
	}
	if len(client.creates) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(client.creates))
	}
	if got := client.creates[0].params.Metadata[models.MetadataProdID]; got != "P1" {
		t.Errorf("expected prod_id metadata 'P1', got '%s'", got)
	}
	if _, ok := store.Get(models.KindProduct, "P1"); !ok {
		t.Error("expected mapping recorded after create")
	}
}

func TestReconcile_SecondRunIsIdempotent(t *testing.T) {
	client := newFakeClient()
	client.sources[models.KindProduct] = []*models.Resource{product("P1", "Widget")}
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	testID, _ := store.Get(models.KindProduct, "P1")

	// Second run against a target list that now contains the copy.
	client.targets[models.KindProduct] = []*models.Resource{
		{ID: testID, Kind: models.KindProduct, Name: "Widget", Metadata: map[string]string{models.MetadataProdID: "P1"}},
	}
	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	stats := store.Stats(models.KindProduct)
	if stats.Created != 1 {
		t.Errorf("expected created=1 across both runs, got %d", stats.Created)
	}
	if len(client.creates) != 1 {
		t.Errorf("expected no duplicate create, got %d creates", len(client.creates))
	}
	if len(client.updates) != 1 {
		t.Errorf("expected the second run to update, got %d updates", len(client.updates))
	}
}

// ============================================================================
// Update Path
// ============================================================================

func TestReconcile_UpdatesMatchedTaxRate(t *testing.T) {
	client := newFakeClient()
	client.sources[models.KindTaxRate] = []*models.Resource{
		{ID: "txr_1", Kind: models.KindTaxRate, Name: "VAT", Percentage: 20},
	}
	// Matching test tax rate with no prior mapping entry: characteristic
	// match must yield an update, never a duplicate create.
	client.targets[models.KindTaxRate] = []*models.Resource{
		{ID: "txr_test_1", Kind: models.KindTaxRate, Name: "VAT", Percentage: 20},
	}
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewTaxRateStrategy()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindTaxRate)
	if stats.Created != 0 || stats.Updated != 1 {
		t.Errorf("expected {0 1 0}, got %+v", stats)
	}
	if len(client.creates) != 0 {
		t.Errorf("expected no create, got %d", len(client.creates))
	}
	if testID, _ := store.Get(models.KindTaxRate, "txr_1"); testID != "txr_test_1" {
		t.Errorf("expected mapping recorded on update, got '%s'", testID)
	}
}

func TestReconcile_UpdateFailureIsIsolated(t *testing.T) {
	client := newFakeClient()
	client.sources[models.KindProduct] = []*models.Resource{
		product("P1", "Widget"),
		product("P2", "Gadget"),
	}
	client.targets[models.KindProduct] = []*models.Resource{
		{ID: "t1", Kind: models.KindProduct, Name: "Widget"},
	}
	client.updateErr = errors.New("api unavailable")
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
		t.Fatalf("per-resource failure must not abort the kind: %v", err)
	}

	stats := store.Stats(models.KindProduct)
	if stats.Errors != 1 {
		t.Errorf("expected errors=1, got %+v", stats)
	}
	if stats.Created != 1 {
		t.Errorf("expected the second product to still be created, got %+v", stats)
	}
}

func TestReconcile_SkipUnchanged(t *testing.T) {
	client := newFakeClient()
	client.sources[models.KindCoupon] = []*models.Resource{
		{ID: "SAVE10", Kind: models.KindCoupon, Name: "Save 10"},
	}
	client.targets[models.KindCoupon] = []*models.Resource{
		{ID: "test_SAVE10", Kind: models.KindCoupon, Name: "Save 10", Metadata: map[string]string{models.MetadataProdID: "SAVE10"}},
	}
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{SkipUnchanged: true})

	if err := engine.Reconcile(context.Background(), NewCouponStrategy(store, zerolog.Nop())); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindCoupon)
	if stats.Created != 0 || stats.Updated != 0 || stats.Errors != 0 {
		t.Errorf("expected all-zero stats for unchanged resource, got %+v", stats)
	}
	if len(client.updates) != 0 {
		t.Errorf("expected no update call, got %d", len(client.updates))
	}
}

// ============================================================================
// Immutable Kinds
// ============================================================================

func TestReconcile_MatchedPriceIsNoOp(t *testing.T) {
	store := mapping.NewStore()
	store.Add(models.KindProduct, "P1", "tp_1")

	client := newFakeClient()
	client.sources[models.KindPrice] = []*models.Resource{
		{ID: "price_1", Kind: models.KindPrice, ProductID: "P1", Currency: "eur", UnitAmount: 1000, UnitAmountSet: true},
	}
	client.targets[models.KindPrice] = []*models.Resource{
		{ID: "price_test_1", Kind: models.KindPrice, ProductID: "tp_1", Currency: "eur", UnitAmount: 1000, UnitAmountSet: true},
	}
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewPriceStrategy(store)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindPrice)
	if stats.Created != 0 || stats.Updated != 0 || stats.Errors != 0 {
		t.Errorf("expected matched immutable price to be uncounted, got %+v", stats)
	}
	if len(client.creates)+len(client.updates) != 0 {
		t.Error("expected no mutating calls for matched price")
	}
	if testID, _ := store.Get(models.KindPrice, "price_1"); testID != "price_test_1" {
		t.Errorf("expected mapping recorded for matched price, got '%s'", testID)
	}
}

// ============================================================================
// Dependency Resolution
// ============================================================================

func TestReconcile_PriceWithUnmappedProduct(t *testing.T) {
	store := mapping.NewStore()
	client := newFakeClient()
	client.sources[models.KindPrice] = []*models.Resource{
		{ID: "price_1", Kind: models.KindPrice, ProductID: "P_unmapped", Currency: "eur", UnitAmount: 500, UnitAmountSet: true},
	}
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewPriceStrategy(store)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindPrice)
	if stats.Errors != 1 || stats.Created != 0 {
		t.Errorf("expected {0 0 1}, got %+v", stats)
	}
	if len(client.creates) != 0 {
		t.Error("expected no orphaned price to be created")
	}
}

// ============================================================================
// Mapping Fast Path
// ============================================================================

func TestReconcile_MappedTargetMissingIsError(t *testing.T) {
	store := mapping.NewStore()
	store.Seed(map[models.Kind]map[string]string{
		models.KindProduct: {"P1": "gone_id"},
	})

	client := newFakeClient()
	client.sources[models.KindProduct] = []*models.Resource{product("P1", "Widget")}
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stats := store.Stats(models.KindProduct)
	if stats.Errors != 1 {
		t.Errorf("expected errors=1 for out-of-band deletion, got %+v", stats)
	}
	if len(client.creates) != 0 {
		t.Error("a recorded-but-missing target must not be silently re-created")
	}
}

// ============================================================================
// Listing Failures
// ============================================================================

func TestReconcile_ListFailureIsKindFatal(t *testing.T) {
	client := newFakeClient()
	client.listProdErr = errors.New("connection refused")
	store := mapping.NewStore()
	engine := newTestEngine(client, store, Options{})

	if err := engine.Reconcile(context.Background(), NewProductStrategy()); err == nil {
		t.Fatal("expected listing failure to abort the kind")
	}
}

// ============================================================================
// Dry Run
// ============================================================================

func TestReconcile_DryRunParity(t *testing.T) {
	setup := func() *fakeClient {
		client := newFakeClient()
		client.sources[models.KindProduct] = []*models.Resource{product("P1", "Widget"), product("P2", "Gadget")}
		client.sources[models.KindPrice] = []*models.Resource{
			{ID: "price_1", Kind: models.KindPrice, ProductID: "P1", Currency: "eur", UnitAmount: 1000, UnitAmountSet: true},
		}
		return client
	}

	run := func(dryRun bool) (models.Stats, models.Stats, *fakeClient) {
		client := setup()
		store := mapping.NewStore()
		engine := newTestEngine(client, store, Options{DryRun: dryRun})
		if err := engine.Reconcile(context.Background(), NewProductStrategy()); err != nil {
			t.Fatalf("products: %v", err)
		}
		if err := engine.Reconcile(context.Background(), NewPriceStrategy(store)); err != nil {
			t.Fatalf("prices: %v", err)
		}
		return store.Stats(models.KindProduct), store.Stats(models.KindPrice), client
	}

	realProducts, realPrices, _ := run(false)
	dryProducts, dryPrices, dryClient := run(true)

	if dryProducts != realProducts {
		t.Errorf("product stats differ: real %+v, dry %+v", realProducts, dryProducts)
	}
	if dryPrices != realPrices {
		t.Errorf("price stats differ: real %+v, dry %+v", realPrices, dryPrices)
	}
	if len(dryClient.creates)+len(dryClient.updates) != 0 {
		t.Error("dry run must issue zero mutating calls")
	}
}

// ============================================================================
// Read-Only Guarantee
// ============================================================================

func TestFakeClient_RejectsProductionWrites(t *testing.T) {
	client := newFakeClient()

	_, err := client.Create(context.Background(), secondary.EnvironmentProduction, models.KindProduct, &models.ResourceParams{})
	if !errors.Is(err, secondary.ErrReadOnlyEnvironment) {
		t.Errorf("expected ErrReadOnlyEnvironment, got %v", err)
	}
}
