package reconcile

import (
	"slices"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// PriceStrategy reconciles prices. Stripe prices are immutable after
// creation, so CanUpdate is false: a matched price is left alone and an
// unmatched one is created. Every price references a product, which must
// already be mapped.
type PriceStrategy struct {
	store *mapping.Store
}

// NewPriceStrategy returns a price strategy resolving product references
// through store.
func NewPriceStrategy(store *mapping.Store) *PriceStrategy {
	return &PriceStrategy{store: store}
}

func (s *PriceStrategy) Kind() models.Kind { return models.KindPrice }

func (s *PriceStrategy) CanUpdate() bool { return false }

func (s *PriceStrategy) CreateParams(src *models.Resource) (*models.ResourceParams, error) {
	testProductID, ok := s.store.Get(models.KindProduct, src.ProductID)
	if !ok {
		return nil, &DependencyError{Kind: models.KindPrice, ProdID: src.ID, Ref: "product " + src.ProductID}
	}

	params := &models.ResourceParams{
		ProductID:     testProductID,
		Currency:      src.Currency,
		Active:        models.Bool(src.Active),
		Nickname:      src.Nickname,
		LookupKey:     src.LookupKey,
		TaxBehavior:   src.TaxBehavior,
		BillingScheme: src.BillingScheme,
	}

	// The remote API accepts exactly one of the two amount forms; the
	// decimal form is preferred for precision when present.
	if src.UnitAmountDecimal != "" {
		params.UnitAmountDecimal = src.UnitAmountDecimal
	} else if src.UnitAmountSet {
		params.UnitAmount = models.Int64(src.UnitAmount)
	}

	// Tiered prices carry their tier rows instead of an amount.
	if len(src.Tiers) > 0 {
		params.Tiers = slices.Clone(src.Tiers)
		params.TiersMode = src.TiersMode
	}
	if src.TransformQuantity != nil {
		t := *src.TransformQuantity
		params.TransformQuantity = &t
	}

	if src.Recurring != nil {
		r := *src.Recurring
		params.Recurring = &r
	}

	params.SetMetadata(src.Metadata)
	return params, nil
}

// UpdateParams is never called by the engine because CanUpdate is false.
func (s *PriceStrategy) UpdateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Active:   models.Bool(src.Active),
		Nickname: src.Nickname,
	}
	params.SetMetadata(src.Metadata)
	params.SetMetadata(map[string]string{models.MetadataProdID: src.ID})
	return params, nil
}

// Match falls back to the lookup key, then to the (mapped product,
// currency, unit amount, recurrence) tuple. Amount, currency and recurrence
// are the only meaningful identity for an immutable price.
func (s *PriceStrategy) Match(src *models.Resource, targets []*models.Resource) *models.Resource {
	if t := matchByProdID(src, targets); t != nil {
		return t
	}

	if src.LookupKey != "" {
		for _, t := range targets {
			if t.LookupKey == src.LookupKey {
				return t
			}
		}
	}

	testProductID, ok := s.store.Get(models.KindProduct, src.ProductID)
	if !ok {
		return nil
	}
	for _, t := range targets {
		if t.ProductID != testProductID || t.Currency != src.Currency {
			continue
		}
		if src.UnitAmountSet && t.UnitAmount != src.UnitAmount {
			continue
		}
		if !sameRecurrence(src.Recurring, t.Recurring) {
			continue
		}
		return t
	}
	return nil
}

// Unchanged is trivially true for a matched price: the identity comparison
// in Match already covers every immutable field.
func (s *PriceStrategy) Unchanged(src, dst *models.Resource) bool { return true }

func sameRecurrence(a, b *models.Recurring) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.Interval == b.Interval && a.IntervalCount == b.IntervalCount
}

var _ Strategy = (*PriceStrategy)(nil)
