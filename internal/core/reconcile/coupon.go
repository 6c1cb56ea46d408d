package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// testIDPrefix namespaces coupon IDs created in the test environment.
// Coupon IDs are caller-chosen on Stripe, so the prefix both avoids
// collisions and makes copied coupons recognizable.
const testIDPrefix = "test_"

// CouponStrategy reconciles coupons. A coupon may restrict itself to
// specific products; those references are translated through the product
// mappings, and unmapped ones are dropped with a warning rather than
// failing the whole coupon.
type CouponStrategy struct {
	store *mapping.Store
	log   zerolog.Logger
}

// NewCouponStrategy returns a coupon strategy resolving product references
// through store.
func NewCouponStrategy(store *mapping.Store, log zerolog.Logger) *CouponStrategy {
	return &CouponStrategy{store: store, log: log}
}

func (s *CouponStrategy) Kind() models.Kind { return models.KindCoupon }

func (s *CouponStrategy) CanUpdate() bool { return true }

func (s *CouponStrategy) CreateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		ID:               testIDPrefix + src.ID,
		Name:             src.Name,
		Duration:         src.Duration,
		DurationInMonths: src.DurationInMonths,
		MaxRedemptions:   src.MaxRedemptions,
		RedeemBy:         src.RedeemBy,
	}

	// percent_off and amount_off are mutually exclusive.
	if src.PercentOff != 0 {
		params.PercentOff = models.Float64(src.PercentOff)
	} else if src.AmountOff != 0 {
		params.AmountOff = models.Int64(src.AmountOff)
		params.Currency = src.Currency
	}

	for _, prodProductID := range src.AppliesTo {
		testProductID, ok := s.store.Get(models.KindProduct, prodProductID)
		if !ok {
			s.log.Warn().
				Str("coupon", src.ID).
				Str("product", prodProductID).
				Msg("applies_to product not found in mapping, skipping reference")
			continue
		}
		params.AppliesTo = append(params.AppliesTo, testProductID)
	}

	params.SetMetadata(src.Metadata)
	return params, nil
}

// UpdateParams is limited to name and metadata, the only coupon fields the
// remote API allows changing.
func (s *CouponStrategy) UpdateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Name: src.Name,
	}
	params.SetMetadata(src.Metadata)
	params.SetMetadata(map[string]string{models.MetadataProdID: src.ID})
	return params, nil
}

// Match falls back to the prefixed ID, then to the coupon name guarded
// against candidates claimed by a different production coupon.
func (s *CouponStrategy) Match(src *models.Resource, targets []*models.Resource) *models.Resource {
	if t := matchByProdID(src, targets); t != nil {
		return t
	}

	expected := testIDPrefix + src.ID
	for _, t := range targets {
		if t.ID == expected {
			return t
		}
	}

	if src.Name != "" {
		for _, t := range targets {
			if t.Name != src.Name {
				continue
			}
			if claimed := t.ProdID(); claimed != "" && claimed != src.ID {
				continue
			}
			return t
		}
	}
	return nil
}

func (s *CouponStrategy) Unchanged(src, dst *models.Resource) bool {
	return src.Name == dst.Name && dst.ProdID() == src.ID
}

var _ Strategy = (*CouponStrategy)(nil)
