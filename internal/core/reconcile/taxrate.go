package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// percentageTolerance is the maximum drift under which two tax rate
// percentages are considered the same rate.
var percentageTolerance = decimal.NewFromFloat(0.01)

// TaxRateStrategy reconciles tax rates. Tax rates have no cross-references
// and a small set of updatable fields (description, display name, metadata).
type TaxRateStrategy struct{}

// NewTaxRateStrategy returns the tax rate strategy.
func NewTaxRateStrategy() *TaxRateStrategy { return &TaxRateStrategy{} }

func (s *TaxRateStrategy) Kind() models.Kind { return models.KindTaxRate }

func (s *TaxRateStrategy) CanUpdate() bool { return true }

// CreateParams mirrors every creatable tax rate field.
func (s *TaxRateStrategy) CreateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Name:         src.Name,
		Inclusive:    models.Bool(src.Inclusive),
		Percentage:   src.Percentage,
		Description:  src.Description,
		Jurisdiction: src.Jurisdiction,
		Country:      src.Country,
		State:        src.State,
	}
	params.SetMetadata(src.Metadata)
	return params, nil
}

// UpdateParams mirrors the fields the remote API allows changing on an
// existing tax rate.
func (s *TaxRateStrategy) UpdateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Name:        src.Name,
		Description: src.Description,
	}
	params.SetMetadata(src.Metadata)
	params.SetMetadata(map[string]string{models.MetadataProdID: src.ID})
	return params, nil
}

// Match falls back to the (display name, percentage, jurisdiction) tuple.
// Percentages are compared with a ±0.01 tolerance; Stripe reports them as
// floats and re-serialized values can drift in the last digits.
func (s *TaxRateStrategy) Match(src *models.Resource, targets []*models.Resource) *models.Resource {
	if t := matchByProdID(src, targets); t != nil {
		return t
	}
	srcPct := decimal.NewFromFloat(src.Percentage)
	for _, t := range targets {
		if t.Name != src.Name || t.Jurisdiction != src.Jurisdiction {
			continue
		}
		diff := decimal.NewFromFloat(t.Percentage).Sub(srcPct).Abs()
		if diff.LessThan(percentageTolerance) {
			return t
		}
	}
	return nil
}

// Unchanged compares the updatable fields only.
func (s *TaxRateStrategy) Unchanged(src, dst *models.Resource) bool {
	return src.Name == dst.Name &&
		src.Description == dst.Description &&
		dst.ProdID() == src.ID
}

var _ Strategy = (*TaxRateStrategy)(nil)
