package reconcile

import (
	"slices"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// ProductStrategy reconciles products. Products are the anchor kind: prices
// and coupons resolve their cross-references through the product mappings
// this strategy produces.
type ProductStrategy struct{}

// NewProductStrategy returns the product strategy.
func NewProductStrategy() *ProductStrategy { return &ProductStrategy{} }

func (s *ProductStrategy) Kind() models.Kind { return models.KindProduct }

func (s *ProductStrategy) CanUpdate() bool { return true }

func (s *ProductStrategy) CreateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Name:                src.Name,
		Description:         src.Description,
		Active:              models.Bool(src.Active),
		Images:              slices.Clone(src.Images),
		Features:            slices.Clone(src.Features),
		StatementDescriptor: src.StatementDescriptor,
		UnitLabel:           src.UnitLabel,
		URL:                 src.URL,
		Shippable:           models.Bool(src.Shippable),
		TaxCode:             src.TaxCode,
	}
	params.SetMetadata(src.Metadata)
	return params, nil
}

func (s *ProductStrategy) UpdateParams(src *models.Resource) (*models.ResourceParams, error) {
	params := &models.ResourceParams{
		Name:                src.Name,
		Description:         src.Description,
		Active:              models.Bool(src.Active),
		Images:              slices.Clone(src.Images),
		Features:            slices.Clone(src.Features),
		StatementDescriptor: src.StatementDescriptor,
		UnitLabel:           src.UnitLabel,
		URL:                 src.URL,
	}
	params.SetMetadata(src.Metadata)
	params.SetMetadata(map[string]string{models.MetadataProdID: src.ID})
	return params, nil
}

// Match falls back to an exact name match, skipping candidates already
// claimed by a different production product. First match wins.
func (s *ProductStrategy) Match(src *models.Resource, targets []*models.Resource) *models.Resource {
	if t := matchByProdID(src, targets); t != nil {
		return t
	}
	for _, t := range targets {
		if t.Name != src.Name {
			continue
		}
		if claimed := t.ProdID(); claimed != "" && claimed != src.ID {
			continue
		}
		return t
	}
	return nil
}

func (s *ProductStrategy) Unchanged(src, dst *models.Resource) bool {
	return src.Name == dst.Name &&
		src.Description == dst.Description &&
		src.Active == dst.Active &&
		src.StatementDescriptor == dst.StatementDescriptor &&
		src.UnitLabel == dst.UnitLabel &&
		src.URL == dst.URL &&
		slices.Equal(src.Images, dst.Images) &&
		slices.Equal(src.Features, dst.Features) &&
		dst.ProdID() == src.ID
}

var _ Strategy = (*ProductStrategy)(nil)
