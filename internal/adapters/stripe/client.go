// Package stripe implements the ResourceClient port over the Stripe API.
// Two SDK clients are held, one per environment; the production client is
// never handed a mutating call.
package stripe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	stripesdk "github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

const pageLimit = 100

// Client talks to both Stripe accounts. It enforces the read-only guarantee
// on the production environment before any network I/O.
type Client struct {
	prod *stripeclient.API
	test *stripeclient.API
	log  zerolog.Logger
}

// NewClient builds a client from the two secret keys.
func NewClient(prodKey, testKey string, log zerolog.Logger) *Client {
	prod := &stripeclient.API{}
	prod.Init(prodKey, nil)
	test := &stripeclient.API{}
	test.Init(testKey, nil)
	return &Client{prod: prod, test: test, log: log}
}

func (c *Client) api(env secondary.Environment) *stripeclient.API {
	if env == secondary.EnvironmentProduction {
		return c.prod
	}
	return c.test
}

// List fetches every resource of kind from env, following pagination.
func (c *Client) List(ctx context.Context, env secondary.Environment, kind models.Kind) ([]*models.Resource, error) {
	api := c.api(env)
	var out []*models.Resource

	switch kind {
	case models.KindTaxRate:
		params := &stripesdk.TaxRateListParams{}
		params.Context = ctx
		params.Limit = stripesdk.Int64(pageLimit)
		it := api.TaxRates.List(params)
		for it.Next() {
			out = append(out, taxRateToResource(it.TaxRate()))
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("listing tax rates from %s: %w", env, err)
		}

	case models.KindProduct:
		params := &stripesdk.ProductListParams{}
		params.Context = ctx
		params.Limit = stripesdk.Int64(pageLimit)
		it := api.Products.List(params)
		for it.Next() {
			out = append(out, productToResource(it.Product()))
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("listing products from %s: %w", env, err)
		}

	case models.KindPrice:
		params := &stripesdk.PriceListParams{}
		params.Context = ctx
		params.Limit = stripesdk.Int64(pageLimit)
		// Tier rows are only returned when expanded.
		params.AddExpand("data.tiers")
		it := api.Prices.List(params)
		for it.Next() {
			out = append(out, priceToResource(it.Price()))
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("listing prices from %s: %w", env, err)
		}

	case models.KindCoupon:
		params := &stripesdk.CouponListParams{}
		params.Context = ctx
		params.Limit = stripesdk.Int64(pageLimit)
		it := api.Coupons.List(params)
		for it.Next() {
			out = append(out, couponToResource(it.Coupon()))
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("listing coupons from %s: %w", env, err)
		}

	default:
		return nil, fmt.Errorf("unknown resource kind: %s", kind)
	}

	c.log.Debug().Str("kind", string(kind)).Str("env", string(env)).Int("count", len(out)).Msg("listed")
	return out, nil
}

// Create creates a resource in env.
func (c *Client) Create(ctx context.Context, env secondary.Environment, kind models.Kind, params *models.ResourceParams) (*models.Resource, error) {
	if err := c.guardWritable(env); err != nil {
		return nil, err
	}
	api := c.api(env)

	switch kind {
	case models.KindTaxRate:
		created, err := api.TaxRates.New(taxRateParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("creating tax rate: %w", err)
		}
		return taxRateToResource(created), nil

	case models.KindProduct:
		created, err := api.Products.New(productParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("creating product: %w", err)
		}
		return productToResource(created), nil

	case models.KindPrice:
		created, err := api.Prices.New(priceParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("creating price: %w", err)
		}
		return priceToResource(created), nil

	case models.KindCoupon:
		created, err := api.Coupons.New(couponParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("creating coupon: %w", err)
		}
		return couponToResource(created), nil
	}
	return nil, fmt.Errorf("unknown resource kind: %s", kind)
}

// Update mutates an existing resource in env.
func (c *Client) Update(ctx context.Context, env secondary.Environment, kind models.Kind, id string, params *models.ResourceParams) (*models.Resource, error) {
	if err := c.guardWritable(env); err != nil {
		return nil, err
	}
	api := c.api(env)

	switch kind {
	case models.KindTaxRate:
		updated, err := api.TaxRates.Update(id, taxRateParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("updating tax rate %s: %w", id, err)
		}
		return taxRateToResource(updated), nil

	case models.KindProduct:
		updated, err := api.Products.Update(id, productParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("updating product %s: %w", id, err)
		}
		return productToResource(updated), nil

	case models.KindPrice:
		updated, err := api.Prices.Update(id, priceUpdateParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("updating price %s: %w", id, err)
		}
		return priceToResource(updated), nil

	case models.KindCoupon:
		updated, err := api.Coupons.Update(id, couponUpdateParams(ctx, params))
		if err != nil {
			return nil, fmt.Errorf("updating coupon %s: %w", id, err)
		}
		return couponToResource(updated), nil
	}
	return nil, fmt.Errorf("unknown resource kind: %s", kind)
}

// guardWritable rejects mutations against production. This is the hard
// read-only guarantee; it fires before any network call.
func (c *Client) guardWritable(env secondary.Environment) error {
	if env == secondary.EnvironmentProduction {
		return fmt.Errorf("refusing write: %w", secondary.ErrReadOnlyEnvironment)
	}
	return nil
}

var _ secondary.ResourceClient = (*Client)(nil)
