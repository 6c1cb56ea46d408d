package stripe

import (
	"context"
	"strconv"

	stripesdk "github.com/stripe/stripe-go/v81"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// Translation between SDK objects and the environment-neutral model. Each
// direction only carries the fields the copier mirrors.

func taxRateToResource(t *stripesdk.TaxRate) *models.Resource {
	return &models.Resource{
		ID:           t.ID,
		Kind:         models.KindTaxRate,
		Name:         t.DisplayName,
		Description:  t.Description,
		Active:       t.Active,
		Percentage:   t.Percentage,
		Inclusive:    t.Inclusive,
		Jurisdiction: t.Jurisdiction,
		Country:      t.Country,
		State:        t.State,
		Metadata:     t.Metadata,
	}
}

func taxRateParams(ctx context.Context, p *models.ResourceParams) *stripesdk.TaxRateParams {
	params := &stripesdk.TaxRateParams{}
	params.Context = ctx
	if p.Name != "" {
		params.DisplayName = stripesdk.String(p.Name)
	}
	if p.Inclusive != nil {
		params.Inclusive = stripesdk.Bool(*p.Inclusive)
	}
	if p.Percentage != 0 {
		params.Percentage = stripesdk.Float64(p.Percentage)
	}
	if p.Description != "" {
		params.Description = stripesdk.String(p.Description)
	}
	if p.Jurisdiction != "" {
		params.Jurisdiction = stripesdk.String(p.Jurisdiction)
	}
	if p.Country != "" {
		params.Country = stripesdk.String(p.Country)
	}
	if p.State != "" {
		params.State = stripesdk.String(p.State)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func productToResource(p *stripesdk.Product) *models.Resource {
	r := &models.Resource{
		ID:                  p.ID,
		Kind:                models.KindProduct,
		Name:                p.Name,
		Description:         p.Description,
		Active:              p.Active,
		Images:              p.Images,
		StatementDescriptor: p.StatementDescriptor,
		UnitLabel:           p.UnitLabel,
		URL:                 p.URL,
		Shippable:           p.Shippable,
		Metadata:            p.Metadata,
	}
	for _, f := range p.MarketingFeatures {
		if f != nil && f.Name != "" {
			r.Features = append(r.Features, f.Name)
		}
	}
	if p.TaxCode != nil {
		r.TaxCode = p.TaxCode.ID
	}
	return r
}

func productParams(ctx context.Context, p *models.ResourceParams) *stripesdk.ProductParams {
	params := &stripesdk.ProductParams{}
	params.Context = ctx
	if p.Name != "" {
		params.Name = stripesdk.String(p.Name)
	}
	if p.Description != "" {
		params.Description = stripesdk.String(p.Description)
	}
	if p.Active != nil {
		params.Active = stripesdk.Bool(*p.Active)
	}
	if len(p.Images) > 0 {
		params.Images = stripesdk.StringSlice(p.Images)
	}
	for _, name := range p.Features {
		params.MarketingFeatures = append(params.MarketingFeatures, &stripesdk.ProductMarketingFeatureParams{
			Name: stripesdk.String(name),
		})
	}
	if p.StatementDescriptor != "" {
		params.StatementDescriptor = stripesdk.String(p.StatementDescriptor)
	}
	if p.UnitLabel != "" {
		params.UnitLabel = stripesdk.String(p.UnitLabel)
	}
	if p.URL != "" {
		params.URL = stripesdk.String(p.URL)
	}
	if p.Shippable != nil {
		params.Shippable = stripesdk.Bool(*p.Shippable)
	}
	if p.TaxCode != "" {
		params.TaxCode = stripesdk.String(p.TaxCode)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func priceToResource(p *stripesdk.Price) *models.Resource {
	r := &models.Resource{
		ID:            p.ID,
		Kind:          models.KindPrice,
		Active:        p.Active,
		Currency:      string(p.Currency),
		UnitAmount:    p.UnitAmount,
		BillingScheme: string(p.BillingScheme),
		LookupKey:     p.LookupKey,
		Nickname:      p.Nickname,
		TaxBehavior:   string(p.TaxBehavior),
		Metadata:      p.Metadata,
	}
	if p.Product != nil {
		r.ProductID = p.Product.ID
	}
	// Tiered prices carry tier rows instead of a top-level amount.
	if p.BillingScheme == stripesdk.PriceBillingSchemeTiered {
		r.TiersMode = string(p.TiersMode)
		for _, t := range p.Tiers {
			r.Tiers = append(r.Tiers, priceTierToModel(t))
		}
	} else {
		r.UnitAmountSet = true
	}
	if p.UnitAmountDecimal != 0 {
		r.UnitAmountDecimal = strconv.FormatFloat(p.UnitAmountDecimal, 'f', -1, 64)
	}
	if p.TransformQuantity != nil {
		r.TransformQuantity = &models.TransformQuantity{
			DivideBy: p.TransformQuantity.DivideBy,
			Round:    string(p.TransformQuantity.Round),
		}
	}
	if p.Recurring != nil {
		r.Recurring = &models.Recurring{
			Interval:        string(p.Recurring.Interval),
			IntervalCount:   p.Recurring.IntervalCount,
			UsageType:       string(p.Recurring.UsageType),
			TrialPeriodDays: p.Recurring.TrialPeriodDays,
		}
	}
	return r
}

// priceTierToModel decides the tier's amount form: the API reports both
// amounts as plain integers, so a non-zero flat amount wins and everything
// else is a unit amount (including a free tier's zero).
func priceTierToModel(t *stripesdk.PriceTier) models.PriceTier {
	tier := models.PriceTier{UpTo: t.UpTo, UpToInf: t.UpTo == 0}
	if t.FlatAmount != 0 {
		tier.FlatAmount = stripesdk.Int64(t.FlatAmount)
	} else {
		tier.UnitAmount = stripesdk.Int64(t.UnitAmount)
	}
	return tier
}

func priceParams(ctx context.Context, p *models.ResourceParams) *stripesdk.PriceParams {
	params := &stripesdk.PriceParams{}
	params.Context = ctx
	if p.ProductID != "" {
		params.Product = stripesdk.String(p.ProductID)
	}
	if p.Currency != "" {
		params.Currency = stripesdk.String(p.Currency)
	}
	// Exactly one of the two amount forms may be sent.
	if p.UnitAmountDecimal != "" {
		if v, err := strconv.ParseFloat(p.UnitAmountDecimal, 64); err == nil {
			params.UnitAmountDecimal = stripesdk.Float64(v)
		}
	} else if p.UnitAmount != nil {
		params.UnitAmount = stripesdk.Int64(*p.UnitAmount)
	}
	if p.Recurring != nil {
		rec := &stripesdk.PriceRecurringParams{
			Interval: stripesdk.String(p.Recurring.Interval),
		}
		if p.Recurring.IntervalCount > 0 {
			rec.IntervalCount = stripesdk.Int64(p.Recurring.IntervalCount)
		}
		if p.Recurring.UsageType != "" {
			rec.UsageType = stripesdk.String(p.Recurring.UsageType)
		}
		if p.Recurring.TrialPeriodDays > 0 {
			rec.TrialPeriodDays = stripesdk.Int64(p.Recurring.TrialPeriodDays)
		}
		params.Recurring = rec
	}
	if p.BillingScheme != "" {
		params.BillingScheme = stripesdk.String(p.BillingScheme)
	}
	for _, t := range p.Tiers {
		tier := &stripesdk.PriceTierParams{
			UnitAmount: t.UnitAmount,
			FlatAmount: t.FlatAmount,
		}
		if t.UpToInf {
			tier.UpToInf = stripesdk.Bool(true)
		} else {
			tier.UpTo = stripesdk.Int64(t.UpTo)
		}
		params.Tiers = append(params.Tiers, tier)
	}
	if p.TiersMode != "" {
		params.TiersMode = stripesdk.String(p.TiersMode)
	}
	if p.TransformQuantity != nil {
		params.TransformQuantity = &stripesdk.PriceTransformQuantityParams{
			DivideBy: stripesdk.Int64(p.TransformQuantity.DivideBy),
			Round:    stripesdk.String(p.TransformQuantity.Round),
		}
	}
	if p.Active != nil {
		params.Active = stripesdk.Bool(*p.Active)
	}
	if p.Nickname != "" {
		params.Nickname = stripesdk.String(p.Nickname)
	}
	if p.LookupKey != "" {
		params.LookupKey = stripesdk.String(p.LookupKey)
	}
	if p.TaxBehavior != "" {
		params.TaxBehavior = stripesdk.String(p.TaxBehavior)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// priceUpdateParams keeps only the fields Stripe allows mutating on an
// existing price.
func priceUpdateParams(ctx context.Context, p *models.ResourceParams) *stripesdk.PriceParams {
	params := &stripesdk.PriceParams{}
	params.Context = ctx
	if p.Active != nil {
		params.Active = stripesdk.Bool(*p.Active)
	}
	if p.Nickname != "" {
		params.Nickname = stripesdk.String(p.Nickname)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func couponToResource(c *stripesdk.Coupon) *models.Resource {
	r := &models.Resource{
		ID:               c.ID,
		Kind:             models.KindCoupon,
		Name:             c.Name,
		PercentOff:       c.PercentOff,
		AmountOff:        c.AmountOff,
		Currency:         string(c.Currency),
		Duration:         string(c.Duration),
		DurationInMonths: c.DurationInMonths,
		MaxRedemptions:   c.MaxRedemptions,
		RedeemBy:         c.RedeemBy,
		Metadata:         c.Metadata,
	}
	if c.AppliesTo != nil {
		r.AppliesTo = c.AppliesTo.Products
	}
	return r
}

func couponParams(ctx context.Context, p *models.ResourceParams) *stripesdk.CouponParams {
	params := &stripesdk.CouponParams{}
	params.Context = ctx
	if p.ID != "" {
		params.ID = stripesdk.String(p.ID)
	}
	if p.Name != "" {
		params.Name = stripesdk.String(p.Name)
	}
	if p.PercentOff != nil {
		params.PercentOff = stripesdk.Float64(*p.PercentOff)
	}
	if p.AmountOff != nil {
		params.AmountOff = stripesdk.Int64(*p.AmountOff)
		if p.Currency != "" {
			params.Currency = stripesdk.String(p.Currency)
		}
	}
	if p.Duration != "" {
		params.Duration = stripesdk.String(p.Duration)
	}
	if p.DurationInMonths > 0 {
		params.DurationInMonths = stripesdk.Int64(p.DurationInMonths)
	}
	if p.MaxRedemptions > 0 {
		params.MaxRedemptions = stripesdk.Int64(p.MaxRedemptions)
	}
	if p.RedeemBy > 0 {
		params.RedeemBy = stripesdk.Int64(p.RedeemBy)
	}
	if len(p.AppliesTo) > 0 {
		params.AppliesTo = &stripesdk.CouponAppliesToParams{
			Products: stripesdk.StringSlice(p.AppliesTo),
		}
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// couponUpdateParams keeps only name and metadata, the fields Stripe allows
// changing on an existing coupon.
func couponUpdateParams(ctx context.Context, p *models.ResourceParams) *stripesdk.CouponParams {
	params := &stripesdk.CouponParams{}
	params.Context = ctx
	if p.Name != "" {
		params.Name = stripesdk.String(p.Name)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}
