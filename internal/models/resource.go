// Package models contains the domain types shared across layers.
package models

// Kind identifies a copyable Stripe resource type. The set is closed;
// dependency order between kinds is owned by the sync service.
type Kind string

const (
	KindTaxRate Kind = "tax_rates"
	KindProduct Kind = "products"
	KindPrice   Kind = "prices"
	KindCoupon  Kind = "coupons"
)

// AllKinds returns every kind in canonical dependency order. Products must
// precede prices and coupons because both reference product IDs.
func AllKinds() []Kind {
	return []Kind{KindTaxRate, KindProduct, KindPrice, KindCoupon}
}

// ValidKind reports whether name is a known resource kind.
func ValidKind(name string) bool {
	switch Kind(name) {
	case KindTaxRate, KindProduct, KindPrice, KindCoupon:
		return true
	}
	return false
}

// MetadataProdID is the metadata key stamped on every created test resource
// so later runs can recognize its production origin.
const MetadataProdID = "prod_id"

// Recurring describes the billing cadence of a recurring price.
type Recurring struct {
	Interval        string `json:"interval"`
	IntervalCount   int64  `json:"interval_count,omitempty"`
	UsageType       string `json:"usage_type,omitempty"`
	TrialPeriodDays int64  `json:"trial_period_days,omitempty"`
}

// PriceTier is one step of a tiered price. Exactly one of UnitAmount and
// FlatAmount is set; UpToInf marks the open-ended last tier.
type PriceTier struct {
	UpTo       int64  `json:"up_to,omitempty"`
	UpToInf    bool   `json:"up_to_inf,omitempty"`
	UnitAmount *int64 `json:"unit_amount,omitempty"`
	FlatAmount *int64 `json:"flat_amount,omitempty"`
}

// TransformQuantity divides the usage quantity before the per-unit price
// applies.
type TransformQuantity struct {
	DivideBy int64  `json:"divide_by"`
	Round    string `json:"round"`
}

// Resource is the environment-neutral view of a fetched Stripe object.
// Only the fields the copier mirrors are represented; which ones are
// meaningful depends on Kind. Resources are immutable once fetched.
type Resource struct {
	ID       string
	Kind     Kind
	Metadata map[string]string

	// Shared
	Name        string
	Description string
	Active      bool

	// Tax rates
	Percentage   float64
	Inclusive    bool
	Jurisdiction string
	Country      string
	State        string

	// Products
	Images              []string
	Features            []string
	StatementDescriptor string
	UnitLabel           string
	URL                 string
	Shippable           bool
	TaxCode             string

	// Prices
	ProductID         string
	Currency          string
	UnitAmount        int64
	UnitAmountSet     bool
	UnitAmountDecimal string
	Recurring         *Recurring
	BillingScheme     string
	Tiers             []PriceTier
	TiersMode         string
	TransformQuantity *TransformQuantity
	LookupKey         string
	Nickname          string
	TaxBehavior       string

	// Coupons
	PercentOff       float64
	AmountOff        int64
	Duration         string
	DurationInMonths int64
	MaxRedemptions   int64
	RedeemBy         int64
	AppliesTo        []string
}

// ProdID returns the production origin recorded in metadata, if any.
func (r *Resource) ProdID() string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[MetadataProdID]
}

// ResourceParams carries the field values for a create or update call.
// Pointer fields distinguish "unset" from zero values where the remote API
// treats them differently.
type ResourceParams struct {
	ID       string
	Metadata map[string]string

	Name        string
	Description string
	Active      *bool

	Percentage   float64
	Inclusive    *bool
	Jurisdiction string
	Country      string
	State        string

	Images              []string
	Features            []string
	StatementDescriptor string
	UnitLabel           string
	URL                 string
	Shippable           *bool
	TaxCode             string

	ProductID         string
	Currency          string
	UnitAmount        *int64
	UnitAmountDecimal string
	Recurring         *Recurring
	BillingScheme     string
	Tiers             []PriceTier
	TiersMode         string
	TransformQuantity *TransformQuantity
	LookupKey         string
	Nickname          string
	TaxBehavior       string

	PercentOff       *float64
	AmountOff        *int64
	Duration         string
	DurationInMonths int64
	MaxRedemptions   int64
	RedeemBy         int64
	AppliesTo        []string
}

// SetMetadata copies md into the params, allocating if needed.
func (p *ResourceParams) SetMetadata(md map[string]string) {
	if len(md) == 0 {
		return
	}
	if p.Metadata == nil {
		p.Metadata = make(map[string]string, len(md))
	}
	for k, v := range md {
		p.Metadata[k] = v
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }

// Float64 returns a pointer to f.
func Float64(f float64) *float64 { return &f }
