package reconcile

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/core/mapping"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

func coupon(id, name string) *models.Resource {
	return &models.Resource{ID: id, Kind: models.KindCoupon, Name: name}
}

func TestCouponCreateParams_PrefixesID(t *testing.T) {
	s := NewCouponStrategy(mapping.NewStore(), zerolog.Nop())
	src := coupon("SAVE10", "Save 10%")
	src.PercentOff = 10

	params, err := s.CreateParams(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.ID != "test_SAVE10" {
		t.Errorf("expected prefixed ID 'test_SAVE10', got '%s'", params.ID)
	}
	if params.PercentOff == nil || *params.PercentOff != 10 {
		t.Errorf("expected percent_off 10, got %v", params.PercentOff)
	}
	if params.AmountOff != nil {
		t.Error("percent_off and amount_off are mutually exclusive")
	}
}

func TestCouponCreateParams_AmountOffCarriesCurrency(t *testing.T) {
	s := NewCouponStrategy(mapping.NewStore(), zerolog.Nop())
	src := coupon("FLAT5", "5 EUR off")
	src.AmountOff = 500
	src.Currency = "eur"

	params, err := s.CreateParams(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.AmountOff == nil || *params.AmountOff != 500 {
		t.Errorf("expected amount_off 500, got %v", params.AmountOff)
	}
	if params.Currency != "eur" {
		t.Errorf("expected currency 'eur', got '%s'", params.Currency)
	}
}

func TestCouponCreateParams_TranslatesAppliesTo(t *testing.T) {
	store := mapping.NewStore()
	store.Add(models.KindProduct, "P1", "tp_1")
	s := NewCouponStrategy(store, zerolog.Nop())

	src := coupon("SAVE10", "Save 10%")
	src.PercentOff = 10
	src.AppliesTo = []string{"P1", "P_unmapped"}

	params, err := s.CreateParams(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The unmapped reference is dropped with a warning, not fatal.
	if len(params.AppliesTo) != 1 || params.AppliesTo[0] != "tp_1" {
		t.Errorf("expected applies_to ['tp_1'], got %v", params.AppliesTo)
	}
}

func TestCouponMatch_ByPrefixedID(t *testing.T) {
	s := NewCouponStrategy(mapping.NewStore(), zerolog.Nop())
	src := coupon("SAVE10", "Save 10%")
	targets := []*models.Resource{
		coupon("other", "Save 10%"),
		coupon("test_SAVE10", "Renamed"),
	}

	got := s.Match(src, targets)
	if got == nil || got.ID != "test_SAVE10" {
		t.Errorf("expected prefixed ID match, got %v", got)
	}
}

func TestCouponMatch_ByNameGuarded(t *testing.T) {
	s := NewCouponStrategy(mapping.NewStore(), zerolog.Nop())
	src := coupon("SAVE10", "Save 10%")

	claimed := coupon("c1", "Save 10%")
	claimed.Metadata = map[string]string{models.MetadataProdID: "OTHER"}
	free := coupon("c2", "Save 10%")

	got := s.Match(src, []*models.Resource{claimed, free})
	if got == nil || got.ID != "c2" {
		t.Errorf("expected the claimed candidate to be skipped, got %v", got)
	}
}

func TestCouponMatch_EmptyNameNeverMatchesByName(t *testing.T) {
	s := NewCouponStrategy(mapping.NewStore(), zerolog.Nop())
	src := coupon("SAVE10", "")

	if got := s.Match(src, []*models.Resource{coupon("c1", "")}); got != nil {
		t.Errorf("expected no match on empty names, got %v", got)
	}
}
