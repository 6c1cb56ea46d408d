// Package reconcile implements the cross-environment reconciliation engine:
// the generic list/match/create-or-update loop and the per-kind strategies
// that parameterize it.
package reconcile

import (
	"fmt"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// Strategy supplies the kind-specific rules the engine is parameterized by.
// The set of implementations is closed: tax rates, products, prices and
// coupons, all known at build time.
type Strategy interface {
	// Kind identifies the resource kind this strategy reconciles.
	Kind() models.Kind

	// CanUpdate reports whether the remote API allows mutating existing
	// resources of this kind. Prices cannot be updated.
	CanUpdate() bool

	// CreateParams translates a production resource into test-environment
	// creation parameters, resolving cross-references through the mapping
	// store. An unresolvable required reference yields a *DependencyError.
	CreateParams(src *models.Resource) (*models.ResourceParams, error)

	// UpdateParams returns the parameters that mirror current production
	// field values onto an existing test resource.
	UpdateParams(src *models.Resource) (*models.ResourceParams, error)

	// Match finds the test resource corresponding to src by kind-specific
	// characteristics. It is the fallback after the mapping fast path; the
	// first candidate in the target list's given order wins, deliberately.
	Match(src *models.Resource, targets []*models.Resource) *models.Resource

	// Unchanged reports whether dst already mirrors every field an update
	// would write, allowing zero-diff updates to be skipped.
	Unchanged(src, dst *models.Resource) bool
}

// DependencyError signals that a cross-reference to another kind's resource
// could not be translated because the referenced resource is unmapped. The
// dependent resource is not created; the failure is counted and the pass
// continues.
type DependencyError struct {
	Kind   models.Kind
	ProdID string
	Ref    string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %s: referenced %s is not mapped, copy products before prices and coupons", e.Kind, e.ProdID, e.Ref)
}

// matchByProdID is the shared first fallback: a test resource whose
// metadata records src's production ID is the same resource.
func matchByProdID(src *models.Resource, targets []*models.Resource) *models.Resource {
	for _, t := range targets {
		if t.ProdID() == src.ID {
			return t
		}
	}
	return nil
}

// sameStringSet reports whether a and b hold the same elements,
// order-insensitive.
func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	return true
}
