// Package secondary defines the driven ports: interfaces the application
// core requires from infrastructure adapters.
package secondary

import (
	"context"
	"errors"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
)

// Environment selects which Stripe account a call targets.
type Environment string

const (
	// EnvironmentProduction is the read-only source account.
	EnvironmentProduction Environment = "production"
	// EnvironmentTest is the mutable destination account.
	EnvironmentTest Environment = "test"
)

// ErrReadOnlyEnvironment is returned when a mutating call targets the
// production environment. It is a contract violation, raised before any
// network I/O, never a recoverable per-resource failure.
var ErrReadOnlyEnvironment = errors.New("production environment is read-only")

// ResourceClient wraps the remote platform API per resource kind.
// Implementations must reject Create and Update against
// EnvironmentProduction with ErrReadOnlyEnvironment.
type ResourceClient interface {
	// List fetches every resource of the kind from env, following
	// pagination to exhaustion.
	List(ctx context.Context, env Environment, kind models.Kind) ([]*models.Resource, error)

	// Create creates a resource in env and returns the created object.
	Create(ctx context.Context, env Environment, kind models.Kind, params *models.ResourceParams) (*models.Resource, error)

	// Update mutates an existing resource in env.
	Update(ctx context.Context, env Environment, kind models.Kind, id string, params *models.ResourceParams) (*models.Resource, error)
}
