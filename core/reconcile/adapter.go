package reconcile

import (
	"context"

	"customer-sync/core/customer"
)

// Source supplies the authoritative candidate list for a pass,
// typically the company database.
type Source interface {
	// Name returns a unique name used as the cache key.
	Name() string

	// Load returns the full candidate list in a deterministic order.
	Load(ctx context.Context) ([]customer.Customer, error)
}

// Mutator is the write half of the external directory.
// ApplyPlan uses it to realise Added and Missing results.
type Mutator interface {
	// Add creates a customer and returns the identifier the directory assigned.
	Add(ctx context.Context, name, fax string) (string, error)

	// Delete removes the customer with the given directory identifier.
	Delete(ctx context.Context, externalID string) error
}
