package directory

import (
	"context"
	"fmt"
	"time"

	"customer-sync/core/customer"
)

// Directory is the external customer directory.
type Directory interface {
	// Add creates a customer and returns the list id assigned to it.
	Add(ctx context.Context, name, fax string) (string, error)
	// QueryAll returns every customer in the directory.
	QueryAll(ctx context.Context) ([]customer.Customer, error)
	// Delete removes the customer with the given list id.
	Delete(ctx context.Context, externalID string) error
}

// New creates a Directory based on the configuration.
func New(cfg Config) (Directory, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryDirectory(cfg.MaxFieldLength), nil
	case DriverBridge, "":
		return NewBridgeDirectory(cfg)
	default:
		return nil, fmt.Errorf("unknown directory driver %q", cfg.Driver)
	}
}

func timeoutOf(cfg Config) time.Duration {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return time.Duration(timeout) * time.Second
}
