package directory

import (
	"context"
	"sync"

	"customer-sync/core/customer"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-process Directory. List ids are random uuids.
type MemoryDirectory struct {
	mu       sync.RWMutex
	records  map[string]customer.Customer
	order    []string
	maxField int
}

// NewMemoryDirectory creates an empty directory truncating fields to maxField runes.
func NewMemoryDirectory(maxField int) *MemoryDirectory {
	return &MemoryDirectory{
		records:  make(map[string]customer.Customer),
		maxField: maxField,
	}
}

// Add stores the customer and returns its new list id.
func (d *MemoryDirectory) Add(ctx context.Context, name, fax string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[id] = customer.Customer{
		Name:       Truncate(name, d.maxField),
		Fax:        Truncate(fax, d.maxField),
		ExternalID: id,
	}
	d.order = append(d.order, id)
	return id, nil
}

// QueryAll returns every stored customer in insertion order.
func (d *MemoryDirectory) QueryAll(ctx context.Context) ([]customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]customer.Customer, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.records[id])
	}
	return out, nil
}

// Delete removes the customer with the given list id.
func (d *MemoryDirectory) Delete(ctx context.Context, externalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.records[externalID]; !ok {
		return &RemoteError{Op: "delete", StatusCode: 3120, Message: ErrNotFound.Error() + ": " + externalID}
	}
	delete(d.records, externalID)
	for i, id := range d.order {
		if id == externalID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}
