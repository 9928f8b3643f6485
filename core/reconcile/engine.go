package reconcile

import (
	"sync"

	"customer-sync/core/customer"

	"go.uber.org/zap"
)

// IDGenerator produces the placeholder external identifier for an Added record.
type IDGenerator func(c customer.Customer) string

// PlaceholderID is the default IDGenerator. The placeholder is replaced once
// the directory has assigned a real identifier (see Engine.AssignExternalID).
func PlaceholderID(c customer.Customer) string {
	return "QB_" + c.CompanyID
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the placeholder identifier for Added records.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Engine classifies candidate lists against the snapshot of the previous pass.
// The snapshot belongs to the engine instance; use one engine per tenant.
// Engine is safe for concurrent use, calls are serialized.
type Engine struct {
	mu sync.Mutex

	// snapshot holds the last classified record per business key.
	snapshot map[string]customer.Customer
	// order keeps the snapshot keys in insertion order.
	order []string

	newID  IDGenerator
	logger *zap.Logger
}

// NewEngine creates an engine with an empty snapshot.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		snapshot: make(map[string]customer.Customer),
		newID:    PlaceholderID,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile diffs candidates against the snapshot and returns the classified
// records: every Missing record in snapshot order, then one record per
// candidate in input order. On success the snapshot is replaced by the
// candidate records; Missing records are not retained. On error the snapshot
// is left untouched.
func (e *Engine) Reconcile(candidates []customer.Customer) ([]customer.Customer, error) {
	return e.run(candidates, true)
}

// Preview classifies candidates exactly like Reconcile but keeps the snapshot.
func (e *Engine) Preview(candidates []customer.Customer) ([]customer.Customer, error) {
	return e.run(candidates, false)
}

func (e *Engine) run(candidates []customer.Customer, commit bool) ([]customer.Customer, error) {
	index, err := indexByKey(candidates)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Info("Reconciliation started",
		zap.Int("candidates", len(candidates)),
		zap.Int("snapshot", len(e.order)),
		zap.Bool("preview", !commit),
	)

	results := make([]customer.Customer, 0, len(candidates)+len(e.order))

	// Missing pass
	for _, key := range e.order {
		if _, ok := index[key]; ok {
			continue
		}
		missing := e.snapshot[key]
		missing.Status = customer.StatusMissing
		results = append(results, missing)
		e.logClassified(missing)
	}
	missingCount := len(results)

	// Candidate pass
	for _, c := range candidates {
		result := customer.Customer{
			Name:      c.Name,
			Fax:       c.Fax,
			CompanyID: c.CompanyID,
		}

		if prev, ok := e.snapshot[c.CompanyID]; ok {
			result.ExternalID = prev.ExternalID
			if prev.Name == c.Name {
				result.Status = customer.StatusUnchanged
			} else {
				result.Status = customer.StatusDifferent
			}
		} else {
			result.ExternalID = e.newID(c)
			result.Status = customer.StatusAdded
		}

		results = append(results, result)
		e.logClassified(result)
	}

	if commit {
		e.replaceSnapshot(results[missingCount:])
	}

	e.logger.Info("Reconciliation completed",
		zap.Int("results", len(results)),
		zap.Int("missing", missingCount),
	)

	return results, nil
}

// AssignExternalID records the directory identifier for a tracked key.
// It returns false if the key is not in the snapshot.
func (e *Engine) AssignExternalID(companyID, externalID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.snapshot[companyID]
	if !ok {
		return false
	}
	c.ExternalID = externalID
	e.snapshot[companyID] = c
	return true
}

// Forget drops a key from the snapshot so the next pass classifies it as
// Added again. It returns false if the key is not tracked.
func (e *Engine) Forget(companyID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.snapshot[companyID]; !ok {
		return false
	}
	delete(e.snapshot, companyID)
	for i, key := range e.order {
		if key == companyID {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns a copy of the tracked records in snapshot order.
func (e *Engine) Snapshot() []customer.Customer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]customer.Customer, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, e.snapshot[key])
	}
	return out
}

// Len returns the number of tracked records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order)
}

// Reset clears the snapshot.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = make(map[string]customer.Customer)
	e.order = nil
}

// Restore replaces the snapshot with records, e.g. a previously archived pass.
// Missing records are skipped. The same key rules as Reconcile apply.
func (e *Engine) Restore(records []customer.Customer) error {
	kept := make([]customer.Customer, 0, len(records))
	for _, r := range records {
		if r.Status == customer.StatusMissing {
			continue
		}
		kept = append(kept, r)
	}
	if _, err := indexByKey(kept); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceSnapshot(kept)
	return nil
}

// replaceSnapshot must be called with e.mu held.
func (e *Engine) replaceSnapshot(records []customer.Customer) {
	snapshot := make(map[string]customer.Customer, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		snapshot[r.CompanyID] = r
		order = append(order, r.CompanyID)
	}
	e.snapshot = snapshot
	e.order = order
}

func (e *Engine) logClassified(c customer.Customer) {
	e.logger.Debug("Customer classified",
		zap.String("name", c.Name),
		zap.String("company_id", c.CompanyID),
		zap.String("status", string(c.Status)),
	)
}

// indexByKey builds the candidate lookup and enforces key uniqueness.
func indexByKey(records []customer.Customer) (map[string]struct{}, error) {
	index := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.CompanyID == "" {
			return nil, ErrMissingKey
		}
		if _, dup := index[r.CompanyID]; dup {
			return nil, &DuplicateKeyError{Key: r.CompanyID}
		}
		index[r.CompanyID] = struct{}{}
	}
	return index, nil
}
