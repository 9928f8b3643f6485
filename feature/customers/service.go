package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customer-sync/core/customer"
	"customer-sync/core/directory"
	"customer-sync/core/lock"
	"customer-sync/core/metrics"
	"customer-sync/core/reconcile"

	"go.uber.org/zap"
)

var (
	// ErrNoSource is returned when a pass needs the company list but no source is configured.
	ErrNoSource = errors.New("no customer source configured")
	// ErrNoDirectory is returned by directory operations without a directory.
	ErrNoDirectory = errors.New("no directory configured")
	// ErrNoArchive is returned when reports are requested without object storage.
	ErrNoArchive = errors.New("no report archive configured")
)

// Deps holds the collaborators of a Service. Only Engine is required.
type Deps struct {
	Engine    *reconcile.Engine
	Source    reconcile.Source
	Directory directory.Directory
	Locker    lock.Locker
	Archive   *Archive
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
	Config    Config
}

// Service runs reconciliation passes and directory maintenance.
type Service struct {
	engine  *reconcile.Engine
	source  reconcile.Source
	dir     directory.Directory
	locker  lock.Locker
	archive *Archive
	metrics *metrics.Recorder
	logger  *zap.Logger
	cfg     Config
}

// RunResult is the outcome of Service.Reconcile.
type RunResult struct {
	Plan     *reconcile.ReconcilePlan `json:"plan"`
	Executed int                      `json:"executed"`
	Report   string                   `json:"report,omitempty"`
	Errors   []string                 `json:"errors,omitempty"`
}

// NewService creates a Service. A nil Locker defaults to an in-process lock
// and a nil Logger to a no-op logger.
func NewService(deps Deps) *Service {
	s := &Service{
		engine:  deps.Engine,
		source:  deps.Source,
		locker:  deps.Locker,
		archive: deps.Archive,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		cfg:     deps.Config,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cfg.LockKey == "" {
		s.cfg.LockKey = "customer-sync:reconcile"
	}
	if deps.Directory != nil {
		s.dir = &observedDirectory{Directory: deps.Directory, metrics: deps.Metrics}
	}
	return s
}

// Reconcile runs one pass. A nil candidates slice loads the company list from
// the source; an empty non-nil slice reconciles against nothing.
//
// Only a pass whose options execute moves the baseline. Any other pass is a
// preview: it is classified and archived but the next pass diffs against the
// same baseline. Key errors abort before any directory call. Apply failures
// do not: the result is still returned, archived and carries the messages in
// Errors.
func (s *Service) Reconcile(ctx context.Context, candidates []customer.Customer, opts reconcile.ReconcileOptions) (*RunResult, error) {
	if candidates == nil {
		if s.source == nil {
			return nil, ErrNoSource
		}
		loaded, err := reconcile.GetOrLoad(ctx, s.source, s.cfg.CacheTTL())
		if err != nil {
			return nil, err
		}
		candidates = loaded
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	plan, err := reconcile.PlanPass(s.engine, candidates, opts)
	if err != nil {
		s.metrics.ObservePass(nil, s.engine.Len(), err)
		return nil, err
	}

	s.logger.Info("Reconciliation plan",
		zap.Int("total_items", plan.Summary.TotalItems),
		zap.Int("added", plan.Summary.Added),
		zap.Int("missing", plan.Summary.Missing),
		zap.Int("different", plan.Summary.Different),
		zap.Int("unchanged", plan.Summary.Unchanged),
		zap.Int("planned_actions", len(plan.Actions)),
	)

	result := &RunResult{Plan: plan}
	applyErr := s.apply(ctx, result, opts)

	s.metrics.ObservePass(plan.Results, s.engine.Len(), nil)
	s.save(ctx, result, opts)

	return result, applyErr
}

// Apply executes a plan returned by an earlier preview, for callers that
// confirm after reviewing it. The reviewed results become the baseline before
// the actions run. The applied report is archived.
func (s *Service) Apply(ctx context.Context, result *RunResult, opts reconcile.ReconcileOptions) error {
	if result == nil || result.Plan == nil {
		return errors.New("no plan to apply")
	}
	if !opts.Executes() {
		return nil
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.engine.Restore(result.Plan.Results); err != nil {
		return fmt.Errorf("failed to adopt reviewed plan: %w", err)
	}

	applyErr := s.apply(ctx, result, opts)
	s.save(ctx, result, opts)
	return applyErr
}

// lock serializes passes across the service and, with Redis, across processes.
func (s *Service) lock(ctx context.Context) (func(), error) {
	release, err := s.locker.Obtain(ctx, s.cfg.LockKey)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.Background()); err != nil {
			s.logger.Warn("Failed to release run lock", zap.Error(err))
		}
	}, nil
}

func (s *Service) apply(ctx context.Context, result *RunResult, opts reconcile.ReconcileOptions) error {
	var mutator reconcile.Mutator
	if s.dir != nil {
		mutator = s.dir
	}
	executed, err := reconcile.ApplyPlan(ctx, s.engine, mutator, result.Plan, opts)
	result.Executed = executed
	result.Errors = nil
	if err != nil {
		s.logger.Error("Some directory actions failed", zap.Int("executed", executed), zap.Error(err))
		result.Errors = splitErrors(err)
	}
	return err
}

func (s *Service) save(ctx context.Context, result *RunResult, opts reconcile.ReconcileOptions) {
	if s.archive == nil {
		return
	}
	name, err := s.archive.Save(ctx, &Report{
		GeneratedAt: time.Now(),
		Source:      s.sourceName(),
		Applied:     opts.Executes(),
		Executed:    result.Executed,
		Errors:      result.Errors,
		Plan:        result.Plan,
	})
	if err != nil {
		s.logger.Warn("Failed to archive report", zap.Error(err))
	}
	result.Report = name
}

// List returns every customer in the directory.
func (s *Service) List(ctx context.Context) ([]customer.Customer, error) {
	if s.dir == nil {
		return nil, ErrNoDirectory
	}
	return s.dir.QueryAll(ctx)
}

// AddAll adds each record to the directory and returns copies carrying the
// assigned ids. It stops at the first failure and returns what was added so far.
func (s *Service) AddAll(ctx context.Context, records []customer.Customer) ([]customer.Customer, error) {
	if s.dir == nil {
		return nil, ErrNoDirectory
	}

	added := make([]customer.Customer, 0, len(records))
	for _, c := range records {
		id, err := s.dir.Add(ctx, c.Name, c.Fax)
		if err != nil {
			return added, fmt.Errorf("failed to add customer %q: %w", c.Name, err)
		}
		c.ExternalID = id
		added = append(added, c)
		s.logger.Info("Customer added", zap.String("name", c.Name), zap.String("external_id", id))
	}
	return added, nil
}

// DeleteAll removes every customer from the directory. Failures are logged and
// skipped; the count of deleted records is returned with the joined errors.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	if s.dir == nil {
		return 0, ErrNoDirectory
	}

	all, err := s.dir.QueryAll(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var errs []error
	for _, c := range all {
		if err := s.dir.Delete(ctx, c.ExternalID); err != nil {
			s.logger.Error("Failed to delete customer", zap.String("external_id", c.ExternalID), zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", c.ExternalID, err))
			continue
		}
		deleted++
		s.logger.Info("Customer deleted", zap.String("name", c.Name), zap.String("external_id", c.ExternalID))
	}
	return deleted, errors.Join(errs...)
}

// RestoreBaseline seeds the engine from the newest applied report and
// returns the number of records restored.
func (s *Service) RestoreBaseline(ctx context.Context) (int, error) {
	if s.archive == nil {
		return 0, ErrNoArchive
	}
	report, err := s.archive.LatestApplied(ctx)
	if err != nil {
		return 0, err
	}
	if report.Plan == nil {
		return 0, ErrNoReport
	}
	// Records without a directory id were never created there
	records := make([]customer.Customer, 0, len(report.Plan.Results))
	for _, r := range report.Plan.Results {
		if r.ExternalID != "" {
			records = append(records, r)
		}
	}
	if err := s.engine.Restore(records); err != nil {
		return 0, fmt.Errorf("failed to restore baseline: %w", err)
	}
	s.logger.Info("Baseline restored", zap.Int("records", s.engine.Len()))
	return s.engine.Len(), nil
}

// Snapshot returns the engine's current snapshot.
func (s *Service) Snapshot() []customer.Customer {
	return s.engine.Snapshot()
}

// Reports lists archived report names.
func (s *Service) Reports(ctx context.Context) ([]string, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.List(ctx)
}

// Verify checks the source when it supports verification.
func (s *Service) Verify(ctx context.Context) error {
	v, ok := s.source.(interface{ Verify(context.Context) error })
	if !ok {
		return nil
	}
	return v.Verify(ctx)
}

// InvalidateSource drops the cached company list.
func (s *Service) InvalidateSource() {
	if s.source != nil {
		reconcile.InvalidateCache(s.source.Name())
	}
}

func (s *Service) sourceName() string {
	if s.source == nil {
		return "request"
	}
	return s.source.Name()
}

// splitErrors flattens a joined error into its messages.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// observedDirectory counts directory calls.
type observedDirectory struct {
	directory.Directory
	metrics *metrics.Recorder
}

func (d *observedDirectory) Add(ctx context.Context, name, fax string) (string, error) {
	id, err := d.Directory.Add(ctx, name, fax)
	d.metrics.ObserveDirectoryCall("add", err)
	return id, err
}

func (d *observedDirectory) QueryAll(ctx context.Context) ([]customer.Customer, error) {
	all, err := d.Directory.QueryAll(ctx)
	d.metrics.ObserveDirectoryCall("query", err)
	return all, err
}

func (d *observedDirectory) Delete(ctx context.Context, externalID string) error {
	err := d.Directory.Delete(ctx, externalID)
	d.metrics.ObserveDirectoryCall("delete", err)
	return err
}
