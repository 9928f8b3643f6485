package reconcile

import (
	"context"
	"errors"
	"fmt"

	"customer-sync/core/customer"
)

// BuildPlan generates a summary and action plan from classified results.
// It does NOT execute actions; use ApplyPlan for that.
func BuildPlan(results []customer.Customer, opts ReconcileOptions) *ReconcilePlan {
	plan := &ReconcilePlan{
		Results: results,
		Actions: []Action{},
	}
	plan.Summary.TotalItems = len(results)

	for i, result := range results {
		switch result.Status {
		case customer.StatusAdded:
			plan.Summary.Added++
			if opts.DoAdd {
				plan.Actions = append(plan.Actions, Action{
					Type:   ActionAdd,
					Key:    result.CompanyID,
					Reason: "not in previous pass",
					index:  i,
				})
				plan.Summary.AddActions++
			}
		case customer.StatusMissing:
			plan.Summary.Missing++
			// Without a directory id there is nothing to delete
			if opts.DoDelete && result.ExternalID != "" {
				plan.Actions = append(plan.Actions, Action{
					Type:       ActionDelete,
					Key:        result.CompanyID,
					ExternalID: result.ExternalID,
					Reason:     "removed from company list",
					index:      i,
				})
				plan.Summary.DeleteActions++
			}
		case customer.StatusDifferent:
			plan.Summary.Different++
		case customer.StatusUnchanged:
			plan.Summary.Unchanged++
		}
	}

	return plan
}

// ApplyPlan executes the actions in a reconcile plan against the directory.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
//
// Execution is best effort: a failed action does not stop the remaining ones.
// The returned error joins every failure. Identifiers returned by Add are
// written into the plan results and into the engine snapshot. Added records
// that did not reach the directory lose their placeholder and are dropped
// from the snapshot, so the next pass plans them again.
func ApplyPlan(ctx context.Context, engine *Engine, mutator Mutator, plan *ReconcilePlan, opts ReconcileOptions) (executed int, err error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Executes() {
		return 0, nil
	}

	var errs []error
	added := make(map[int]bool)

	if mutator == nil {
		errs = append(errs, fmt.Errorf("no directory configured"))
	} else {
		for _, action := range plan.Actions {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}

			switch action.Type {
			case ActionDelete:
				if err := mutator.Delete(ctx, action.ExternalID); err != nil {
					errs = append(errs, fmt.Errorf("failed to delete %s: %w", action.Key, err))
					continue
				}
				executed++

			case ActionAdd:
				result := &plan.Results[action.index]
				id, err := mutator.Add(ctx, result.Name, result.Fax)
				if err != nil {
					errs = append(errs, fmt.Errorf("failed to add %s: %w", action.Key, err))
					continue
				}
				result.ExternalID = id
				if engine != nil {
					engine.AssignExternalID(action.Key, id)
				}
				added[action.index] = true
				executed++
			}
		}
	}

	forgetUnrealised(engine, plan, added)

	return executed, errors.Join(errs...)
}

// forgetUnrealised clears the placeholder of every Added result that was not
// created in the directory.
func forgetUnrealised(engine *Engine, plan *ReconcilePlan, added map[int]bool) {
	for i := range plan.Results {
		result := &plan.Results[i]
		if result.Status != customer.StatusAdded || added[i] {
			continue
		}
		result.ExternalID = ""
		if engine != nil {
			engine.Forget(result.CompanyID)
		}
	}
}

// ReconcileWithPlan runs a pass on the engine and plans the resulting actions.
func ReconcileWithPlan(engine *Engine, candidates []customer.Customer, opts ReconcileOptions) (*ReconcilePlan, error) {
	results, err := engine.Reconcile(candidates)
	if err != nil {
		return nil, err
	}
	return BuildPlan(results, opts), nil
}

// PlanPass commits the pass when opts execute and previews it otherwise.
func PlanPass(engine *Engine, candidates []customer.Customer, opts ReconcileOptions) (*ReconcilePlan, error) {
	if opts.Executes() {
		return ReconcileWithPlan(engine, candidates, opts)
	}
	return PreviewWithPlan(engine, candidates, opts)
}

// PreviewWithPlan plans a pass without moving the engine snapshot.
func PreviewWithPlan(engine *Engine, candidates []customer.Customer, opts ReconcileOptions) (*ReconcilePlan, error) {
	results, err := engine.Preview(candidates)
	if err != nil {
		return nil, err
	}
	return BuildPlan(results, opts), nil
}

// ReconcileAndApply is a convenience wrapper that plans and optionally applies actions.
// It returns the plan, number of actions executed, and any error. A pass
// that does not execute is a preview and leaves the snapshot alone.
func ReconcileAndApply(
	ctx context.Context,
	engine *Engine,
	mutator Mutator,
	candidates []customer.Customer,
	opts ReconcileOptions,
) (*ReconcilePlan, int, error) {
	plan, err := PlanPass(engine, candidates, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, engine, mutator, plan, opts)
	return plan, executed, err
}
