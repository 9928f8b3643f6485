// Package reconcile compares the authoritative company customer list against
// the list seen by the previous pass and classifies every record.
//
// # Architecture
//
// The package consists of three parts:
//
// 1. Engine: holds the snapshot of the last pass keyed by business key
//    (CompanyID) and classifies a new candidate list as Added, Missing,
//    Different or Unchanged. The engine is pure computation; it never talks to
//    the external directory.
//
// 2. Plan: turns classified results into directory actions (add the Added
//    records, delete the Missing ones) and optionally applies them through a
//    Mutator, writing the returned external identifiers back into the engine.
//
// 3. Cache: TTL-based caching of candidate lists loaded from a Source, with
//    stampede protection.
//
// # Ordering
//
// Results list every Missing record first, in snapshot order, followed by one
// record per candidate in input order. Missing records are dropped from the
// snapshot after the pass that reports them, so a key that comes back later is
// reported as Added again.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(logger)
//	results, err := engine.Reconcile(candidates)
//	if err != nil {
//	    return err // snapshot untouched
//	}
//
//	plan := reconcile.BuildPlan(results, opts)
//	executed, err := reconcile.ApplyPlan(ctx, engine, directory, plan, opts)
package reconcile
