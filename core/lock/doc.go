// Package lock serializes reconciliation runs.
//
// The engine's snapshot is a read-modify-write over shared state, so two runs
// against the same directory must not overlap. A single process can rely on
// the local locker; several instances sharing one directory use the Redis
// locker, built on bsm/redislock. Either one gives up on a held lock after
// the configured wait with ErrNotObtained, and a held Redis lock is refreshed
// until released so long runs do not outlive its TTL.
//
// # Usage
//
//	locker, err := lock.New(cfg.Redis)
//	release, err := locker.Obtain(ctx, "customers:reconcile")
//	if err != nil {
//	    return err
//	}
//	defer release(ctx)
package lock
