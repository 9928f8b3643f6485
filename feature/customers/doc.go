// Package customers wires the reconciliation engine to the company database,
// the external directory and the report archive.
//
// # Components
//
//   - DBSource: loads the authoritative customer list from the company table.
//   - Service: runs reconciliation passes and bulk directory operations under
//     the run lock, recording metrics and archiving every report.
//   - Archive: JSON reports in object storage; the newest one seeds the engine
//     after a restart.
//   - WriteWorkbook: xlsx export of a pass.
//   - Handler: the /customers HTTP routes.
//
// # Usage
//
//	svc := customers.NewService(customers.Deps{Engine: engine, Source: src, Directory: dir})
//	result, err := svc.Reconcile(ctx, nil, reconcile.ReconcileOptions{})
package customers
