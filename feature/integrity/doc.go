// Package integrity provides system health checks for customer-sync.
//
// It validates the infrastructure a reconciliation pass depends on rather
// than the customer data itself.
//
// # Checks Provided
//
//   - Server: the company table carries every mapped column.
//   - Structure: the report bucket and archive prefix exist in storage.
//   - Directory: the external directory answers a full query.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/server : Runs the schema check.
//   - GET /integrity/structure : Runs the storage check (supports ?fix=true).
//   - GET /integrity/directory : Runs the directory check.
package integrity
