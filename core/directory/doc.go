// Package directory implements the external customer directory: the desktop
// accounting product's customer list.
//
// The desktop product is only reachable through its local request processor,
// so this package talks to a small HTTP bridge that forwards customer add,
// query and delete requests to it and returns the response list as JSON.
//
// # Contract
//
//   - Add(name, fax) returns the list id assigned by the directory.
//     ErrRemoteRejected when the response carries a non-zero status,
//     ErrNoResponse when the response list is empty.
//   - QueryAll returns every customer; an empty directory is not an error.
//     ErrConnection when the bridge cannot be reached.
//   - Delete(listID) fails with ErrRemoteRejected carrying the status message.
//
// Name and fax are truncated to MaxFieldLength runes before transmission.
//
// # Implementations
//
//   - BridgeDirectory: HTTP client with per-request timeout and retries on
//     connection failures.
//   - MemoryDirectory: in-process directory for dry runs and tests.
//
// # Usage
//
//	dir, err := directory.New(cfg.Directory)
//	id, err := dir.Add(ctx, "Acme", "555-0100")
package directory
