// Package customer defines the Customer Record shared by the reconciliation
// engine, the external directory adapters and the company source.
//
// A record is identified across reconciliation passes by its CompanyID (the
// business key). ExternalID is assigned by the external directory once the
// record has been created there. Status is derived by the engine and is never
// authoritative input.
package customer
