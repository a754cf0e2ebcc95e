// Package records defines the gateway's append-only record store: one
// request record per provider attempt, one health record per availability
// transition and one record per raised alert.
//
// The package holds the record shapes, the Query filter and the Storage
// contract. Concrete backends live in the storage subpackage (SQLite and
// in-memory), the async write path in recorder, retention enforcement in
// retention and file export in export.
//
// Records are operational history, not billing data: the store is written
// asynchronously and a dropped record never fails the request that produced
// it.
package records
