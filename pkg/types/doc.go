// Package types defines the entity schemas, transaction contracts, and
// standard errors for the library store. Entities are the replicated record
// shapes shared by every client; the transaction interfaces are the
// capability surface the replication engine provides to accessors and
// mutators.
package types
