// Package store implements the replicated library state: typed entity
// collections over the key/value transaction surface, pure read accessors
// that derive views from one consistent snapshot, and named mutators that
// apply state changes and are safe to replay during sync catch-up.
//
// Accessors never block and never write. Mutators receive a write
// transaction and a structured argument payload; the engine logs each
// mutation by name and replicates it, so every mutator is written to be
// idempotent or convergent under redelivery.
package store
