package types

import (
	"encoding/json"
	"errors"
)

// ReadTransaction is a consistent read-only snapshot of the replicated
// store. All reads within one transaction observe the same state; accessors
// must never combine reads from different transactions.
type ReadTransaction interface {
	// Get returns the raw value stored under key. The boolean reports
	// whether the key exists.
	Get(key string) (json.RawMessage, bool, error)

	// Scan returns all entries whose key starts with prefix, ordered by key.
	Scan(prefix string) ([]ScanEntry, error)
}

// WriteTransaction extends a read snapshot with buffered writes. Writes
// become visible to subsequent reads in the same transaction and are
// committed atomically by the engine.
type WriteTransaction interface {
	ReadTransaction

	// Put stores value under key, replacing any existing value.
	Put(key string, value json.RawMessage) error

	// Delete removes the value stored under key. The boolean reports
	// whether the key existed.
	Delete(key string) (bool, error)
}

// ScanEntry is one key/value pair returned by ReadTransaction.Scan.
type ScanEntry struct {
	Key   string
	Value json.RawMessage
}

// Entity is implemented by every replicated record shape. Validate rejects
// malformed records at the store boundary; records are validated on every
// read and write.
type Entity interface {
	EntityID() string
	Validate() error
}

// Store and entity errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
	ErrInvalidSort = errors.New("invalid sort position field")
	ErrUnknownName = errors.New("unknown mutator name")
)

// Engine lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("store already attached")
	ErrDetached        = errors.New("store not attached")
)
