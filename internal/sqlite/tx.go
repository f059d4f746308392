package sqlite

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/lindylearn/library-store/pkg/types"
)

// readTx is a consistent read snapshot over the in-memory entry map. The
// backend holds its read lock for the lifetime of the transaction, so the
// map cannot change underneath it.
type readTx struct {
	entries map[string]json.RawMessage
}

// Get implements types.ReadTransaction.
func (tx *readTx) Get(key string) (json.RawMessage, bool, error) {
	value, ok := tx.entries[key]
	return value, ok, nil
}

// Scan implements types.ReadTransaction.
func (tx *readTx) Scan(prefix string) ([]types.ScanEntry, error) {
	var scanned []types.ScanEntry
	for key, value := range tx.entries {
		if strings.HasPrefix(key, prefix) {
			scanned = append(scanned, types.ScanEntry{Key: key, Value: value})
		}
	}
	sort.Slice(scanned, func(i, j int) bool {
		return scanned[i].Key < scanned[j].Key
	})
	return scanned, nil
}

// writeTx buffers writes on top of a read snapshot. Mutators observe their
// own writes; nothing is durable until the backend commits the overlay.
type writeTx struct {
	base    *readTx
	puts    map[string]json.RawMessage
	deletes map[string]bool
}

func newWriteTx(entries map[string]json.RawMessage) *writeTx {
	return &writeTx{
		base:    &readTx{entries: entries},
		puts:    make(map[string]json.RawMessage),
		deletes: make(map[string]bool),
	}
}

// Get implements types.ReadTransaction, overlay first.
func (tx *writeTx) Get(key string) (json.RawMessage, bool, error) {
	if tx.deletes[key] {
		return nil, false, nil
	}
	if value, ok := tx.puts[key]; ok {
		return value, true, nil
	}
	return tx.base.Get(key)
}

// Scan implements types.ReadTransaction, merging the overlay into the
// snapshot.
func (tx *writeTx) Scan(prefix string) ([]types.ScanEntry, error) {
	merged := make(map[string]json.RawMessage)
	for key, value := range tx.base.entries {
		if strings.HasPrefix(key, prefix) && !tx.deletes[key] {
			merged[key] = value
		}
	}
	for key, value := range tx.puts {
		if strings.HasPrefix(key, prefix) {
			merged[key] = value
		}
	}

	scanned := make([]types.ScanEntry, 0, len(merged))
	for key, value := range merged {
		scanned = append(scanned, types.ScanEntry{Key: key, Value: value})
	}
	sort.Slice(scanned, func(i, j int) bool {
		return scanned[i].Key < scanned[j].Key
	})
	return scanned, nil
}

// Put implements types.WriteTransaction.
func (tx *writeTx) Put(key string, value json.RawMessage) error {
	delete(tx.deletes, key)
	tx.puts[key] = value
	return nil
}

// Delete implements types.WriteTransaction.
func (tx *writeTx) Delete(key string) (bool, error) {
	_, existed, err := tx.Get(key)
	if err != nil {
		return false, err
	}
	delete(tx.puts, key)
	tx.deletes[key] = true
	return existed, nil
}
