// Package sqlite persists the replicated library store in a local SQLite
// database: one entries table holding every raw key/value pair, a mutation
// log awaiting push, and a meta table for the store version. All reads run
// against an in-memory copy of the entries; SQLite is the durable side.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

const dbFileName = "library.db"

const versionMetaKey = "version"

// Backend stores replicated entries in SQLite and serves reads from an
// in-memory map loaded on Attach.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	entries  map[string]json.RawMessage
	version  int64
}

// Mutation is one logged mutator invocation awaiting push to the
// replication server.
type Mutation struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	AppliedAt time.Time       `json:"applied_at"`
	Pushed    bool            `json:"pushed"`
}

// PatchOp is one authoritative write received from the replication server.
type PatchOp struct {
	Op    string          `json:"op"` // put or del
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Recognized patch operations.
const (
	OpPut    = "put"
	OpDelete = "del"
)

// NewBackend creates a detached backend; call Attach with a Config to open
// the database.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database under config.DataDir, creating the directory
// and schema when missing, and loads all entries into memory.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("init schema: %w", err)
	}

	entries, err := loadEntries(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("load entries: %w", err)
	}
	version, err := loadVersion(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("load version: %w", err)
	}

	b.db = db
	b.config = config
	b.entries = entries
	b.version = version
	b.attached = true
	return nil
}

// Detach closes the database. After Detach all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.entries = nil
	b.attached = false
	return nil
}

// Version returns the store version, bumped on every committed mutation and
// set by authoritative patches.
func (b *Backend) Version() (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrDetached
	}
	return b.version, nil
}

// Query runs fn against a consistent read snapshot. The snapshot stays
// stable for the duration of fn; fn must not retain the transaction.
func (b *Backend) Query(fn func(tx types.ReadTransaction) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrDetached
	}
	return fn(&readTx{entries: b.entries})
}

// Mutate applies one named mutator. The entry writes and the log record
// commit in a single SQL transaction, then the in-memory map is updated;
// a failed mutator leaves both untouched.
func (b *Backend) Mutate(name string, args json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	tx := newWriteTx(b.entries)
	if err := store.Mutate(tx, name, args); err != nil {
		return err
	}

	version := b.version + 1
	sqlTx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := commitOverlay(sqlTx, tx, version); err != nil {
		sqlTx.Rollback()
		return err
	}
	appliedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := sqlTx.Exec(
		`INSERT INTO mutations (name, args, applied_at, pushed) VALUES (?, ?, ?, 0)`,
		name, string(args), appliedAt,
	); err != nil {
		sqlTx.Rollback()
		return fmt.Errorf("log mutation: %w", err)
	}
	if err := saveVersion(sqlTx, version); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}

	b.applyOverlay(tx)
	b.version = version
	return nil
}

// ApplyPatch applies authoritative writes from the replication server and
// sets the store version. Patches bypass the mutation log: they are already
// durable remotely and must never be pushed back.
func (b *Backend) ApplyPatch(ops []PatchOp, version int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	tx := newWriteTx(b.entries)
	for _, op := range ops {
		switch op.Op {
		case OpPut:
			if err := tx.Put(op.Key, op.Value); err != nil {
				return err
			}
		case OpDelete:
			if _, err := tx.Delete(op.Key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: patch op %q", types.ErrInvalidData, op.Op)
		}
	}

	sqlTx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := commitOverlay(sqlTx, tx, version); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := saveVersion(sqlTx, version); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}

	b.applyOverlay(tx)
	b.version = version
	return nil
}

// PendingMutations returns the logged mutations not yet pushed, oldest
// first.
func (b *Backend) PendingMutations() ([]Mutation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query(
		`SELECT id, name, args, applied_at, pushed FROM mutations WHERE pushed = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []Mutation
	for rows.Next() {
		var m Mutation
		var args, appliedAt string
		var pushed int
		if err := rows.Scan(&m.ID, &m.Name, &args, &appliedAt, &pushed); err != nil {
			return nil, err
		}
		m.Args = json.RawMessage(args)
		m.Pushed = pushed != 0
		m.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, fmt.Errorf("parse applied_at of mutation %d: %w", m.ID, err)
		}
		pending = append(pending, m)
	}
	return pending, rows.Err()
}

// MarkPushed records that the replication server accepted a mutation.
func (b *Backend) MarkPushed(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	_, err := b.db.Exec(`UPDATE mutations SET pushed = 1 WHERE id = ?`, id)
	return err
}

// applyOverlay folds a committed write overlay into the in-memory map.
func (b *Backend) applyOverlay(tx *writeTx) {
	for key := range tx.deletes {
		delete(b.entries, key)
	}
	for key, value := range tx.puts {
		b.entries[key] = value
	}
}

// commitOverlay writes a transaction overlay to the entries table.
func commitOverlay(sqlTx *sql.Tx, tx *writeTx, version int64) error {
	for key := range tx.deletes {
		if _, err := sqlTx.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete entry %s: %w", key, err)
		}
	}
	for key, value := range tx.puts {
		if _, err := sqlTx.Exec(
			`INSERT INTO entries (key, value, version) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = excluded.version`,
			key, string(value), version,
		); err != nil {
			return fmt.Errorf("put entry %s: %w", key, err)
		}
	}
	return nil
}

func loadEntries(db *sql.DB) (map[string]json.RawMessage, error) {
	rows, err := db.Query(`SELECT key, value FROM entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		entries[key] = json.RawMessage(value)
	}
	return entries, rows.Err()
}

func loadVersion(db *sql.DB) (int64, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, versionMetaKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

func saveVersion(sqlTx *sql.Tx, version int64) error {
	_, err := sqlTx.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionMetaKey, strconv.FormatInt(version, 10),
	)
	if err != nil {
		return fmt.Errorf("save version: %w", err)
	}
	return nil
}
