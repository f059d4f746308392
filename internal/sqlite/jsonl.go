package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

// ExportJSONL writes every stored entry to path as one [key, value] tuple
// per line, atomically via temp file, fsync, and rename. The format round-
// trips through ImportJSONL and through the bulk entry import mutation on
// other clients.
func (b *Backend) ExportJSONL(path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrDetached
	}

	scanned, err := (&readTx{entries: b.entries}).Scan("")
	if err != nil {
		return err
	}
	records := make([]json.RawMessage, 0, len(scanned))
	for _, entry := range scanned {
		raw, err := json.Marshal(store.Entry{Key: entry.Key, Value: entry.Value})
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", entry.Key, err)
		}
		records = append(records, raw)
	}
	return writeJSONL(path, records)
}

// ImportJSONL loads [key, value] tuple lines from path and applies them as
// one bulk entry import mutation, so the load replicates like any other
// write.
func (b *Backend) ImportJSONL(path string) error {
	records, err := readJSONL(path)
	if err != nil {
		return err
	}

	entries := make([]store.Entry, 0, len(records))
	for _, record := range records {
		var entry store.Entry
		if err := json.Unmarshal(record, &entry); err != nil {
			return fmt.Errorf("decode entry line: %w", err)
		}
		entries = append(entries, entry)
	}

	args, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return b.Mutate("importEntries", args)
}

// readJSONL reads a JSONL file, returning each non-empty parseable line.
// Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records using the temp-file, fsync, rename
// pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
