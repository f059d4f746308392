package store

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lindylearn/library-store/pkg/types"
)

// memTx is a map-backed transaction for exercising accessors and mutators
// against one in-memory snapshot.
type memTx struct {
	entries map[string]json.RawMessage
}

func newMemTx() *memTx {
	return &memTx{entries: make(map[string]json.RawMessage)}
}

func (m *memTx) Get(key string) (json.RawMessage, bool, error) {
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *memTx) Scan(prefix string) ([]types.ScanEntry, error) {
	var result []types.ScanEntry
	for key, value := range m.entries {
		if strings.HasPrefix(key, prefix) {
			result = append(result, types.ScanEntry{Key: key, Value: value})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *memTx) Put(key string, value json.RawMessage) error {
	m.entries[key] = value
	return nil
}

func (m *memTx) Delete(key string) (bool, error) {
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

// spyTx counts Put calls per key on top of a memTx, to verify which writes
// a mutator actually emits.
type spyTx struct {
	*memTx
	puts map[string]int
}

func newSpyTx(base *memTx) *spyTx {
	return &spyTx{memTx: base, puts: make(map[string]int)}
}

func (s *spyTx) Put(key string, value json.RawMessage) error {
	s.puts[key]++
	return s.memTx.Put(key, value)
}

// pinTime overrides the store clock for the duration of the test.
func pinTime(t *testing.T, now time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func testArticle(id string, timeAdded time.Time) *types.Article {
	return &types.Article{
		ID:        id,
		URL:       "https://example.com/" + id,
		TimeAdded: timeAdded.Unix(),
	}
}

func putArticle(t *testing.T, tx types.WriteTransaction, a *types.Article) {
	t.Helper()
	require.NoError(t, Articles.Put(tx, a))
}

func putTopic(t *testing.T, tx types.WriteTransaction, id, name string, groupID *string) {
	t.Helper()
	require.NoError(t, Topics.Put(tx, &types.Topic{ID: id, Name: name, GroupID: groupID}))
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }
