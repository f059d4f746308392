package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindylearn/library-store/pkg/types"
)

func TestMutateDispatch(t *testing.T) {
	tx := newMemTx()

	article := `{"id":"a1","url":"https://example.com","title":null,"word_count":100,"publication_date":null,"time_added":1600000000,"reading_progress":0,"is_favorite":false,"topic_id":null}`
	require.NoError(t, Mutate(tx, "putArticleIfNotExists", json.RawMessage(article)))

	stored, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", stored.URL)

	require.NoError(t, Mutate(tx, "deleteArticle", json.RawMessage(`"a1"`)))
	_, err = Articles.Get(tx, "a1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMutateUnknownName(t *testing.T) {
	tx := newMemTx()
	err := Mutate(tx, "renameArticle", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, types.ErrUnknownName)
}

func TestMutateMalformedArgs(t *testing.T) {
	tx := newMemTx()
	err := Mutate(tx, "articleSetFavorite", json.RawMessage(`"not an object"`))
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestMutateReplaySameResult(t *testing.T) {
	tx := newMemTx()
	args := json.RawMessage(`{"id":"a1","url":"https://example.com","title":null,"word_count":0,"publication_date":null,"time_added":1600000000,"reading_progress":0,"is_favorite":false,"topic_id":null}`)

	require.NoError(t, Mutate(tx, "putArticleIfNotExists", args))
	first, err := Articles.Get(tx, "a1")
	require.NoError(t, err)

	// Replaying the logged mutation leaves the stored record untouched.
	require.NoError(t, Mutate(tx, "putArticleIfNotExists", args))
	second, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
