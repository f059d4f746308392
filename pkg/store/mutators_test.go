package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindylearn/library-store/pkg/types"
)

func TestPutArticleIfNotExists(t *testing.T) {
	tx := newMemTx()

	first := testArticle("a1", time.Unix(1600000000, 0))
	require.NoError(t, PutArticleIfNotExists(tx, first))

	stored, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	require.NotNil(t, stored.RecencySortPosition)
	require.NotNil(t, stored.TopicSortPosition)
	assert.Equal(t, float64(1600000000)*1000, *stored.RecencySortPosition)
	assert.Equal(t, float64(1600000000)*1000, *stored.TopicSortPosition)

	// Second insert with the same id changes nothing observable.
	stored.RecencySortPosition = floatPtr(1700000000000)
	require.NoError(t, Articles.Put(tx, stored))

	duplicate := testArticle("a1", time.Unix(1650000000, 0))
	require.NoError(t, PutArticleIfNotExists(tx, duplicate))

	after, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000), after.TimeAdded)
	assert.Equal(t, 1700000000000.0, *after.RecencySortPosition)
}

func TestImportArticles(t *testing.T) {
	tx := newMemTx()
	args := ImportArticlesArgs{Articles: []*types.Article{
		testArticle("a1", time.Unix(1600000000, 0)),
		testArticle("a2", time.Unix(1600000100, 0)),
	}}
	require.NoError(t, ImportArticles(tx, args))
	require.NoError(t, ImportArticles(tx, args))

	count, err := GetArticlesCount(tx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteArticleCascade(t *testing.T) {
	tx := newMemTx()
	putArticle(t, tx, testArticle("a1", time.Unix(1600000000, 0)))
	require.NoError(t, ArticleTexts.Put(tx, &types.ArticleText{ID: "a1", Paragraphs: []string{"hello"}}))

	require.NoError(t, DeleteArticle(tx, "a1"))

	_, err := Articles.Get(tx, "a1")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = ArticleTexts.Get(tx, "a1")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Second delete is a safe no-op.
	require.NoError(t, DeleteArticle(tx, "a1"))
}

func TestImportArticleLinksUndirected(t *testing.T) {
	tx := newMemTx()

	forward := ImportArticleLinksArgs{Links: []*types.ArticleLink{
		{Source: "a", Target: "b", Type: types.LinkTypeSimilarity},
	}}
	reverse := ImportArticleLinksArgs{Links: []*types.ArticleLink{
		{Source: "b", Target: "a", Type: types.LinkTypeSimilarity},
	}}
	require.NoError(t, ImportArticleLinks(tx, forward))
	require.NoError(t, ImportArticleLinks(tx, reverse))

	links, err := ListArticleLinks(tx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, types.LinkID("a", "b", types.LinkTypeSimilarity), links[0].ID)
}

func TestArticleSetFavorite(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()
	putArticle(t, tx, testArticle("a1", time.Unix(1600000000, 0)))

	require.NoError(t, ArticleSetFavorite(tx, SetFavoriteArgs{ID: "a1", IsFavorite: true}))
	stored, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.True(t, stored.IsFavorite)
	require.NotNil(t, stored.FavoritesSortPosition)
	assert.Equal(t, float64(testNow.UnixMilli()), *stored.FavoritesSortPosition)

	require.NoError(t, ArticleSetFavorite(tx, SetFavoriteArgs{ID: "a1", IsFavorite: false}))
	stored, err = Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.False(t, stored.IsFavorite)
	assert.Nil(t, stored.FavoritesSortPosition)

	// Missing article fails soft.
	require.NoError(t, ArticleSetFavorite(tx, SetFavoriteArgs{ID: "missing", IsFavorite: true}))
}

func TestArticleTrackOpened(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()
	putArticle(t, tx, testArticle("a1", time.Unix(1600000000, 0)))

	require.NoError(t, ArticleTrackOpened(tx, "a1"))

	stored, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	now := float64(testNow.UnixMilli())
	for _, f := range []types.SortField{types.SortRecency, types.SortTopic, types.SortDomain} {
		require.NotNil(t, stored.SortPosition(f), string(f))
		assert.Equal(t, now, *stored.SortPosition(f), string(f))
	}

	// Missing article fails soft.
	require.NoError(t, ArticleTrackOpened(tx, "missing"))
}

func TestUpdateAllTopics(t *testing.T) {
	base := newMemTx()
	putTopic(t, base, "1", "Old", strPtr("9"))

	unchanged := testArticle("x", time.Unix(1600000000, 0))
	unchanged.TopicID = strPtr("A")
	changed := testArticle("y", time.Unix(1600000100, 0))
	changed.TopicID = strPtr("A")
	putArticle(t, base, unchanged)
	putArticle(t, base, changed)

	tx := newSpyTx(base)
	err := UpdateAllTopics(tx, UpdateAllTopicsArgs{
		NewTopics: []*types.Topic{
			{ID: "A", Name: "Kept", GroupID: strPtr("g")},
			{ID: "B", Name: "Fresh", GroupID: strPtr("g")},
		},
		ArticleTopics: map[string]string{
			"x":       "A", // same value: no write
			"y":       "B", // real change: one write
			"missing": "B", // unresolvable: skipped
		},
	})
	require.NoError(t, err)

	// Diff-and-skip: the unchanged article got no update mutation.
	assert.Equal(t, 0, tx.puts[types.PrefixArticles+"x"])
	assert.Equal(t, 1, tx.puts[types.PrefixArticles+"y"])
	assert.Equal(t, 0, tx.puts[types.PrefixArticles+"missing"])

	stored, err := Articles.Get(base, "y")
	require.NoError(t, err)
	require.NotNil(t, stored.TopicID)
	assert.Equal(t, "B", *stored.TopicID)

	// Old topics replaced by the new set.
	topics, err := ListTopics(base)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	_, err = Topics.Get(base, "1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateAllTopicsSkipDelete(t *testing.T) {
	tx := newMemTx()
	putTopic(t, tx, "1", "Old", strPtr("9"))

	err := UpdateAllTopics(tx, UpdateAllTopicsArgs{
		NewTopics:        []*types.Topic{{ID: "2", Name: "New", GroupID: strPtr("9")}},
		ArticleTopics:    map[string]string{},
		SkipTopicsDelete: true,
	})
	require.NoError(t, err)

	topics, err := ListTopics(tx)
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestMoveArticlePosition(t *testing.T) {
	setup := func(t *testing.T) *memTx {
		tx := newMemTx()
		for id, pos := range map[string]float64{"first": 30000, "second": 20000, "third": 10000} {
			a := testArticle(id, time.Unix(1600000000, 0))
			a.QueueSortPosition = floatPtr(pos)
			putArticle(t, tx, a)
		}
		putArticle(t, tx, testArticle("moved", time.Unix(1600000000, 0)))
		return tx
	}

	t.Run("between two neighbors takes the midpoint", func(t *testing.T) {
		tx := setup(t)
		err := MoveArticlePosition(tx, MovePositionArgs{
			ArticleID: "moved", BeforeID: "first", AfterID: "second",
			SortField: types.SortQueue,
		})
		require.NoError(t, err)
		stored, err := Articles.Get(tx, "moved")
		require.NoError(t, err)
		require.NotNil(t, stored.QueueSortPosition)
		got := *stored.QueueSortPosition
		assert.Equal(t, 25000.0, got)
		assert.Greater(t, got, 20000.0)
		assert.Less(t, got, 30000.0)
	})

	t.Run("only a before neighbor synthesizes the lower bound", func(t *testing.T) {
		tx := setup(t)
		err := MoveArticlePosition(tx, MovePositionArgs{
			ArticleID: "moved", BeforeID: "third",
			SortField: types.SortQueue,
		})
		require.NoError(t, err)
		stored, err := Articles.Get(tx, "moved")
		require.NoError(t, err)
		// Bound synthesized at 10000-1000, midpoint below the neighbor.
		assert.Equal(t, 9500.0, *stored.QueueSortPosition)
	})

	t.Run("only an after neighbor synthesizes the upper bound", func(t *testing.T) {
		tx := setup(t)
		err := MoveArticlePosition(tx, MovePositionArgs{
			ArticleID: "moved", AfterID: "first",
			SortField: types.SortQueue,
		})
		require.NoError(t, err)
		stored, err := Articles.Get(tx, "moved")
		require.NoError(t, err)
		// Bound synthesized at 30000+1000, midpoint above the neighbor.
		assert.Equal(t, 30500.0, *stored.QueueSortPosition)
	})

	t.Run("missing target is a no-op", func(t *testing.T) {
		tx := setup(t)
		spy := newSpyTx(tx)
		err := MoveArticlePosition(spy, MovePositionArgs{
			ArticleID: "ghost", BeforeID: "first",
			SortField: types.SortQueue,
		})
		require.NoError(t, err)
		assert.Empty(t, spy.puts)
	})

	t.Run("both neighbors missing is a no-op", func(t *testing.T) {
		tx := setup(t)
		spy := newSpyTx(tx)
		err := MoveArticlePosition(spy, MovePositionArgs{
			ArticleID: "moved",
			SortField: types.SortQueue,
		})
		require.NoError(t, err)
		assert.Empty(t, spy.puts)
	})

	t.Run("unknown sort field is rejected", func(t *testing.T) {
		tx := setup(t)
		err := MoveArticlePosition(tx, MovePositionArgs{
			ArticleID: "moved", BeforeID: "first",
			SortField: types.SortField("word_count"),
		})
		assert.ErrorIs(t, err, types.ErrInvalidSort)
	})
}

func TestArticleAddMoveToQueue(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	head := testArticle("head", time.Unix(1600000000, 0))
	head.IsQueued = true
	head.QueueSortPosition = floatPtr(20000)
	putArticle(t, tx, head)
	putArticle(t, tx, testArticle("a1", time.Unix(1600000000, 0)))

	err := ArticleAddMoveToQueue(tx, AddMoveToQueueArgs{
		ArticleID: "a1", IsQueued: true, AfterID: "head",
		SortField: types.SortQueue,
	})
	require.NoError(t, err)

	stored, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.True(t, stored.IsQueued)
	require.NotNil(t, stored.QueueSortPosition)
	// Position moved above the existing queue head in the same mutation.
	assert.Equal(t, 20500.0, *stored.QueueSortPosition)
}

func TestUpdateSettingsMergePatch(t *testing.T) {
	tx := newMemTx()

	stage := 1
	require.NoError(t, UpdateSettings(tx, types.Settings{TutorialStage: &stage}))
	seen := 4
	require.NoError(t, UpdateSettings(tx, types.Settings{SeenSettingsVersion: &seen}))

	settings, err := GetSettings(tx)
	require.NoError(t, err)
	require.NotNil(t, settings.TutorialStage)
	assert.Equal(t, 1, *settings.TutorialStage)
	require.NotNil(t, settings.SeenSettingsVersion)
	assert.Equal(t, 4, *settings.SeenSettingsVersion)
}

func TestUpdateUserInfoMergePatch(t *testing.T) {
	tx := newMemTx()

	require.NoError(t, UpdateUserInfo(tx, types.UserInfoPatch{ID: strPtr("u1"), Email: strPtr("u@example.com")}))
	enabled := true
	require.NoError(t, UpdateUserInfo(tx, types.UserInfoPatch{AIEnabled: &enabled}))

	info, err := GetUserInfo(tx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "u1", info.ID)
	assert.Equal(t, "u@example.com", info.Email)
	assert.True(t, info.AIEnabled)
}

func TestImportEntries(t *testing.T) {
	tx := newMemTx()

	// Entries arrive as [key, value] tuples on the wire.
	var entries []Entry
	raw := `[["articles/a1", {"id":"a1","url":"https://example.com","title":null,"word_count":0,"publication_date":null,"time_added":1600000000,"reading_progress":0,"is_favorite":false,"topic_id":null}], ["settings", {"tutorial_stage":2}]]`
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "articles/a1", entries[0].Key)

	require.NoError(t, ImportEntries(tx, entries))

	article, err := Articles.Get(tx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", article.URL)

	settings, err := GetSettings(tx)
	require.NoError(t, err)
	require.NotNil(t, settings.TutorialStage)
	assert.Equal(t, 2, *settings.TutorialStage)
}

func TestAnnotationLifecycle(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	annotation := &types.Annotation{ArticleID: "a1", QuoteText: "a quote"}
	require.NoError(t, PutAnnotation(tx, annotation))
	assert.NotEmpty(t, annotation.ID)
	assert.Equal(t, testNow.Unix(), annotation.CreatedAt)

	require.NoError(t, UpdateAnnotation(tx, types.AnnotationUpdate{
		ID:   annotation.ID,
		Text: strPtr("my note"),
	}))
	stored, err := Annotations.Get(tx, annotation.ID)
	require.NoError(t, err)
	assert.Equal(t, "my note", stored.Text)
	assert.Equal(t, testNow.Unix(), stored.UpdatedAt)

	annotations, err := ListArticleAnnotations(tx, "a1")
	require.NoError(t, err)
	assert.Len(t, annotations, 1)

	require.NoError(t, DeleteAnnotation(tx, annotation.ID))
	require.NoError(t, DeleteAnnotation(tx, annotation.ID))
	_, err = Annotations.Get(tx, annotation.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFeedSubscriptionLifecycle(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	subscription := &types.FeedSubscription{
		RSSURL: "https://example.com/feed.xml",
		Link:   "https://example.com",
		Domain: "example.com",
	}
	require.NoError(t, PutFeedSubscription(tx, subscription))
	assert.Equal(t, subscription.RSSURL, subscription.ID)
	assert.Equal(t, testNow.Unix(), subscription.TimeAdded)

	require.NoError(t, SetFeedSubscribed(tx, SetSubscribedArgs{ID: subscription.ID, IsSubscribed: true}))
	stored, err := GetFeedSubscription(tx, subscription.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSubscribed)

	require.NoError(t, DeleteFeedSubscription(tx, subscription.ID))
	_, err = GetFeedSubscription(tx, subscription.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
