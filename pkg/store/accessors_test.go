package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindylearn/library-store/pkg/types"
)

// testNow is a Wednesday in ISO week 24 of 2022. Grouping and progress
// tests pin the clock here.
var testNow = time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)

func TestSafeArticleSortPosition(t *testing.T) {
	article := testArticle("a1", time.Unix(1600000000, 0))

	t.Run("unset field falls back to time_added", func(t *testing.T) {
		assert.Equal(t, float64(1600000000)*1000, SafeArticleSortPosition(article, types.SortRecency))
	})

	t.Run("legacy index position falls back to time_added", func(t *testing.T) {
		article.RecencySortPosition = floatPtr(42)
		assert.Equal(t, float64(1600000000)*1000, SafeArticleSortPosition(article, types.SortRecency))
	})

	t.Run("time-scale position returned verbatim", func(t *testing.T) {
		article.RecencySortPosition = floatPtr(1650000000123)
		assert.Equal(t, 1650000000123.0, SafeArticleSortPosition(article, types.SortRecency))
	})

	t.Run("boundary value 1000 is kept", func(t *testing.T) {
		article.RecencySortPosition = floatPtr(1000)
		assert.Equal(t, 1000.0, SafeArticleSortPosition(article, types.SortRecency))
	})
}

func TestListRecentArticles(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	old := testArticle("old", testNow.AddDate(0, -3, 0))
	fresh := testArticle("fresh", testNow.AddDate(0, 0, -1))
	read := testArticle("read", testNow.AddDate(0, 0, -2))
	read.ReadingProgress = 0.97
	favorite := testArticle("favorite", testNow.AddDate(0, 0, -3))
	favorite.IsFavorite = true
	for _, a := range []*types.Article{old, fresh, read, favorite} {
		putArticle(t, tx, a)
	}

	t.Run("since filters by time added", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, testNow.AddDate(0, -1, 0), StateAll, "")
		require.NoError(t, err)
		assert.Len(t, articles, 3)
		for _, a := range articles {
			assert.NotEqual(t, "old", a.ID)
		}
	})

	t.Run("zero since includes everything", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateAll, "")
		require.NoError(t, err)
		assert.Len(t, articles, 4)
	})

	t.Run("unread excludes completed articles", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateUnread, "")
		require.NoError(t, err)
		for _, a := range articles {
			assert.Less(t, a.ReadingProgress, types.ReadingProgressFullClamp)
		}
		assert.Len(t, articles, 3)
	})

	t.Run("read keeps only completed articles", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateRead, "")
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "read", articles[0].ID)
	})

	t.Run("favorite keeps only favorites", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateFavorite, "")
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "favorite", articles[0].ID)
	})

	t.Run("sorted by recency, newest first", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateAll, "")
		require.NoError(t, err)
		for i := 1; i < len(articles); i++ {
			prev := SafeArticleSortPosition(articles[i-1], types.SortRecency)
			cur := SafeArticleSortPosition(articles[i], types.SortRecency)
			assert.GreaterOrEqual(t, prev, cur)
		}
	})
}

func TestListRecentArticlesTopicResolution(t *testing.T) {
	tx := newMemTx()
	putTopic(t, tx, "10", "Programming", nil)
	putTopic(t, tx, "11", "Go", strPtr("10"))
	putTopic(t, tx, "12", "Rust", strPtr("10"))
	putTopic(t, tx, "20", "History", strPtr("21"))

	goArticle := testArticle("go", time.Unix(1600000000, 0))
	goArticle.TopicID = strPtr("11")
	rustArticle := testArticle("rust", time.Unix(1600000100, 0))
	rustArticle.TopicID = strPtr("12")
	historyArticle := testArticle("history", time.Unix(1600000200, 0))
	historyArticle.TopicID = strPtr("20")
	unassigned := testArticle("none", time.Unix(1600000300, 0))
	for _, a := range []*types.Article{goArticle, rustArticle, historyArticle, unassigned} {
		putArticle(t, tx, a)
	}

	t.Run("individual topic selects itself", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateAll, "11")
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "go", articles[0].ID)
	})

	t.Run("group topic resolves to its children", func(t *testing.T) {
		articles, err := ListRecentArticles(tx, time.Time{}, StateAll, "10")
		require.NoError(t, err)
		require.Len(t, articles, 2)
		ids := []string{articles[0].ID, articles[1].ID}
		assert.ElementsMatch(t, []string{"go", "rust"}, ids)
	})

	t.Run("unknown topic is an error", func(t *testing.T) {
		_, err := ListRecentArticles(tx, time.Time{}, StateAll, "missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestGroupRecentArticles(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	thisWeek := testArticle("thisweek", testNow.AddDate(0, 0, -1))
	threeWeeksAgo := testArticle("threeweeks", testNow.AddDate(0, 0, -21))
	imported := testArticle("imported", time.Unix(0, 0))
	for _, a := range []*types.Article{thisWeek, threeWeeksAgo, imported} {
		putArticle(t, tx, a)
	}

	buckets, err := GroupRecentArticles(tx, time.Time{}, StateAll, "", true)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	year2022 := buckets[0]
	assert.Equal(t, "2022", year2022.Title)
	require.Len(t, year2022.Children, 2)

	// Week bucket sorts above month buckets of the same year.
	assert.Equal(t, "This week", year2022.Children[0].Title)
	require.Len(t, year2022.Children[0].Articles, 1)
	assert.Equal(t, "thisweek", year2022.Children[0].Articles[0].ID)

	// A three-week-old article lands in its month, not in This/Last week.
	assert.Equal(t, "May", year2022.Children[1].Title)
	require.Len(t, year2022.Children[1].Articles, 1)
	assert.Equal(t, "threeweeks", year2022.Children[1].Articles[0].ID)

	// Epoch-zero articles are relabeled Imported and flattened.
	importedBucket := buckets[1]
	assert.Equal(t, "Imported", importedBucket.Title)
	assert.Nil(t, importedBucket.Children)
	require.Len(t, importedBucket.Articles, 1)
	assert.Equal(t, "imported", importedBucket.Articles[0].ID)
}

func TestGroupRecentArticlesFlat(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()
	putArticle(t, tx, testArticle("a", testNow.AddDate(0, 0, -30)))
	putArticle(t, tx, testArticle("b", testNow.AddDate(0, 0, -1)))

	buckets, err := GroupRecentArticles(tx, time.Time{}, StateAll, "", false)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "This week", buckets[0].Title)
	assert.Equal(t, "May", buckets[1].Title)
}

func TestListQueueAndFavorites(t *testing.T) {
	tx := newMemTx()

	queued := testArticle("queued", time.Unix(1600000000, 0))
	queued.IsQueued = true
	queued.QueueSortPosition = floatPtr(1600001000000)
	queuedLater := testArticle("queued2", time.Unix(1600000100, 0))
	queuedLater.IsQueued = true
	queuedLater.QueueSortPosition = floatPtr(1600002000000)
	favorite := testArticle("fav", time.Unix(1600000200, 0))
	favorite.IsFavorite = true
	favorite.FavoritesSortPosition = floatPtr(1600003000000)
	plain := testArticle("plain", time.Unix(1600000300, 0))
	for _, a := range []*types.Article{queued, queuedLater, favorite, plain} {
		putArticle(t, tx, a)
	}

	queue, err := ListQueueArticles(tx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "queued2", queue[0].ID)
	assert.Equal(t, "queued", queue[1].ID)

	favorites, err := ListFavoriteArticles(tx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "fav", favorites[0].ID)
}

func TestGetReadingProgress(t *testing.T) {
	pinTime(t, testNow)
	tx := newMemTx()

	// Five articles within the last three calendar weeks, two completed.
	for i, progress := range []float64{0.1, 0.5, 0.95, 1.0, 0.0} {
		a := testArticle(string(rune('a'+i)), testNow.AddDate(0, 0, -i))
		a.ReadingProgress = progress
		putArticle(t, tx, a)
	}
	// Outside the window, completed; must not count.
	outside := testArticle("outside", testNow.AddDate(0, -2, 0))
	outside.ReadingProgress = 1.0
	putArticle(t, tx, outside)

	progress, err := GetReadingProgress(tx, "")
	require.NoError(t, err)
	assert.Equal(t, ReadingProgress{ArticleCount: 5, CompletedCount: 2}, progress)
}

func TestGetReadingProgressForTopic(t *testing.T) {
	tx := newMemTx()
	putTopic(t, tx, "1", "Reading", strPtr("9"))

	assigned := testArticle("in", time.Unix(1600000000, 0))
	assigned.TopicID = strPtr("1")
	assigned.ReadingProgress = 1.0
	other := testArticle("out", time.Unix(1600000000, 0))
	putArticle(t, tx, assigned)
	putArticle(t, tx, other)

	progress, err := GetReadingProgress(tx, "1")
	require.NoError(t, err)
	assert.Equal(t, ReadingProgress{ArticleCount: 1, CompletedCount: 1}, progress)
}

func TestGroupTopics(t *testing.T) {
	tx := newMemTx()
	putTopic(t, tx, "100", "Tech", nil)
	putTopic(t, tx, "200", "Life", nil)
	putTopic(t, tx, "300", "Empty", nil)
	putTopic(t, tx, "11", "Go", strPtr("100"))
	putTopic(t, tx, "2", "Rust", strPtr("100"))
	putTopic(t, tx, "33", "Cooking", strPtr("200"))

	groups, err := GroupTopics(tx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Largest group first, empty groups dropped.
	assert.Equal(t, "Tech", groups[0].GroupTopic.Name)
	assert.Equal(t, "Life", groups[1].GroupTopic.Name)

	// Children sorted by numeric id, not lexicographically.
	require.Len(t, groups[0].Children, 2)
	assert.Equal(t, "2", groups[0].Children[0].ID)
	assert.Equal(t, "11", groups[0].Children[1].ID)
}

func TestSingletonDefaults(t *testing.T) {
	tx := newMemTx()

	settings, err := GetSettings(tx)
	require.NoError(t, err)
	assert.Equal(t, types.Settings{}, settings)

	info, err := GetUserInfo(tx)
	require.NoError(t, err)
	assert.Nil(t, info)

	state, err := GetPartialSyncState(tx)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestGetPartialSyncState(t *testing.T) {
	tx := newMemTx()
	require.NoError(t, SetPartialSyncState(tx, types.PartialSyncState{MinVersion: 1, MaxVersion: 5, EndKey: "text/x"}))

	state, err := GetPartialSyncState(tx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.False(t, state.Complete)
	assert.Equal(t, int64(5), state.MaxVersion)

	require.NoError(t, SetPartialSyncState(tx, types.PartialSyncComplete))
	state, err = GetPartialSyncState(tx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Complete)
}
