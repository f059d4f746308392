package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lindylearn/library-store/pkg/types"
)

// StateFilter restricts article listings by reading state.
type StateFilter string

// Recognized state filters. The empty string behaves like StateAll.
const (
	StateAll      StateFilter = "all"
	StateUnread   StateFilter = "unread"
	StateRead     StateFilter = "read"
	StateFavorite StateFilter = "favorite"
)

/* ***** articles ***** */

// GetArticle retrieves one article by id.
func GetArticle(tx types.ReadTransaction, id string) (*types.Article, error) {
	return Articles.Get(tx, id)
}

// ListArticles returns every article.
func ListArticles(tx types.ReadTransaction) ([]*types.Article, error) {
	return Articles.List(tx)
}

// GetArticlesCount returns the number of saved articles.
func GetArticlesCount(tx types.ReadTransaction) (int, error) {
	articles, err := Articles.List(tx)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}

// GetArticleText retrieves the parsed text for one article.
func GetArticleText(tx types.ReadTransaction, id string) (*types.ArticleText, error) {
	return ArticleTexts.Get(tx, id)
}

// ListArticleTexts returns every stored article text.
func ListArticleTexts(tx types.ReadTransaction) ([]*types.ArticleText, error) {
	return ArticleTexts.List(tx)
}

// ListArticleLinks returns every similarity edge.
func ListArticleLinks(tx types.ReadTransaction) ([]*types.ArticleLink, error) {
	return ArticleLinks.List(tx)
}

// ListRecentArticles returns articles added at or after since (zero time
// means no limit), restricted by state and optionally by topic. Selecting a
// group topic resolves to the set of its children first. The result is
// sorted by recency position, newest first.
func ListRecentArticles(tx types.ReadTransaction, since time.Time, state StateFilter, topicID string) ([]*types.Article, error) {
	all, err := Articles.List(tx)
	if err != nil {
		return nil, err
	}

	var allowedTopics map[string]bool
	if topicID != "" {
		topic, err := Topics.Get(tx, topicID)
		if err != nil {
			return nil, err
		}
		if topic.GroupID != nil {
			// individual topic
			allowedTopics = map[string]bool{topicID: true}
		} else {
			// selected group
			children, err := GetGroupTopicChildren(tx, topicID)
			if err != nil {
				return nil, err
			}
			allowedTopics = make(map[string]bool, len(children))
			for _, child := range children {
				allowedTopics[child.ID] = true
			}
		}
	}

	var sinceSeconds int64
	if !since.IsZero() {
		sinceSeconds = since.Unix()
	}

	filtered := make([]*types.Article, 0, len(all))
	for _, a := range all {
		if a.TimeAdded < sinceSeconds {
			continue
		}
		if allowedTopics != nil && (a.TopicID == nil || !allowedTopics[*a.TopicID]) {
			continue
		}
		switch state {
		case StateUnread:
			if a.ReadingProgress >= types.ReadingProgressFullClamp {
				continue
			}
		case StateRead:
			if a.ReadingProgress < types.ReadingProgressFullClamp {
				continue
			}
		case StateFavorite:
			if !a.IsFavorite {
				continue
			}
		}
		filtered = append(filtered, a)
	}

	SortArticlesPosition(filtered, types.SortRecency)
	return filtered, nil
}

// ArticleBucket is one node of the grouped article listing: either a leaf
// with articles or a year with month children.
type ArticleBucket struct {
	Key      string           `json:"key"`
	Title    string           `json:"title"`
	Articles []*types.Article `json:"articles,omitempty"`
	Children []*ArticleBucket `json:"children,omitempty"`
}

// GroupRecentArticles buckets the recent article listing by time: the
// current and previous calendar week get their own buckets, everything else
// buckets by month, newest first. With aggregateYears the month buckets are
// nested under year buckets; the epoch-zero year 1970 is relabeled
// "Imported" and flattened to its first child's articles, so import
// artifacts with unknown timestamps never show up as current.
func GroupRecentArticles(tx types.ReadTransaction, since time.Time, state StateFilter, topicID string, aggregateYears bool) ([]*ArticleBucket, error) {
	recent, err := ListRecentArticles(tx, since, state, topicID)
	if err != nil {
		return nil, err
	}

	now := nowFunc().UTC()
	currentWeek := fmt.Sprintf("%d-99%d", now.Year(), weekNumber(now))
	lastWeek := fmt.Sprintf("%d-99%d", now.Year(), weekNumber(now)-1)

	buckets := make(map[string]*ArticleBucket)
	for _, article := range recent {
		date := time.Unix(article.TimeAdded, 0).UTC()
		week := fmt.Sprintf("%d-99%d", date.Year(), weekNumber(date))
		month := fmt.Sprintf("%d-%d", date.Year(), int(date.Month()))

		if week == currentWeek || week == lastWeek {
			bucket, ok := buckets[week]
			if !ok {
				title := "This week"
				if week == lastWeek {
					title = "Last week"
				}
				bucket = &ArticleBucket{Key: week, Title: title}
				buckets[week] = bucket
			}
			bucket.Articles = append(bucket.Articles, article)
		} else {
			bucket, ok := buckets[month]
			if !ok {
				bucket = &ArticleBucket{Key: month, Title: date.Month().String()}
				buckets[month] = bucket
			}
			bucket.Articles = append(bucket.Articles, article)
		}
	}

	// Newest first: week buckets carry a 99-prefixed suffix, so they sort
	// above the months of the same year.
	ordered := make([]*ArticleBucket, 0, len(buckets))
	for _, bucket := range buckets {
		ordered = append(ordered, bucket)
	}
	sort.Slice(ordered, func(i, j int) bool {
		yi, si := splitBucketKey(ordered[i].Key)
		yj, sj := splitBucketKey(ordered[j].Key)
		if yi != yj {
			return yi > yj
		}
		return si > sj
	})

	if !aggregateYears {
		return ordered, nil
	}

	var years []*ArticleBucket
	yearIndex := make(map[string]*ArticleBucket)
	for _, bucket := range ordered {
		year := strings.SplitN(bucket.Key, "-", 2)[0]
		yearBucket, ok := yearIndex[year]
		if !ok {
			yearBucket = &ArticleBucket{Key: year, Title: year}
			yearIndex[year] = yearBucket
			years = append(years, yearBucket)
		}
		yearBucket.Children = append(yearBucket.Children, bucket)
	}

	if imported, ok := yearIndex["1970"]; ok {
		imported.Title = "Imported"
		imported.Articles = imported.Children[0].Articles
		imported.Children = nil
	}
	return years, nil
}

func splitBucketKey(key string) (year, suffix int) {
	parts := strings.SplitN(key, "-", 2)
	year, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		suffix, _ = strconv.Atoi(parts[1])
	}
	return year, suffix
}

// ListFavoriteArticles returns favorited articles by favorites position,
// most recently favorited first.
func ListFavoriteArticles(tx types.ReadTransaction) ([]*types.Article, error) {
	all, err := Articles.List(tx)
	if err != nil {
		return nil, err
	}
	favorites := make([]*types.Article, 0, len(all))
	for _, a := range all {
		if a.IsFavorite {
			favorites = append(favorites, a)
		}
	}
	SortArticlesPosition(favorites, types.SortFavorites)
	return favorites, nil
}

// ListQueueArticles returns queued articles in queue order.
func ListQueueArticles(tx types.ReadTransaction) ([]*types.Article, error) {
	all, err := Articles.List(tx)
	if err != nil {
		return nil, err
	}
	queued := make([]*types.Article, 0, len(all))
	for _, a := range all {
		if a.IsQueued {
			queued = append(queued, a)
		}
	}
	SortArticlesPosition(queued, types.SortQueue)
	return queued, nil
}

// ListTopicArticles returns the articles assigned to one topic, in topic
// order. An empty topic id returns nil.
func ListTopicArticles(tx types.ReadTransaction, topicID string) ([]*types.Article, error) {
	if topicID == "" {
		return nil, nil
	}
	all, err := Articles.List(tx)
	if err != nil {
		return nil, err
	}
	var articles []*types.Article
	for _, a := range all {
		if a.TopicID != nil && *a.TopicID == topicID {
			articles = append(articles, a)
		}
	}
	SortArticlesPosition(articles, types.SortTopic)
	return articles, nil
}

// GetTopicArticlesCount returns the number of articles assigned to a topic.
func GetTopicArticlesCount(tx types.ReadTransaction, topicID string) (int, error) {
	articles, err := ListTopicArticles(tx, topicID)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}

// SafeArticleSortPosition resolves the named sort position with the
// time_added fallback: an unset field, or a value below 1000 left over from
// index-based positioning, resolves to time_added*1000. All sorting must
// funnel through this function rather than reading the raw field.
func SafeArticleSortPosition(a *types.Article, f types.SortField) float64 {
	pos := a.SortPosition(f)
	// no manual position
	if pos == nil {
		return float64(a.TimeAdded) * 1000
	}
	// uses old index positioning
	if *pos < 1000 {
		return float64(a.TimeAdded) * 1000
	}
	// valid time-based position
	return *pos
}

// SortArticlesPosition sorts articles in place by the named sort position,
// highest first.
func SortArticlesPosition(articles []*types.Article, f types.SortField) {
	sort.SliceStable(articles, func(i, j int) bool {
		return SafeArticleSortPosition(articles[i], f) > SafeArticleSortPosition(articles[j], f)
	})
}

// ReadingProgress aggregates completion over a set of articles.
type ReadingProgress struct {
	ArticleCount   int `json:"articleCount"`
	CompletedCount int `json:"completedCount"`
}

// GetReadingProgress reports how many articles were added and completed.
// With a topic id it covers that topic; otherwise it covers the articles
// added within the last three calendar weeks, counted from week start.
func GetReadingProgress(tx types.ReadTransaction, topicID string) (ReadingProgress, error) {
	var articles []*types.Article
	var err error
	if topicID != "" {
		articles, err = ListTopicArticles(tx, topicID)
	} else {
		start := subtractWeeks(weekStart(nowFunc()), 3)
		articles, err = ListRecentArticles(tx, start, StateAll, "")
	}
	if err != nil {
		return ReadingProgress{}, err
	}

	progress := ReadingProgress{ArticleCount: len(articles)}
	for _, a := range articles {
		if a.ReadingProgress >= types.ReadingProgressFullClamp {
			progress.CompletedCount++
		}
	}
	return progress, nil
}

/* ***** topics ***** */

// GetTopic retrieves one topic by id.
func GetTopic(tx types.ReadTransaction, id string) (*types.Topic, error) {
	return Topics.Get(tx, id)
}

// ListTopics returns every topic.
func ListTopics(tx types.ReadTransaction) ([]*types.Topic, error) {
	return Topics.List(tx)
}

// GetTopicIDMap returns all topics keyed by id.
func GetTopicIDMap(tx types.ReadTransaction) (map[string]*types.Topic, error) {
	all, err := Topics.List(tx)
	if err != nil {
		return nil, err
	}
	idMap := make(map[string]*types.Topic, len(all))
	for _, topic := range all {
		idMap[topic.ID] = topic
	}
	return idMap, nil
}

// TopicGroup is a group-root topic together with its children.
type TopicGroup struct {
	GroupTopic *types.Topic   `json:"groupTopic"`
	Children   []*types.Topic `json:"children"`
}

// GroupTopics partitions all topics into group roots and children, attaches
// each group's children sorted by numeric id, drops empty groups, and
// orders groups by descending child count.
func GroupTopics(tx types.ReadTransaction) ([]TopicGroup, error) {
	all, err := Topics.List(tx)
	if err != nil {
		return nil, err
	}

	var roots []*types.Topic
	children := make(map[string][]*types.Topic)
	for _, topic := range all {
		if topic.GroupID == nil {
			roots = append(roots, topic)
			continue
		}
		children[*topic.GroupID] = append(children[*topic.GroupID], topic)
	}

	groups := make([]TopicGroup, 0, len(roots))
	for _, root := range roots {
		group := TopicGroup{GroupTopic: root, Children: children[root.ID]}
		if len(group.Children) == 0 {
			continue
		}
		sort.SliceStable(group.Children, func(i, j int) bool {
			return numericID(group.Children[i].ID) < numericID(group.Children[j].ID)
		})
		groups = append(groups, group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Children) > len(groups[j].Children)
	})
	return groups, nil
}

// GetGroupTopicChildren returns the children of a group topic, sorted by
// numeric id.
func GetGroupTopicChildren(tx types.ReadTransaction, topicID string) ([]*types.Topic, error) {
	all, err := Topics.List(tx)
	if err != nil {
		return nil, err
	}
	var children []*types.Topic
	for _, topic := range all {
		if topic.GroupID != nil && *topic.GroupID == topicID {
			children = append(children, topic)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return numericID(children[i].ID) < numericID(children[j].ID)
	})
	return children, nil
}

// numericID parses the leading integer of a topic id; non-numeric ids sort
// first.
func numericID(id string) int {
	end := 0
	for end < len(id) && id[end] >= '0' && id[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, _ := strconv.Atoi(id[:end])
	return n
}

/* ***** annotations ***** */

// ListAnnotations returns every annotation.
func ListAnnotations(tx types.ReadTransaction) ([]*types.Annotation, error) {
	return Annotations.List(tx)
}

// ListArticleAnnotations returns the annotations of one article, oldest
// first.
func ListArticleAnnotations(tx types.ReadTransaction, articleID string) ([]*types.Annotation, error) {
	all, err := Annotations.List(tx)
	if err != nil {
		return nil, err
	}
	var annotations []*types.Annotation
	for _, a := range all {
		if a.ArticleID == articleID {
			annotations = append(annotations, a)
		}
	}
	sort.SliceStable(annotations, func(i, j int) bool {
		return annotations[i].CreatedAt < annotations[j].CreatedAt
	})
	return annotations, nil
}

/* ***** feed subscriptions ***** */

// GetFeedSubscription retrieves one subscription by id (the feed URL).
func GetFeedSubscription(tx types.ReadTransaction, id string) (*types.FeedSubscription, error) {
	return Subscriptions.Get(tx, id)
}

// ListFeedSubscriptions returns all subscriptions, newest first.
func ListFeedSubscriptions(tx types.ReadTransaction) ([]*types.FeedSubscription, error) {
	all, err := Subscriptions.List(tx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TimeAdded > all[j].TimeAdded
	})
	return all, nil
}

/* ***** partialSyncState ***** */

// GetPartialSyncState returns the secondary-index sync cursor, or nil when
// it has never been written.
func GetPartialSyncState(tx types.ReadTransaction) (*types.PartialSyncState, error) {
	raw, ok, err := tx.Get(types.PartialSyncStateKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var state types.PartialSyncState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

/* ***** settings ***** */

// GetSettings returns the settings singleton, or the zero value when it has
// never been written.
func GetSettings(tx types.ReadTransaction) (types.Settings, error) {
	raw, ok, err := tx.Get(types.SettingsKey)
	if err != nil || !ok {
		return types.Settings{}, err
	}
	var settings types.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return types.Settings{}, fmt.Errorf("%w: malformed settings: %v", types.ErrInvalidData, err)
	}
	return settings, nil
}

/* ***** userInfo ***** */

// GetUserInfo returns the user info singleton, or nil when signed out.
func GetUserInfo(tx types.ReadTransaction) (*types.UserInfo, error) {
	raw, ok, err := tx.Get(types.UserInfoKey)
	if err != nil || !ok {
		return nil, err
	}
	var info types.UserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("%w: malformed user info: %v", types.ErrInvalidData, err)
	}
	return &info, nil
}
