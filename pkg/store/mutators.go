package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/lindylearn/library-store/pkg/types"
)

// newUUID generates a UUID v7 string for entities created without an id.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// PutArticleIfNotExists inserts an article unless one with the same id is
// already stored, seeding the recency and topic sort positions from
// time_added. The existence check runs inside the same transaction, which
// makes bulk import idempotent under retries and duplicate delivery.
func PutArticleIfNotExists(tx types.WriteTransaction, article *types.Article) error {
	_, err := Articles.Get(tx, article.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return err
	}

	// use time as sort position
	recency := float64(article.TimeAdded) * 1000
	topic := recency
	article.RecencySortPosition = &recency
	article.TopicSortPosition = &topic

	return Articles.Put(tx, article)
}

// UpdateArticle applies a field-level merge patch to one article. A missing
// article is a no-op: the replication layer may redeliver the patch after
// the article exists.
func UpdateArticle(tx types.WriteTransaction, update types.ArticleUpdate) error {
	err := Articles.Update(tx, update.ID, func(a *types.Article) {
		update.Apply(a)
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// ImportArticlesArgs carries a batch article import.
type ImportArticlesArgs struct {
	Articles []*types.Article `json:"articles"`
}

// ImportArticles inserts many articles in one mutation, so a bulk import
// produces one replicated log entry instead of one per article. Existing
// ids are skipped.
func ImportArticles(tx types.WriteTransaction, args ImportArticlesArgs) error {
	for _, article := range args.Articles {
		if err := PutArticleIfNotExists(tx, article); err != nil {
			return err
		}
	}
	return nil
}

// ImportArticleTextsArgs carries a batch article text import.
type ImportArticleTextsArgs struct {
	ArticleTexts []*types.ArticleText `json:"article_texts"`
}

// ImportArticleTexts stores many parsed texts in one mutation.
func ImportArticleTexts(tx types.WriteTransaction, args ImportArticleTextsArgs) error {
	for _, text := range args.ArticleTexts {
		if err := ArticleTexts.Put(tx, text); err != nil {
			return err
		}
	}
	return nil
}

// ImportArticleLinksArgs carries a batch similarity edge import.
type ImportArticleLinksArgs struct {
	Links []*types.ArticleLink `json:"links"`
}

// ImportArticleLinks stores similarity edges, assigning each link the
// canonical undirected id. One entry serves both directions, so importing
// the reversed edge overwrites the same record instead of duplicating it.
func ImportArticleLinks(tx types.WriteTransaction, args ImportArticleLinksArgs) error {
	for _, link := range args.Links {
		link.ID = types.LinkID(link.Source, link.Target, link.Type)
		if err := ArticleLinks.Put(tx, link); err != nil {
			return err
		}
	}
	return nil
}

// DeleteArticle removes an article together with its parsed text; the two
// never exist independently. Deleting an absent article is a no-op.
func DeleteArticle(tx types.WriteTransaction, articleID string) error {
	if _, err := Articles.Delete(tx, articleID); err != nil {
		return err
	}
	_, err := ArticleTexts.Delete(tx, articleID)
	return err
}

// SetFavoriteArgs names an article and the favorite flag to apply.
type SetFavoriteArgs struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
}

// ArticleSetFavorite toggles the favorite flag. Favoriting stamps the
// favorites position with the current time so the article sorts first;
// unfavoriting clears the position, removing the article from manual
// favorites ordering.
func ArticleSetFavorite(tx types.WriteTransaction, args SetFavoriteArgs) error {
	err := Articles.Update(tx, args.ID, func(a *types.Article) {
		a.IsFavorite = args.IsFavorite
		if args.IsFavorite {
			position := nowMillis()
			a.FavoritesSortPosition = &position
		} else {
			a.FavoritesSortPosition = nil
		}
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// ArticleTrackOpened bumps the recency, topic, and domain positions to the
// current time in one update: the article was just visited, atomically
// across every time-based ranking it participates in.
func ArticleTrackOpened(tx types.WriteTransaction, articleID string) error {
	now := nowMillis()
	err := Articles.Update(tx, articleID, func(a *types.Article) {
		recency, topic, domain := now, now, now
		a.RecencySortPosition = &recency
		a.TopicSortPosition = &topic
		a.DomainSortPosition = &domain
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// PutTopic creates or replaces one topic.
func PutTopic(tx types.WriteTransaction, topic *types.Topic) error {
	return Topics.Put(tx, topic)
}

// UpdateAllTopicsArgs carries a full clustering recompute: the replacement
// topic set and the topic assignment per affected article.
type UpdateAllTopicsArgs struct {
	NewTopics        []*types.Topic    `json:"newTopics"`
	ArticleTopics    map[string]string `json:"articleTopics"`
	SkipTopicsDelete bool              `json:"skip_topics_delete,omitempty"`
}

// UpdateAllTopics replaces the topic set and reassigns article topics.
// Existing topics are deleted first unless skipped. Each affected article
// is read before writing, and an update is emitted only when the stored
// topic_id actually differs, which avoids redundant replicated writes and
// never clobbers a concurrent manual change with a no-op value. An article
// missing at diff time is skipped: there is no safe update target.
func UpdateAllTopics(tx types.WriteTransaction, args UpdateAllTopicsArgs) error {
	// replace existing topic entries
	if !args.SkipTopicsDelete {
		existing, err := Topics.List(tx)
		if err != nil {
			return err
		}
		for _, topic := range existing {
			if _, err := Topics.Delete(tx, topic.ID); err != nil {
				return err
			}
		}
	}
	for _, topic := range args.NewTopics {
		if err := Topics.Put(tx, topic); err != nil {
			return err
		}
	}

	// update article topic ids, in deterministic order for replay
	articleIDs := make([]string, 0, len(args.ArticleTopics))
	for articleID := range args.ArticleTopics {
		articleIDs = append(articleIDs, articleID)
	}
	sort.Strings(articleIDs)

	for _, articleID := range articleIDs {
		topicID := args.ArticleTopics[articleID]
		existing, err := Articles.Get(tx, articleID)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if existing.TopicID != nil && *existing.TopicID == topicID {
			continue
		}
		assigned := topicID
		err = Articles.Update(tx, articleID, func(a *types.Article) {
			a.TopicID = &assigned
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MovePositionArgs names the article to move, its new neighbors in the
// visible list, and the sort field the list is ordered by.
type MovePositionArgs struct {
	ArticleID string          `json:"articleId"`
	BeforeID  string          `json:"articleIdBeforeNewPosition,omitempty"`
	AfterID   string          `json:"articleIdAfterNewPosition,omitempty"`
	SortField types.SortField `json:"sortPosition"`
}

// MoveArticlePosition assigns a fractional-index position: the midpoint of
// the two neighbors' resolved positions. A missing bound is synthesized by
// offsetting 1000 from the known one rather than collapsing to zero or to
// the current time, which would break ordering relative to siblings outside
// the visible slice. When the moved article or both neighbors cannot be
// resolved, nothing changes and no error is returned; the mutation may be
// redelivered once the articles exist.
func MoveArticlePosition(tx types.WriteTransaction, args MovePositionArgs) error {
	if !args.SortField.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidSort, args.SortField)
	}

	active := getOrNil(tx, args.ArticleID)
	before := getOrNil(tx, args.BeforeID)
	after := getOrNil(tx, args.AfterID)
	if active == nil || (before == nil && after == nil) {
		return nil
	}

	// highest positions first
	var upperBound, lowerBound float64
	if before != nil {
		upperBound = SafeArticleSortPosition(before, args.SortField)
	}
	if after != nil {
		lowerBound = SafeArticleSortPosition(after, args.SortField)
	}
	if upperBound == 0 {
		upperBound = lowerBound + 1000
	} else if lowerBound == 0 {
		lowerBound = upperBound - 1000
	}

	// creates ever-finer floats between neighbors
	position := (lowerBound + upperBound) / 2

	return Articles.Update(tx, args.ArticleID, func(a *types.Article) {
		a.SetSortPosition(args.SortField, &position)
	})
}

// getOrNil resolves an article id leniently: empty ids and missing
// articles are nil. Other read errors surface as hard failures elsewhere
// when the record is actually required.
func getOrNil(tx types.ReadTransaction, id string) *types.Article {
	if id == "" {
		return nil
	}
	article, err := Articles.Get(tx, id)
	if err != nil {
		return nil
	}
	return article
}

// AddMoveToQueueArgs combines a queue flag change with a position move.
type AddMoveToQueueArgs struct {
	ArticleID string          `json:"articleId"`
	IsQueued  bool            `json:"isQueued"`
	BeforeID  string          `json:"articleIdBeforeNewPosition,omitempty"`
	AfterID   string          `json:"articleIdAfterNewPosition,omitempty"`
	SortField types.SortField `json:"sortPosition"`
}

// ArticleAddMoveToQueue sets the queue flag and moves the article into
// place as one mutation, so a queued-but-unordered intermediate state is
// never separately observable.
func ArticleAddMoveToQueue(tx types.WriteTransaction, args AddMoveToQueueArgs) error {
	position := nowMillis()
	err := Articles.Update(tx, args.ArticleID, func(a *types.Article) {
		a.IsQueued = args.IsQueued
		a.QueueSortPosition = &position
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return MoveArticlePosition(tx, MovePositionArgs{
		ArticleID: args.ArticleID,
		BeforeID:  args.BeforeID,
		AfterID:   args.AfterID,
		SortField: args.SortField,
	})
}

// UpdateSettings merge-patches the settings singleton. Read, merge, and
// write happen inside one transaction, so unspecified fields persist across
// partial updates.
func UpdateSettings(tx types.WriteTransaction, patch types.Settings) error {
	saved, err := GetSettings(tx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(saved.Merge(patch))
	if err != nil {
		return err
	}
	return tx.Put(types.SettingsKey, raw)
}

// UpdateUserInfo merge-patches the user info singleton.
func UpdateUserInfo(tx types.WriteTransaction, patch types.UserInfoPatch) error {
	saved, err := GetUserInfo(tx)
	if err != nil {
		return err
	}
	var info types.UserInfo
	if saved != nil {
		info = *saved
	}
	raw, err := json.Marshal(info.Merge(patch))
	if err != nil {
		return err
	}
	return tx.Put(types.UserInfoKey, raw)
}

// Entry is one raw key/value pair of an opaque bulk import. On the wire it
// is a [key, value] tuple.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// MarshalJSON encodes the entry as a [key, value] tuple.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]json.RawMessage{mustMarshalString(e.Key), e.Value})
}

// UnmarshalJSON decodes a [key, value] tuple.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("%w: entry is not a tuple: %v", types.ErrInvalidData, err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("%w: entry tuple has %d elements", types.ErrInvalidData, len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &e.Key); err != nil {
		return fmt.Errorf("%w: entry key: %v", types.ErrInvalidData, err)
	}
	e.Value = tuple[1]
	return nil
}

func mustMarshalString(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// ImportEntries bulk-loads raw key/value pairs, bypassing schema-specific
// mutators. Used for opaque migration data.
func ImportEntries(tx types.WriteTransaction, entries []Entry) error {
	for _, entry := range entries {
		if entry.Key == "" {
			return fmt.Errorf("%w: entry with empty key", types.ErrInvalidData)
		}
		if err := tx.Put(entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

// SetPartialSyncState records the secondary-index sync cursor.
func SetPartialSyncState(tx types.WriteTransaction, state types.PartialSyncState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return tx.Put(types.PartialSyncStateKey, raw)
}

/* ***** annotations ***** */

// PutAnnotation creates or replaces an annotation, generating an id and
// creation timestamp when absent.
func PutAnnotation(tx types.WriteTransaction, annotation *types.Annotation) error {
	if annotation.ID == "" {
		annotation.ID = newUUID()
	}
	if annotation.CreatedAt == 0 {
		annotation.CreatedAt = nowFunc().Unix()
	}
	return Annotations.Put(tx, annotation)
}

// UpdateAnnotation applies a field-level merge patch to one annotation,
// stamping updated_at unless the patch carries its own. Missing annotations
// are a no-op.
func UpdateAnnotation(tx types.WriteTransaction, update types.AnnotationUpdate) error {
	err := Annotations.Update(tx, update.ID, func(a *types.Annotation) {
		update.Apply(a)
		if update.UpdatedAt == nil {
			a.UpdatedAt = nowFunc().Unix()
		}
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteAnnotation removes one annotation; absent ids are a no-op.
func DeleteAnnotation(tx types.WriteTransaction, annotationID string) error {
	_, err := Annotations.Delete(tx, annotationID)
	return err
}

/* ***** feed subscriptions ***** */

// PutFeedSubscription creates or replaces a subscription. The id equals the
// feed URL, so re-subscribing converges on one record.
func PutFeedSubscription(tx types.WriteTransaction, subscription *types.FeedSubscription) error {
	if subscription.ID == "" {
		subscription.ID = subscription.RSSURL
	}
	if subscription.TimeAdded == 0 {
		subscription.TimeAdded = nowFunc().Unix()
	}
	return Subscriptions.Put(tx, subscription)
}

// SetSubscribedArgs names a subscription and the flag to apply.
type SetSubscribedArgs struct {
	ID           string `json:"id"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// SetFeedSubscribed toggles the subscribed flag; missing subscriptions are
// a no-op.
func SetFeedSubscribed(tx types.WriteTransaction, args SetSubscribedArgs) error {
	err := Subscriptions.Update(tx, args.ID, func(f *types.FeedSubscription) {
		f.IsSubscribed = args.IsSubscribed
	})
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteFeedSubscription removes one subscription; absent ids are a no-op.
func DeleteFeedSubscription(tx types.WriteTransaction, subscriptionID string) error {
	_, err := Subscriptions.Delete(tx, subscriptionID)
	return err
}
