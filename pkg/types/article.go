package types

import "fmt"

// ReadingProgressFullClamp is the progress threshold at which an article
// counts as read. Progress reporting clamps at this value rather than
// requiring an exact 1.0.
const ReadingProgressFullClamp = 0.95

// Article is a saved web page. Sort position fields hold millisecond-scale
// floats used purely for list ordering; a nil position falls back to
// time_added*1000 (see SafeSortPosition).
type Article struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	Title           *string `json:"title"`
	WordCount       int     `json:"word_count"` // 0 for unparsed text
	PublicationDate *string `json:"publication_date"`

	TimeAdded       int64   `json:"time_added"` // unix seconds, 0 for missing value
	ReadingProgress float64 `json:"reading_progress"`
	IsFavorite      bool    `json:"is_favorite"`
	IsQueued        bool    `json:"is_queued,omitempty"`

	IsTemporary bool `json:"is_temporary,omitempty"` // not saved
	IsNew       bool `json:"is_new,omitempty"`       // added via feed subscription

	TopicID *string `json:"topic_id"`

	QueueSortPosition     *float64 `json:"queue_sort_position,omitempty"`
	RecencySortPosition   *float64 `json:"recency_sort_position,omitempty"`
	TopicSortPosition     *float64 `json:"topic_sort_position,omitempty"`
	DomainSortPosition    *float64 `json:"domain_sort_position,omitempty"`
	FavoritesSortPosition *float64 `json:"favorites_sort_position,omitempty"`

	AnnotationCount int    `json:"annotation_count,omitempty"` // set when querying
	Description     string `json:"description,omitempty"`      // set for non-library feed articles
}

// EntityID implements Entity.
func (a *Article) EntityID() string { return a.ID }

// Validate implements Entity.
func (a *Article) Validate() error {
	if a.ID == "" {
		return ErrInvalidID
	}
	if a.URL == "" {
		return fmt.Errorf("%w: article %s has empty url", ErrInvalidData, a.ID)
	}
	if a.ReadingProgress < 0 || a.ReadingProgress > 1 {
		return fmt.Errorf("%w: article %s reading_progress %v outside [0,1]",
			ErrInvalidData, a.ID, a.ReadingProgress)
	}
	if a.TimeAdded < 0 {
		return fmt.Errorf("%w: article %s negative time_added", ErrInvalidData, a.ID)
	}
	return nil
}

// SortField names one of the independent article sort position fields.
type SortField string

// Article sort position fields.
const (
	SortQueue     SortField = "queue_sort_position"
	SortRecency   SortField = "recency_sort_position"
	SortTopic     SortField = "topic_sort_position"
	SortDomain    SortField = "domain_sort_position"
	SortFavorites SortField = "favorites_sort_position"
)

// Valid reports whether f names a known sort position field.
func (f SortField) Valid() bool {
	switch f {
	case SortQueue, SortRecency, SortTopic, SortDomain, SortFavorites:
		return true
	}
	return false
}

// SortPosition returns the raw value of the named sort position field, or
// nil when the field is unset. Callers that sort must resolve nil through
// the time_added fallback instead of reading this directly.
func (a *Article) SortPosition(f SortField) *float64 {
	switch f {
	case SortQueue:
		return a.QueueSortPosition
	case SortRecency:
		return a.RecencySortPosition
	case SortTopic:
		return a.TopicSortPosition
	case SortDomain:
		return a.DomainSortPosition
	case SortFavorites:
		return a.FavoritesSortPosition
	}
	return nil
}

// SetSortPosition assigns the named sort position field.
func (a *Article) SetSortPosition(f SortField, v *float64) {
	switch f {
	case SortQueue:
		a.QueueSortPosition = v
	case SortRecency:
		a.RecencySortPosition = v
	case SortTopic:
		a.TopicSortPosition = v
	case SortDomain:
		a.DomainSortPosition = v
	case SortFavorites:
		a.FavoritesSortPosition = v
	}
}

// ArticleUpdate is a field-level merge patch for one article. Nil fields are
// left unchanged; ClearFavoritesSortPosition expresses an explicit write of
// null to favorites_sort_position, which removes the article from manual
// favorites ordering.
type ArticleUpdate struct {
	ID string `json:"id"`

	Title           *string  `json:"title,omitempty"`
	ReadingProgress *float64 `json:"reading_progress,omitempty"`
	IsFavorite      *bool    `json:"is_favorite,omitempty"`
	IsQueued        *bool    `json:"is_queued,omitempty"`
	TopicID         *string  `json:"topic_id,omitempty"`

	QueueSortPosition     *float64 `json:"queue_sort_position,omitempty"`
	RecencySortPosition   *float64 `json:"recency_sort_position,omitempty"`
	TopicSortPosition     *float64 `json:"topic_sort_position,omitempty"`
	DomainSortPosition    *float64 `json:"domain_sort_position,omitempty"`
	FavoritesSortPosition *float64 `json:"favorites_sort_position,omitempty"`

	ClearFavoritesSortPosition bool `json:"clear_favorites_sort_position,omitempty"`
}

// Apply overlays the patch onto a. Unset fields persist.
func (u ArticleUpdate) Apply(a *Article) {
	if u.Title != nil {
		a.Title = u.Title
	}
	if u.ReadingProgress != nil {
		a.ReadingProgress = *u.ReadingProgress
	}
	if u.IsFavorite != nil {
		a.IsFavorite = *u.IsFavorite
	}
	if u.IsQueued != nil {
		a.IsQueued = *u.IsQueued
	}
	if u.TopicID != nil {
		a.TopicID = u.TopicID
	}
	if u.QueueSortPosition != nil {
		a.QueueSortPosition = u.QueueSortPosition
	}
	if u.RecencySortPosition != nil {
		a.RecencySortPosition = u.RecencySortPosition
	}
	if u.TopicSortPosition != nil {
		a.TopicSortPosition = u.TopicSortPosition
	}
	if u.DomainSortPosition != nil {
		a.DomainSortPosition = u.DomainSortPosition
	}
	if u.FavoritesSortPosition != nil {
		a.FavoritesSortPosition = u.FavoritesSortPosition
	}
	if u.ClearFavoritesSortPosition {
		a.FavoritesSortPosition = nil
	}
}
