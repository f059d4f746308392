package types

import (
	"encoding/json"
	"fmt"
)

// Annotation is a highlight or comment anchored to a quote in an article.
// QuoteSelector carries the opaque anchoring data used by the rendering
// layer; the store does not interpret it.
type Annotation struct {
	ID            string          `json:"id"`
	ArticleID     string          `json:"article_id"`
	QuoteText     string          `json:"quote_text,omitempty"`
	QuoteSelector json.RawMessage `json:"quote_html_selector,omitempty"`
	CreatedAt     int64           `json:"created_at"` // unix seconds, 0 for missing value
	UpdatedAt     int64           `json:"updated_at,omitempty"`

	Text       string   `json:"text,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsFavorite bool     `json:"is_favorite,omitempty"`

	AICreated bool     `json:"ai_created,omitempty"`
	AIScore   *float64 `json:"ai_score,omitempty"`
	RemoteID  string   `json:"h_id,omitempty"` // id on the external highlights service, if synced
}

// EntityID implements Entity.
func (a *Annotation) EntityID() string { return a.ID }

// Validate implements Entity.
func (a *Annotation) Validate() error {
	if a.ID == "" {
		return ErrInvalidID
	}
	if a.ArticleID == "" {
		return fmt.Errorf("%w: annotation %s has empty article_id", ErrInvalidData, a.ID)
	}
	return nil
}

// AnnotationUpdate is a field-level merge patch for one annotation.
type AnnotationUpdate struct {
	ID string `json:"id"`

	Text       *string   `json:"text,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	IsFavorite *bool     `json:"is_favorite,omitempty"`
	UpdatedAt  *int64    `json:"updated_at,omitempty"`
	RemoteID   *string   `json:"h_id,omitempty"`
}

// Apply overlays the patch onto a. Unset fields persist.
func (u AnnotationUpdate) Apply(a *Annotation) {
	if u.Text != nil {
		a.Text = *u.Text
	}
	if u.Tags != nil {
		a.Tags = *u.Tags
	}
	if u.IsFavorite != nil {
		a.IsFavorite = *u.IsFavorite
	}
	if u.UpdatedAt != nil {
		a.UpdatedAt = *u.UpdatedAt
	}
	if u.RemoteID != nil {
		a.RemoteID = *u.RemoteID
	}
}
