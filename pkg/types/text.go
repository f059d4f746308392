package types

// ArticleText is the full parsed text of an article, keyed by the article
// id. It never exists without its Article; deleteArticle removes both.
type ArticleText struct {
	ID         string   `json:"id"`
	Title      *string  `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// EntityID implements Entity.
func (t *ArticleText) EntityID() string { return t.ID }

// Validate implements Entity.
func (t *ArticleText) Validate() error {
	if t.ID == "" {
		return ErrInvalidID
	}
	return nil
}
