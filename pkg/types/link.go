package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ArticleLink type constants.
const (
	LinkTypeSimilarity = "sim"
)

// knownLinkTypes lists the link types that Validate accepts.
var knownLinkTypes = map[string]bool{
	LinkTypeSimilarity: true,
}

// ArticleLink is an undirected similarity edge between two articles. The id
// is a deterministic hash of the sorted endpoint pair plus the link type, so
// the same edge maps to one record regardless of the direction supplied by
// the caller.
type ArticleLink struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Score  *float64 `json:"score,omitempty"`
}

// EntityID implements Entity.
func (l *ArticleLink) EntityID() string { return l.ID }

// Validate implements Entity.
func (l *ArticleLink) Validate() error {
	if l.ID == "" {
		return ErrInvalidID
	}
	if l.Source == "" || l.Target == "" {
		return fmt.Errorf("%w: link %s missing endpoint", ErrInvalidData, l.ID)
	}
	if !knownLinkTypes[l.Type] {
		return fmt.Errorf("%w: link %s has unknown type %q", ErrInvalidData, l.ID, l.Type)
	}
	return nil
}

// LinkID computes the canonical id for the undirected edge between source
// and target with the given type. The endpoints are sorted first, so both
// directions produce the same id.
func LinkID(source, target, linkType string) string {
	a, b := source, target
	if b < a {
		a, b = b, a
	}
	sum := sha256.Sum256([]byte(a + "-" + b + "-" + linkType))
	return hex.EncodeToString(sum[:])
}
