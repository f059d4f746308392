package store

import (
	"encoding/json"
	"fmt"

	"github.com/lindylearn/library-store/pkg/types"
)

// Collection provides uniform CRUD operations for one entity type stored
// under a key prefix. Records are validated on every read and write; a
// malformed record is a hard error, never silently coerced.
//
// One Collection is instantiated per entity type at package init, which
// replaces hand-written per-entity get/list/put/update/delete boilerplate.
type Collection[T any, PT interface {
	*T
	types.Entity
}] struct {
	prefix string
}

// NewCollection returns a Collection for the given key prefix.
func NewCollection[T any, PT interface {
	*T
	types.Entity
}](prefix string) Collection[T, PT] {
	return Collection[T, PT]{prefix: prefix}
}

// Entity collections, one per replicated entity type.
var (
	Articles      = NewCollection[types.Article](types.PrefixArticles)
	Topics        = NewCollection[types.Topic](types.PrefixTopics)
	ArticleTexts  = NewCollection[types.ArticleText](types.PrefixArticleTexts)
	ArticleLinks  = NewCollection[types.ArticleLink](types.PrefixArticleLinks)
	Annotations   = NewCollection[types.Annotation](types.PrefixAnnotations)
	Subscriptions = NewCollection[types.FeedSubscription](types.PrefixSubscriptions)
)

// Key returns the store key for the entity with the given id.
func (c Collection[T, PT]) Key(id string) string {
	return c.prefix + id
}

// Get retrieves the entity with the given id.
// Returns ErrInvalidID for an empty id and ErrNotFound when absent.
func (c Collection[T, PT]) Get(tx types.ReadTransaction, id string) (PT, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	raw, ok, err := tx.Get(c.prefix + id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotFound
	}
	return c.decode(raw)
}

// List returns every entity in the collection, ordered by key.
func (c Collection[T, PT]) List(tx types.ReadTransaction) ([]PT, error) {
	entries, err := tx.Scan(c.prefix)
	if err != nil {
		return nil, err
	}
	result := make([]PT, 0, len(entries))
	for _, entry := range entries {
		e, err := c.decode(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", entry.Key, err)
		}
		result = append(result, e)
	}
	return result, nil
}

// Put creates or replaces an entity under its own id.
func (c Collection[T, PT]) Put(tx types.WriteTransaction, e PT) error {
	if e.EntityID() == "" {
		return types.ErrInvalidID
	}
	if err := e.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return tx.Put(c.prefix+e.EntityID(), raw)
}

// Update reads the entity, applies patch to it, and writes it back within
// the same transaction. Returns ErrNotFound when the entity is absent; the
// patched entity is re-validated before the write.
func (c Collection[T, PT]) Update(tx types.WriteTransaction, id string, patch func(PT)) error {
	e, err := c.Get(tx, id)
	if err != nil {
		return err
	}
	patch(e)
	return c.Put(tx, e)
}

// Delete removes the entity with the given id. The boolean reports whether
// the entity existed; deleting an absent entity is not an error.
func (c Collection[T, PT]) Delete(tx types.WriteTransaction, id string) (bool, error) {
	if id == "" {
		return false, types.ErrInvalidID
	}
	return tx.Delete(c.prefix + id)
}

func (c Collection[T, PT]) decode(raw json.RawMessage) (PT, error) {
	e := PT(new(T))
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
