package types

import "fmt"

// Topic is a named cluster assigned to articles. The topic graph is exactly
// two levels deep: a topic with a nil GroupID is a group root, and a topic
// with a non-nil GroupID is a child of that group.
type Topic struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Emoji *string `json:"emoji"`

	GroupID *string `json:"group_id"`
}

// EntityID implements Entity.
func (t *Topic) EntityID() string { return t.ID }

// Validate implements Entity.
func (t *Topic) Validate() error {
	if t.ID == "" {
		return ErrInvalidID
	}
	if t.Name == "" {
		return fmt.Errorf("%w: topic %s has empty name", ErrInvalidData, t.ID)
	}
	return nil
}
