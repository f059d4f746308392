package types

import (
	"encoding/json"
	"fmt"
)

// partialSyncComplete is the literal JSON value stored when the secondary
// index has caught up with the primary replicated log.
const partialSyncComplete = "PARTIAL_SYNC_COMPLETE"

// PartialSyncState tracks a secondary index's lag behind the primary
// replicated log. It is either an in-progress cursor or the completion
// sentinel; on the wire the sentinel is the bare string
// "PARTIAL_SYNC_COMPLETE" and the cursor is an object.
type PartialSyncState struct {
	Complete bool `json:"-"`

	// Cursor fields, meaningful only when Complete is false. Full-text
	// entries may lag behind the article version.
	MinVersion int64  `json:"minVersion"`
	MaxVersion int64  `json:"maxVersion"`
	EndKey     string `json:"endKey"`
}

// PartialSyncComplete is the completion sentinel value.
var PartialSyncComplete = PartialSyncState{Complete: true}

// MarshalJSON encodes the completion sentinel as a bare string and the
// cursor as an object.
func (s PartialSyncState) MarshalJSON() ([]byte, error) {
	if s.Complete {
		return json.Marshal(partialSyncComplete)
	}
	type cursor PartialSyncState
	return json.Marshal(cursor(s))
}

// UnmarshalJSON accepts either the completion sentinel string or a cursor
// object. Anything else is rejected.
func (s *PartialSyncState) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		if sentinel != partialSyncComplete {
			return fmt.Errorf("%w: unexpected sync state %q", ErrInvalidData, sentinel)
		}
		*s = PartialSyncState{Complete: true}
		return nil
	}

	type cursor PartialSyncState
	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("%w: malformed partial sync state: %v", ErrInvalidData, err)
	}
	*s = PartialSyncState(c)
	s.Complete = false
	return nil
}
