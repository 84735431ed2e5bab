package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StateVersion is the current session_data schema version.
const StateVersion = 1

// State is the versioned record serialized into the sessions.session_data
// column. Known fields only; the authenticated user id recorded here is
// authoritative for the session.
type State struct {
	Version  int        `json:"v"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	IssuedAt int64      `json:"issued_at,omitempty"`
}

// Authenticated reports whether the state carries a signed-in user.
func (s State) Authenticated() bool {
	return s.UserID != nil
}

// SetUser records the authenticated identity and stamp time.
func (s *State) SetUser(id uuid.UUID, now time.Time) {
	s.Version = StateVersion
	s.UserID = &id
	s.IssuedAt = now.Unix()
}

// encodeState serializes state for storage.
func encodeState(s State) (string, error) {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeState parses a stored blob. A malformed blob reports ok=false and the
// session is treated as a miss. A blob from a future schema version decodes
// into an empty current-version state rather than failing: old rows are
// migrated by overwrite on the next store.
func decodeState(blob string) (State, bool) {
	var s State
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return State{}, false
	}
	if s.Version > StateVersion {
		return State{Version: StateVersion}, true
	}
	return s, true
}
