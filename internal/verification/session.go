package verification

import "time"

// State is a verification session's position in the identity flow.
type State string

const (
	StateAwaitName    State = "await_name"
	StateAwaitAccount State = "await_account"
	StateAwaitLast4   State = "await_last4"
	StateAwaitDOB     State = "await_dob"
	StateVerified     State = "verified"
	StateLocked       State = "locked"
)

// Terminal reports whether no further verification attempts can occur.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateLocked
}

// Session is the mutable per-conversation verification state. It is owned by
// exactly one conversation and persisted between messages by a SessionStore.
type Session struct {
	ConversationID string `json:"conversation_id"`
	State          State  `json:"state"`

	CandidateName    string `json:"candidate_name,omitempty"`
	CandidateAccount string `json:"candidate_account,omitempty"`
	CandidateLast4   string `json:"candidate_last4,omitempty"`
	CandidateDOB     string `json:"candidate_dob,omitempty"`

	AttemptCount int `json:"attempt_count"`

	// MatchedName is the normalized directory key set on successful
	// verification; the record itself is re-resolved through the directory.
	MatchedName string `json:"matched_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session awaiting the caller's name.
func NewSession(conversationID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ConversationID: conversationID,
		State:          StateAwaitName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Verified reports whether account-specific handling may run.
func (s *Session) Verified() bool {
	return s.State == StateVerified
}

// Locked reports whether the session has exhausted its retries.
func (s *Session) Locked() bool {
	return s.State == StateLocked
}
