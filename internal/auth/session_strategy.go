package auth

import "context"

// SessionStrategy authenticates a request from a previously-established
// session binding: the stored value of the session username key is itself
// sufficient proof of identity. The session store is inside the trust
// boundary (tamper-proof), so no further verification runs.
type SessionStrategy struct {
	sessionBinding
}

// NewSessionStrategy creates the session-continuity strategy.
func NewSessionStrategy() *SessionStrategy {
	return &SessionStrategy{}
}

// Scheme returns the strategy identifier.
func (s *SessionStrategy) Scheme() string { return "session" }

// Attempt reads the session username key.
//
// A missing key (or no session at all) is credential absence, letting the
// pipeline try the next strategy silently. A key that is present but empty is
// a stale binding and rejects.
func (s *SessionStrategy) Attempt(_ context.Context, req *Request) Result {
	if req.Session == nil {
		return Absent()
	}
	username, ok := req.Session.Get(SessionUsernameKey)
	if !ok {
		return Absent()
	}
	if username == "" {
		return Invalid()
	}
	return Valid(username)
}
