package auth

import (
	"context"
	"encoding/json"
)

// FormStrategy authenticates a username/password pair carried as a JSON
// object in the request body, the shape a login form posts.
type FormStrategy struct {
	sessionBinding
	verifier CredentialVerifier
}

// NewFormStrategy creates the form-post strategy backed by the given
// credential check.
func NewFormStrategy(verifier CredentialVerifier) *FormStrategy {
	return &FormStrategy{verifier: verifier}
}

// Scheme returns the strategy identifier.
func (s *FormStrategy) Scheme() string { return "form" }

type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Attempt parses the buffered body as a JSON credential object and verifies
// the embedded pair.
//
// A zero-length body is treated as an empty JSON object: the empty pair still
// reaches verification and rejects there, it is not skipped. Unparseable
// bodies reject outright.
func (s *FormStrategy) Attempt(ctx context.Context, req *Request) Result {
	var form loginForm
	if len(req.Body) > 0 {
		if err := json.Unmarshal(req.Body, &form); err != nil {
			return Invalid()
		}
	}

	if err := s.verifier.Verify(ctx, form.Username, form.Password); err != nil {
		return Invalid()
	}
	return Valid(form.Username)
}
