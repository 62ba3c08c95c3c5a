package auth

import (
	"context"
	"encoding/base64"
	"strings"
)

// BasicStrategy authenticates a username/password pair carried in an RFC 7617
// HTTP Basic Authorization header.
type BasicStrategy struct {
	sessionBinding
	verifier CredentialVerifier
}

// NewBasicStrategy creates the HTTP Basic strategy backed by the given
// credential check.
func NewBasicStrategy(verifier CredentialVerifier) *BasicStrategy {
	return &BasicStrategy{verifier: verifier}
}

// Scheme returns the strategy identifier.
func (s *BasicStrategy) Scheme() string { return "basic" }

// Attempt parses the Authorization header and verifies the embedded pair.
//
// A missing header, or a header carrying some other scheme, is credential
// absence: the header belongs to a different strategy and must not trigger
// this one's failure hook. A "basic" header with a malformed payload yields
// empty credential fields and is left to verification to reject.
func (s *BasicStrategy) Attempt(ctx context.Context, req *Request) Result {
	header := req.Header.Get("Authorization")
	if header == "" {
		return Absent()
	}

	scheme, payload := splitAuthorizationHeader(header)
	if !strings.EqualFold(scheme, "basic") {
		return Absent()
	}

	cred := parseBasicPayload(payload)
	if err := s.verifier.Verify(ctx, cred.Username, cred.Password); err != nil {
		return Invalid()
	}
	return Valid(cred.Username)
}

// parseBasicPayload decodes a base64 "username:password" payload. Malformed
// input returns an empty Credential rather than an error; the empty pair
// fails verification downstream.
func parseBasicPayload(payload string) Credential {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Credential{}
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credential{}
	}
	return Credential{Username: username, Password: password}
}
