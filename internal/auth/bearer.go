package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// BearerStrategy authenticates a JWT carried in an Authorization bearer
// header.
//
// Unlike the header-based basic strategy, a missing or non-bearer header is a
// hard failure for this strategy, not credential absence: the dispatcher still
// folds it into "try next", but the distinction keeps the strategy's own
// contract fail-closed.
type BearerStrategy struct {
	key        VerificationKey
	principals PrincipalStore
}

// NewBearerStrategy creates the JWT strategy with a static verification key
// and the principal store used to resolve the token subject.
func NewBearerStrategy(key VerificationKey, principals PrincipalStore) *BearerStrategy {
	return &BearerStrategy{key: key, principals: principals}
}

// Scheme returns the strategy identifier.
func (s *BearerStrategy) Scheme() string { return "bearer" }

// Attempt verifies the bearer token's signature and claims and resolves the
// embedded username to a stored principal.
//
// Only the HS256 and RS256 algorithm families are accepted; a token signed
// with any other algorithm rejects regardless of signature validity. A token
// whose username does not resolve rejects identically to a bad signature so
// responses cannot be used to enumerate usernames.
func (s *BearerStrategy) Attempt(ctx context.Context, req *Request) Result {
	header := req.Header.Get("Authorization")
	if header == "" {
		return Invalid()
	}

	scheme, token := splitAuthorizationHeader(header)
	if !strings.EqualFold(scheme, "bearer") || token == "" {
		return Invalid()
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, s.key.Resolve,
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodRS256.Alg(),
		})); err != nil {
		return Invalid()
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return Invalid()
	}

	if _, err := s.principals.Lookup(ctx, username); err != nil {
		return Invalid()
	}
	return Valid(username)
}

// OnSuccess is a no-op: bearer tokens are self-contained per-request proof
// and establish no session continuity.
func (s *BearerStrategy) OnSuccess(_ *Request, _ string) {}

// OnFailure is a no-op for the same reason.
func (s *BearerStrategy) OnFailure(_ *Request) {}
