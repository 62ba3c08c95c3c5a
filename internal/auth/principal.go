package auth

import "context"

// Principal is the resolved identity of an authenticated user.
//
// This struct is immutable after construction. It is loaded on demand per
// successful authentication and is not cached by the pipeline itself; caching,
// if any, belongs to the PrincipalStore implementation.
type Principal struct {
	// ID is the stable numeric identifier of the backing admin record.
	ID int64

	// Username is the unique, stable login name.
	Username string

	// Attributes is an open-ended key/value mapping consumed by downstream
	// authorization decisions.
	Attributes map[string]string
}

// PrincipalStore loads identity records for verified usernames.
//
// Implementations return ErrPrincipalNotFound (possibly wrapped) when no
// principal exists; the dispatcher treats any lookup error as equivalent to
// bad credentials so callers cannot enumerate usernames.
type PrincipalStore interface {
	Lookup(ctx context.Context, username string) (*Principal, error)
}

// CredentialVerifier checks a supplied username/password pair against stored
// credentials. A nil error means the pair verified; any error is a rejection.
//
// The credential store behind this interface is an external collaborator; the
// pipeline only consumes the boundary.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}
