package auth

import "context"

// RequestContext is the per-request mutable binding point for the
// authentication outcome. It is created at request start, mutated at most
// once by the Authenticator, and discarded at request end. Exactly one
// RequestContext exists per in-flight request; it is never shared across
// requests and sees no concurrent mutation within one request.
type RequestContext struct {
	// Username is the bound login name, or "" when unauthenticated.
	Username string

	// PrincipalID is the bound numeric principal id; meaningless unless
	// Authenticated is true.
	PrincipalID int64

	// Authenticated reports whether an identity is bound.
	Authenticated bool

	// AuthRequired records whether the target operation demands
	// authentication before it executes.
	AuthRequired bool
}

// Bind writes the resolved identity into the context.
func (rc *RequestContext) Bind(p *Principal) {
	rc.Username = p.Username
	rc.PrincipalID = p.ID
	rc.Authenticated = true
}

// Reset explicitly nulls the identity fields. It is idempotent, so no prior
// attempt's partial state can leak into a request reusing the same context
// object.
func (rc *RequestContext) Reset() {
	rc.Username = ""
	rc.PrincipalID = 0
	rc.Authenticated = false
}

type requestContextKey struct{}

// WithRequestContext stores the per-request binding point on the context.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom retrieves the per-request binding point, or nil when the
// request never entered the pipeline.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

type principalContextKey struct{}

// WithPrincipal stores the resolved principal on the context for downstream
// handlers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFrom retrieves the resolved principal from the context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok
}
