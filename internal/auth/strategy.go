package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/corralworks/corral/internal/session"
)

// Session keys written by the authentication pipeline.
//
// The username key carries cross-request login continuity (a successful
// username/password login binds the username so the session strategy can
// authenticate subsequent requests). The principal-id key is the parallel
// identity binding written by the dispatcher after principal resolution.
const (
	SessionUsernameKey    = "auth.username"
	SessionPrincipalIDKey = "auth.principal_id"
)

// maxCredentialBodyBytes caps how much of a request body the form-post
// extractor will buffer. Login payloads are tiny; anything larger is not a
// credential document.
const maxCredentialBodyBytes = 1 << 20

var (
	// ErrAuthenticationRequired is the single rejection signal surfaced to the
	// transport layer when every strategy has been exhausted. The HTTP layer
	// maps it to 401 with a fixed plain-text body; the specific cause is never
	// disclosed to the caller.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrPrincipalNotFound is returned by PrincipalStore implementations when
	// no principal exists for a username.
	ErrPrincipalNotFound = errors.New("principal not found")
)

// Credential is the raw material one extractor pulled out of a request.
// It is scheme-specific and transient: it lives for the duration of a single
// authentication attempt and is never persisted or logged.
type Credential struct {
	Username string
	Password string
	Token    string
}

// Status is the explicit three-case outcome of a strategy attempt.
type Status int

const (
	// StatusAbsent means the strategy found no applicable credential.
	// The dispatcher silently falls through to the next strategy; no
	// lifecycle hook fires.
	StatusAbsent Status = iota

	// StatusInvalid means verification ran and rejected the credential.
	// The dispatcher fires the strategy's failure hook, then falls through.
	StatusInvalid

	// StatusValid means verification accepted the credential and produced a
	// username. The dispatcher short-circuits: later strategies are never
	// attempted.
	StatusValid
)

// Result carries a strategy attempt outcome plus the verified username when
// Status is StatusValid.
type Result struct {
	Status   Status
	Username string
}

// Absent reports that no applicable credential was present.
func Absent() Result { return Result{Status: StatusAbsent} }

// Invalid reports that a credential was present but rejected.
func Invalid() Result { return Result{Status: StatusInvalid} }

// Valid reports a verified username.
func Valid(username string) Result {
	return Result{Status: StatusValid, Username: username}
}

// Strategy is one pluggable authentication mechanism: a credential source
// plus a verification rule, with success/failure lifecycle hooks.
//
// Implementations form a closed set (session, basic, form, bearer) and are
// immutable after registration; the dispatcher traverses a read-only ordered
// list of them, so a Strategy must be safe for unsynchronized concurrent use.
//
// Attempt combines extraction and verification and must be fail-closed: any
// unexpected condition folds into StatusInvalid, never into StatusValid.
type Strategy interface {
	// Scheme identifies the strategy for protocol-level negotiation and
	// telemetry (e.g. "basic", "bearer").
	Scheme() string

	// Attempt extracts credentials from req and verifies them.
	Attempt(ctx context.Context, req *Request) Result

	// OnSuccess runs after this strategy's credential verified. It binds the
	// username into session state for cross-request continuity.
	OnSuccess(req *Request, username string)

	// OnFailure runs after this strategy's credential was rejected. It clears
	// any stale session username binding so a failed attempt never leaves a
	// previously-bound identity in place.
	OnFailure(req *Request)
}

// Request is the transport data a strategy may consult: headers
// (case-insensitive lookup via http.Header), the declared body length, the
// buffered body bytes, and the caller's logical session.
//
// Exactly one Request is built per authentication attempt; it is never shared
// across requests.
type Request struct {
	Header        http.Header
	ContentLength int64
	Body          []byte
	Session       *session.Session
}

// NewRequest builds a Request from an incoming HTTP request, buffering the
// body so the form-post extractor can parse it. The original request body is
// replaced with a fresh reader so downstream handlers still see it.
func NewRequest(r *http.Request, sess *session.Session) (*Request, error) {
	var body []byte
	if r.Body != nil && r.ContentLength != 0 {
		b, err := io.ReadAll(io.LimitReader(r.Body, maxCredentialBodyBytes))
		if err != nil {
			return nil, err
		}
		body = b
		r.Body = io.NopCloser(bytes.NewReader(b))
	}

	return &Request{
		Header:        r.Header,
		ContentLength: r.ContentLength,
		Body:          body,
		Session:       sess,
	}, nil
}

// splitAuthorizationHeader splits an Authorization header into its scheme
// token and remaining value. The first whitespace-delimited token is the
// scheme; the remainder (if any) is the value. Either part may be empty for
// malformed headers; callers decide what that means for their scheme.
func splitAuthorizationHeader(header string) (scheme, value string) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	scheme = parts[0]
	if len(parts) > 1 {
		value = strings.TrimSpace(parts[1])
	}
	return scheme, value
}

// sessionBinding provides the shared lifecycle hooks for strategies that
// maintain the session username binding (session, basic, form).
type sessionBinding struct{}

func (sessionBinding) OnSuccess(req *Request, username string) {
	if req.Session != nil {
		req.Session.Set(SessionUsernameKey, username)
	}
}

func (sessionBinding) OnFailure(req *Request) {
	if req.Session != nil {
		req.Session.Delete(SessionUsernameKey)
	}
}
