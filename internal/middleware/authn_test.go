package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corralworks/corral/internal/auth"
)

type allowStrategy struct {
	username string
}

func (s *allowStrategy) Scheme() string { return "allow" }

func (s *allowStrategy) Attempt(_ context.Context, _ *auth.Request) auth.Result {
	return auth.Valid(s.username)
}

func (s *allowStrategy) OnSuccess(_ *auth.Request, _ string) {}
func (s *allowStrategy) OnFailure(_ *auth.Request)           {}

type denyStrategy struct{}

func (denyStrategy) Scheme() string { return "deny" }

func (denyStrategy) Attempt(_ context.Context, _ *auth.Request) auth.Result {
	return auth.Invalid()
}

func (denyStrategy) OnSuccess(_ *auth.Request, _ string) {}
func (denyStrategy) OnFailure(_ *auth.Request)           {}

type fixedPrincipals struct {
	principal *auth.Principal
}

func (s *fixedPrincipals) Lookup(_ context.Context, username string) (*auth.Principal, error) {
	if s.principal != nil && s.principal.Username == username {
		return s.principal, nil
	}
	return nil, fmt.Errorf("%q: %w", username, auth.ErrPrincipalNotFound)
}

func TestAuthnRejectionIsUniform(t *testing.T) {
	authenticator := auth.NewAuthenticator([]auth.Strategy{denyStrategy{}}, &fixedPrincipals{}, nil)

	handler := Authn(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an unauthenticated request")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v2/nodes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Authentication required", rec.Body.String())
}

func TestAuthnPassesPrincipalToHandler(t *testing.T) {
	principal := &auth.Principal{ID: 5, Username: "alice"}
	authenticator := auth.NewAuthenticator(
		[]auth.Strategy{&allowStrategy{username: "alice"}},
		&fixedPrincipals{principal: principal},
		nil,
	)

	var seen *auth.Principal
	handler := Authn(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFrom(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v2/auth/whoami", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(5), seen.ID)
}

func TestAuthnMarksOperationAsGuarded(t *testing.T) {
	principal := &auth.Principal{ID: 5, Username: "alice"}
	authenticator := auth.NewAuthenticator(
		[]auth.Strategy{&allowStrategy{username: "alice"}},
		&fixedPrincipals{principal: principal},
		nil,
	)

	handler := Authn(authenticator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := auth.RequestContextFrom(r.Context())
		require.NotNil(t, rc)
		assert.True(t, rc.AuthRequired)
		assert.True(t, rc.Authenticated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v2/nodes", nil))
}
