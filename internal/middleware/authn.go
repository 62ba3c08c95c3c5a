package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/session"
)

// Authn guards a protected operation with the authentication pipeline.
//
// This middleware:
//  1. Builds the pipeline's request view (headers, buffered body, session)
//  2. Binds a fresh RequestContext into the request context
//  3. Runs the strategy chain via the Authenticator
//  4. On success, sets the resolved Principal in context and continues
//  5. On exhaustion, writes the uniform 401 rejection
//
// Operations not registered as requiring authentication never pass through
// here; they bypass the pipeline entirely.
func Authn(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rc := &auth.RequestContext{AuthRequired: true}
			ctx = auth.WithRequestContext(ctx, rc)

			req, err := auth.NewRequest(r, session.FromContext(ctx))
			if err != nil {
				log.Printf("authn: failed to read request for %s %s: %v", r.Method, r.URL.Path, err)
				writeAuthenticationRequired(w)
				return
			}

			principal, err := authenticator.Authenticate(ctx, req)
			if err != nil {
				if !errors.Is(err, auth.ErrAuthenticationRequired) {
					log.Printf("authn: unexpected failure for %s %s: %v", r.Method, r.URL.Path, err)
				}
				writeAuthenticationRequired(w)
				return
			}

			ctx = auth.WithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthenticationRequired writes the single uniform rejection. The body
// and status never vary with the failure cause, so responses cannot be used
// to probe which strategies ran.
func writeAuthenticationRequired(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("Authentication required"))
}
