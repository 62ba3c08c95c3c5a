package auth

import (
	"context"
	"log"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/corralworks/corral/internal/telemetry"
)

// Authenticator dispatches an authentication attempt across an ordered list
// of strategies. The first strategy to verify a credential wins; strategies
// later in the list are never attempted after a success.
//
// The strategy list and collaborators are fixed at construction. The
// Authenticator holds no per-request state, so a single instance serves all
// requests concurrently.
type Authenticator struct {
	strategies []Strategy
	principals PrincipalStore
	metrics    *telemetry.AuthMetrics
}

// NewAuthenticator creates a dispatcher over the given ordered strategies.
// Principal resolution and metrics are injected; metrics may be nil.
func NewAuthenticator(strategies []Strategy, principals PrincipalStore, metrics *telemetry.AuthMetrics) *Authenticator {
	return &Authenticator{
		strategies: strategies,
		principals: principals,
		metrics:    metrics,
	}
}

// Authenticate runs the strategy chain against req and binds the winning
// identity into the RequestContext carried on ctx (if any) and into the
// session's principal-id key.
//
// Each strategy outcome is handled per-strategy:
//   - absent credential: fall through silently, no hook fires
//   - invalid credential: the strategy's failure hook fires, bindings are
//     reset, and the next strategy runs
//   - valid credential: the strategy's success hook fires and the username is
//     resolved to a Principal; a resolution miss demotes the attempt to a
//     failure and the chain continues
//
// Only exhaustion of every strategy surfaces an error, and always the same
// one: ErrAuthenticationRequired. Callers learn nothing about which
// strategies ran or why they rejected.
func (a *Authenticator) Authenticate(ctx context.Context, req *Request) (*Principal, error) {
	ctx, span := telemetry.StartSpan(ctx, "corral/auth", "auth.Authenticate",
		attribute.Int("auth.strategy_count", len(a.strategies)),
	)
	defer span.End()

	for _, strategy := range a.strategies {
		start := time.Now()
		result := strategy.Attempt(ctx, req)

		switch result.Status {
		case StatusAbsent:
			continue

		case StatusInvalid:
			strategy.OnFailure(req)
			a.resetBindings(ctx, req)
			a.record(ctx, strategy.Scheme(), false, start)
			telemetry.AddEvent(span, "auth.strategy_rejected",
				attribute.String(telemetry.AttrAuthMethod, strategy.Scheme()),
			)

		case StatusValid:
			strategy.OnSuccess(req, result.Username)

			principal, err := a.principals.Lookup(ctx, result.Username)
			if err != nil {
				// Indistinguishable from bad credentials for the caller.
				log.Printf("auth: principal lookup failed for %s strategy: %v", strategy.Scheme(), err)
				strategy.OnFailure(req)
				a.resetBindings(ctx, req)
				a.record(ctx, strategy.Scheme(), false, start)
				continue
			}

			a.bind(ctx, req, principal)
			a.record(ctx, strategy.Scheme(), true, start)
			telemetry.AddEvent(span, "auth.strategy_succeeded",
				attribute.String(telemetry.AttrAuthMethod, strategy.Scheme()),
			)
			return principal, nil
		}
	}

	a.resetBindings(ctx, req)
	telemetry.RecordError(span, ErrAuthenticationRequired)
	return nil, ErrAuthenticationRequired
}

// bind writes the resolved identity into the request context and session.
func (a *Authenticator) bind(ctx context.Context, req *Request, p *Principal) {
	if rc := RequestContextFrom(ctx); rc != nil {
		rc.Bind(p)
	}
	if req.Session != nil {
		req.Session.Set(SessionPrincipalIDKey, strconv.FormatInt(p.ID, 10))
	}
}

// resetBindings nulls any previously-bound identity so a failed attempt can
// never leave a stale binding behind. Safe to call repeatedly.
func (a *Authenticator) resetBindings(ctx context.Context, req *Request) {
	if rc := RequestContextFrom(ctx); rc != nil {
		rc.Reset()
	}
	if req.Session != nil {
		req.Session.Delete(SessionPrincipalIDKey)
	}
}

func (a *Authenticator) record(ctx context.Context, scheme string, success bool, start time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordAuth(ctx, scheme, success, float64(time.Since(start).Milliseconds()))
}
