package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/config"
	"github.com/corralworks/corral/internal/events"
	corralmiddleware "github.com/corralworks/corral/internal/middleware"
	"github.com/corralworks/corral/internal/services/admin"
	"github.com/corralworks/corral/internal/services/inventory"
	"github.com/corralworks/corral/internal/session"
	"github.com/corralworks/corral/internal/telemetry"
)

// Server bundles the collaborators the HTTP handlers need.
type Server struct {
	inventory     *inventory.Service
	admins        *admin.Store
	authenticator *auth.Authenticator
	sessions      *session.Manager
	bus           *events.Bus
}

// RouterOptions controls the construction of the HTTP router.
// The zero value is valid; sensible defaults are applied where fields are not set.
type RouterOptions struct {
	Inventory     *inventory.Service
	Admins        *admin.Store
	Authenticator *auth.Authenticator
	Sessions      *session.Manager
	Bus           *events.Bus
	Cfg           *config.Config
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, the
// session layer, and the API operations mounted. Operations registered with
// AuthRequired get the authentication pipeline in front of them; the rest
// never touch it.
func NewRouter(opts RouterOptions) chi.Router {
	s := &Server{
		inventory:     opts.Inventory,
		admins:        opts.Admins,
		authenticator: opts.Authenticator,
		sessions:      opts.Sessions,
		bus:           opts.Bus,
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metricsMiddleware)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	if opts.Sessions != nil {
		r.Use(opts.Sessions.Middleware())
	}

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	authn := corralmiddleware.Authn(opts.Authenticator)
	for _, op := range s.operations() {
		if op.AuthRequired && opts.Authenticator != nil {
			r.With(authn).Method(op.Method, op.Path, op.Handler)
			continue
		}
		r.Method(op.Method, op.Path, op.Handler)
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", telemetry.MetricsHandler())

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// NewH2CHandler wraps the shared router with an h2c server to provide HTTP/2
// over cleartext for development and reverse-proxy setups.
func NewH2CHandler(opts RouterOptions) (http.Handler, error) {
	router := NewRouter(opts)
	return h2c.NewHandler(router, &http2.Server{}), nil
}

// metricsMiddleware records per-request Prometheus counters and latency,
// labeled by the matched chi route pattern rather than the raw path.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		telemetry.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
