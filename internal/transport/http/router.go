// Package httptransport assembles the authority's HTTP surface. Handlers
// stay thin and delegate to domain services; this package only decides which
// routes exist and which of them sit behind a session.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attesta/internal/audit"
	"attesta/internal/card"
	identityhandler "attesta/internal/identity/handler"
	"attesta/internal/platform/health"
	"attesta/internal/platform/middleware"
	"attesta/internal/scan"
	"attesta/internal/session"
	verificationhandler "attesta/internal/verification/handler"
)

// Handlers are the route providers the router mounts.
type Handlers struct {
	Health       *health.Handler
	Session      *session.Handler
	Identity     *identityhandler.Handler
	Verification *verificationhandler.Handler
	Card         *card.Handler
	Scan         *scan.Handler
	Audit        *audit.Handler

	// SessionAuth guards the holder routes. Verifier routes stay public:
	// possession of a token is the verifier's only credential.
	SessionAuth func(http.Handler) http.Handler
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	// Operational endpoints outside /api, unauthenticated.
	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)

		// Public: registration, sign-in, and the verifier surface.
		h.Session.RegisterPublic(api)
		h.Verification.RegisterVerifier(api)
		h.Scan.Register(api)

		// Holder surface behind the session guard.
		api.Group(func(holder chi.Router) {
			holder.Use(h.SessionAuth)
			h.Identity.Register(holder)
			h.Verification.RegisterHolder(holder)
			h.Card.RegisterHolder(holder)
			h.Audit.RegisterHolder(holder)
			h.Session.RegisterHolder(holder)
		})
	})

	return r
}
