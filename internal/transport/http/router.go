// Package httptransport assembles the public HTTP surface: the middleware
// chain, health endpoints, metrics and the feature routers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claimsight/internal/platform/metrics"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/platform/httputil"
	"claimsight/pkg/platform/middleware/admin"
	"claimsight/pkg/platform/middleware/auth"
	"claimsight/pkg/platform/middleware/device"
	"claimsight/pkg/platform/middleware/metadata"
	"claimsight/pkg/platform/middleware/request"
	"claimsight/pkg/platform/middleware/requesttime"
	"claimsight/pkg/requestcontext"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// Seeder loads the demo claims.
type Seeder interface {
	SeedDemo(ctx context.Context, now time.Time) (int, error)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// Config carries everything the router wires together. Nil fields disable
// the matching feature.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Tokens enables bearer-token identity. With AuthRequired set, anonymous
	// API requests are rejected.
	Tokens       auth.TokenValidator
	AuthRequired bool

	// AdminToken guards /admin. Empty disables the admin routes.
	AdminToken string
	Seeder     Seeder

	// TrustedProxies may set X-Forwarded-For. Empty means the socket peer is
	// the client.
	TrustedProxies metadata.TrustedProxies

	Checks map[string]HealthCheck
	Routes []Registrar
}

// NewRouter builds the root handler.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.Middleware(cfg.TrustedProxies))
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(trackInFlight(cfg.Metrics))
	r.Use(request.Logger(logger, cfg.Metrics))
	r.Use(request.Recovery(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(cfg.Checks, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Tokens != nil {
			if cfg.AuthRequired {
				r.Use(auth.RequireAuth(cfg.Tokens, logger))
			} else {
				r.Use(auth.OptionalAuth(cfg.Tokens, logger))
			}
		}
		for _, reg := range cfg.Routes {
			reg.Register(r)
		}
	})

	if cfg.Seeder != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
			r.Post("/seed-demo", seedDemo(cfg.Seeder, logger))
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

func trackInFlight(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.TrackInFlight()
			defer done()
			next.ServeHTTP(w, r)
		})
	}
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func readiness(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := readinessResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"check", name,
					"error", err,
				)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

type seedResponse struct {
	Added int `json:"added"`
}

func seedDemo(seeder Seeder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		added, err := seeder.SeedDemo(ctx, requestcontext.Now(ctx))
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed demo claims",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, seedResponse{Added: added})
	}
}
