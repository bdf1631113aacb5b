package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/platform/httputil"
	"claimsight/pkg/requestcontext"
)

// Rule is the allowance for one class of endpoint. A zero Limit disables it.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Middleware enforces Rules per client. Signed-in investigators are counted
// by subject, everyone else by client IP.
type Middleware struct {
	store  Store
	logger *slog.Logger
}

func NewMiddleware(store Store, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, logger: logger}
}

// Limit returns middleware applying rule to the endpoint class. Store
// failures let the request through.
func (m *Middleware) Limit(class string, rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil || rule.Limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := class + ":" + clientKey(r)

			result, err := m.store.Allow(ctx, key, rule.Limit, rule.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	ctx := r.Context()
	if actor, ok := requestcontext.Actor(ctx); ok && actor.Subject != "" {
		return "user:" + actor.Subject
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}
