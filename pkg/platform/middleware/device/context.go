// Package device describes the client software behind a request, parsed
// from its User-Agent.
package device

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"

	"claimsight/pkg/requestcontext"
)

type contextKeyInfo struct{}

// Info is the parsed client description attached to access logs and
// claim activity.
type Info struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	Bot            bool
}

// Parse interprets a raw User-Agent header.
func Parse(raw string) Info {
	if raw == "" {
		return Info{}
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return Info{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

// Middleware parses the User-Agent recorded by the metadata middleware.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		raw := requestcontext.UserAgent(ctx)
		if raw == "" {
			raw = r.Header.Get("User-Agent")
		}
		next.ServeHTTP(w, r.WithContext(WithInfo(ctx, Parse(raw))))
	})
}

// FromContext returns the parsed client, or the zero Info.
func FromContext(ctx context.Context) Info {
	info, _ := ctx.Value(contextKeyInfo{}).(Info)
	return info
}

// WithInfo injects a parsed client into a context.
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKeyInfo{}, info)
}
