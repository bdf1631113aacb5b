package testutil

import (
	"net/http"

	"claimsight/pkg/requestcontext"
)

// WithActor adds an authenticated investigator to the request context.
// This simulates what the auth middleware does for bearer-token requests.
func WithActor(req *http.Request, name, avatarURL string) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), requestcontext.ActorInfo{
		Subject:   name,
		Name:      name,
		AvatarURL: avatarURL,
	})
	return req.WithContext(ctx)
}
