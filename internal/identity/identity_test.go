package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/requestcontext"
)

func TestFromContext(t *testing.T) {
	p := FromContext{Fallback: NewStatic(DefaultPerson)}

	t.Run("anonymous requests use the fallback", func(t *testing.T) {
		got, err := p.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Alex Doe", got.Name)
		assert.Equal(t, "https://placehold.co/100x100.png", got.AvatarURL)
	})

	t.Run("authenticated actor wins", func(t *testing.T) {
		ctx := requestcontext.WithActor(context.Background(), requestcontext.ActorInfo{Name: "Priya Shah", AvatarURL: "https://example.com/p.png"})
		got, err := p.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Priya Shah", got.Name)
	})
}

func TestTokenService(t *testing.T) {
	svc := NewTokenService("test-signing-key", "claimsight")

	t.Run("round trips the investigator", func(t *testing.T) {
		token, err := svc.Issue("inv-1", "Priya Shah", "https://example.com/p.png", time.Hour)
		require.NoError(t, err)

		actor, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "inv-1", actor.Subject)
		assert.Equal(t, "Priya Shah", actor.Name)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.Issue("inv-1", "Priya Shah", "", -time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := NewTokenService("other-key", "claimsight").Issue("inv-1", "Priya Shah", "", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("invalid-token-string")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
