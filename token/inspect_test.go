package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/token"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()

	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(time.Hour)

	t.Run("extracts display claims", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{
			"sub": "user-1",
			"iss": "com.testissuer",
			"aud": "api",
			"jti": "token-1",
			"iat": issued.Unix(),
			"exp": expires.Unix(),
		})

		claims, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", utils.Value(claims.Sub))
		require.Equal(t, "com.testissuer", utils.Value(claims.Iss))
		require.Equal(t, []string{"api"}, claims.Aud)
		require.Equal(t, "token-1", utils.Value(claims.TokenID))
		require.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
		require.Equal(t, expires.Unix(), claims.Expiry.Unix())
	})

	t.Run("multiple audiences", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"aud": []string{"api", "portal"}})

		claims, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Equal(t, []string{"api", "portal"}, claims.Aud)
	})

	t.Run("missing claims stay nil", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{})

		claims, err := token.Inspect(raw)
		require.NoError(t, err)
		require.Nil(t, claims.Sub)
		require.Nil(t, claims.Expiry)
		require.False(t, claims.Expired(time.Now()))
	})

	t.Run("rejects empty token", func(t *testing.T) {
		_, err := token.Inspect("  ")
		require.Error(t, err)
	})

	t.Run("rejects opaque token", func(t *testing.T) {
		_, err := token.Inspect("not-a-jwt")
		require.Error(t, err)
	})
}

func TestClaims_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("past expiry", func(t *testing.T) {
		claims := &token.Claims{Expiry: utils.Ptr(now.Add(-time.Minute))}
		require.True(t, claims.Expired(now))
	})

	t.Run("future expiry", func(t *testing.T) {
		claims := &token.Claims{Expiry: utils.Ptr(now.Add(time.Minute))}
		require.False(t, claims.Expired(now))
	})
}
