package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("jwt with exp", func(t *testing.T) {
		got, ok := token.ExpiresAt(signedToken(t, jwtlib.MapClaims{"sub": "u1", "exp": exp.Unix()}))
		require.True(t, ok)
		require.True(t, exp.Equal(got))
	})

	t.Run("jwt without exp", func(t *testing.T) {
		_, ok := token.ExpiresAt(signedToken(t, jwtlib.MapClaims{"sub": "u1"}))
		require.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := token.ExpiresAt("d2f1c0ffee")
		require.False(t, ok)
	})

	t.Run("empty token", func(t *testing.T) {
		_, ok := token.ExpiresAt("")
		require.False(t, ok)
	})
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := signedToken(t, jwtlib.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	soon := signedToken(t, jwtlib.MapClaims{"exp": now.Add(10 * time.Second).Unix()})
	later := signedToken(t, jwtlib.MapClaims{"exp": now.Add(time.Hour).Unix()})

	require.True(t, token.Expired(past, now, 0))
	require.True(t, token.Expired(soon, now, 30*time.Second))
	require.False(t, token.Expired(later, now, 30*time.Second))
	require.False(t, token.Expired("opaque", now, 0))
}
