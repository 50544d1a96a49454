package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ExpiresAt peeks at the exp claim when an access token happens to be a JWT.
// The signature is not verified; the result is only a hint for refreshing early.
func ExpiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether token carries an exp claim at or before now plus leeway
func Expired(token string, now time.Time, leeway time.Duration) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !exp.After(now.Add(leeway))
}
