package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect for tokens that are not JWTs.
var ErrNotJWT = errors.New("token is not a jwt")

// Inspect decodes tokenStr's claims without verifying the signature.
func Inspect(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiredAt reports whether tokenStr carries an exp claim at or before now.
// Tokens that cannot be inspected, or carry no exp, are reported as not
// expired: the remote service remains the authority for those.
func ExpiredAt(tokenStr string, now time.Time, leeway time.Duration) bool {
	claims, err := Inspect(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.Add(leeway).After(now)
}
