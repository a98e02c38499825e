// Package token owns the bearer credential string. It is the only code
// allowed to read or write the token in persistent client storage, and
// the only inspection it performs is decoding the expiry claim locally;
// signature validation is the server's job and is never attempted here.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the stored credential cannot be decoded
// as a JWT or carries no expiry claim. A token in this state is never
// trusted; callers treat it the same way as an expired one.
var ErrMalformed = errors.New("malformed token")

// Store persists the raw bearer token across process restarts.
// Get returns an empty string with a nil error when no token is present;
// absence is an expected state, not an error. Clear is idempotent.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, tok string) error
	Clear(ctx context.Context) error
}

// Expiry decodes the token's exp claim without verifying the signature.
// No other claim is consumed.
func Expiry(tok string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, ErrMalformed
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrMalformed
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether the token is unusable at the given instant.
// Skew counts against the token: one that expires within skew of now is
// already treated as expired, so a request started on it is not doomed
// to a mid-flight rejection. A malformed token counts as expired.
func Expired(tok string, now time.Time, skew time.Duration) bool {
	exp, err := Expiry(tok)
	if err != nil {
		return true
	}
	return !now.Before(exp.Add(-skew))
}
