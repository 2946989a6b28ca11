package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the default credential lifetime. Short-lived for security,
// overridable per-service through the codec.
const DefaultTTL = 1 * time.Hour

// Claims are the credential claims shared across the service. The token is
// deliberately thin: subject, issued-at and expiry only. Role and profile
// data are resolved from the principal directory on every request so a
// token issued before a role change still authenticates against the live
// record.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds minimally-correct claims for a subject at the given
// instant. Timestamps are second-granularity per RFC 7519.
func NewClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// IssuedTime returns the iat claim as a time, or the zero time when absent.
func (c Claims) IssuedTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiryTime returns the exp claim as a time, or the zero time when absent.
func (c Claims) ExpiryTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
