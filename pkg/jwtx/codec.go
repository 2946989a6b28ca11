package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers anything that is not a well-signed token from
	// this process: garbage input, unknown algorithms, bad signatures.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired means the token was well-formed and correctly signed but
	// its lifetime has elapsed. Callers need to tell this apart from
	// ErrMalformed to give accurate client feedback.
	ErrExpired = errors.New("jwtx: token expired")
)

// MinSecretLength guards against accidentally running with a trivial HMAC
// key. 32 bytes matches the SHA-256 block the signature is built on.
const MinSecretLength = 32

// Codec signs and verifies bearer credentials with a process-wide HS256
// secret. It is stateless and pure over the secret and the clock; revocation
// is a separate concern layered on top by the authentication gate.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a codec. ttl <= 0 falls back to DefaultTTL.
func NewCodec(secret []byte, issuer string, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwtx: secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Codec{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the codec with a different time source. Tests
// use this to pin issuance and verification to a fixed timeline; the
// original codec keeps the wall clock.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	clone := *c
	clone.now = now
	return &clone
}

// TTL reports the configured credential lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue produces a signed credential for the subject with iat = now and
// exp = now + TTL. Side-effect-free beyond reading the clock.
func (c *Codec) Issue(subject string) (string, Claims, error) {
	claims := NewClaims(subject, c.issuer, c.ttl, c.now())

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}

	return signed, claims, nil
}

// Verify checks signature integrity and expiry. It returns ErrMalformed for
// forged or unparseable tokens and ErrExpired for well-signed tokens past
// their exp. Claims from a failed verification must never be trusted.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			// Unknown issuer, future iat and anything else the parser
			// flags: not trustworthy, treat as forged.
			return Claims{}, ErrMalformed
		}
	}

	return claims, nil
}
