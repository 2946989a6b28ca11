package http

import (
	"context"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
)

type ctxKey int

const (
	ctxKeyPrincipal ctxKey = iota
	ctxKeyToken
	ctxKeyClaims
)

// withAuth records the outcome of a successful gate pass on the request
// context: the live principal record, the raw token (needed by logout to
// blacklist it) and its verified claims.
func withAuth(ctx context.Context, p domain.Principal, token string, claims jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyPrincipal, p)
	ctx = context.WithValue(ctx, ctxKeyToken, token)
	return context.WithValue(ctx, ctxKeyClaims, claims)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}

// TokenFromContext returns the raw credential the request authenticated with.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxKeyToken).(string)
	return token, ok
}

// ClaimsFromContext returns the verified claims of the request credential.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return claims, ok
}
