package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/authn"
	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// defaultLookupTimeout bounds the directory lookup so a stalled database
// surfaces as a 503 instead of a hung request.
const defaultLookupTimeout = 3 * time.Second

// Gate is the authentication middleware every protected route passes
// through. Check order is fixed: extract, verify, blacklist, logout-all
// cutoff, then the live directory lookup. A request that clears the gate
// carries the principal, raw token and claims on its context.
type Gate struct {
	Codec       *jwtx.Codec
	Revocations revocation.Store
	Directory   store.Principals

	// CookieName is the session cookie consulted when no bearer header is
	// present. Empty means DefaultSessionCookieName.
	CookieName string

	// LookupTimeout overrides defaultLookupTimeout when positive.
	LookupTimeout time.Duration
}

// Middleware adapts the gate for use in a handler chain.
func (g *Gate) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, token, claims, denial := g.authenticate(r)
			if denial != nil {
				log := slogx.FromContext(r.Context())
				log.Info("request rejected at gate",
					"kind", string(denial.Kind),
					"path", r.URL.Path,
				)
				writeAuthError(w, denial)
				return
			}

			next.ServeHTTP(w, r.WithContext(withAuth(r.Context(), p, token, claims)))
		})
	}
}

func (g *Gate) authenticate(r *http.Request) (domain.Principal, string, jwtx.Claims, *authn.Error) {
	token, ok := g.extractToken(r)
	if !ok {
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrMissingCredential()
	}

	claims, err := g.Codec.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, "", jwtx.Claims{}, authn.ErrExpiredCredential()
		}
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrMalformedCredential()
	}

	revoked, err := g.Revocations.IsRevoked(r.Context(), token)
	if err != nil {
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrDirectoryUnavailable(err)
	}
	if revoked {
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrRevokedCredential()
	}

	superseded, err := g.Revocations.IssuedBeforeCutoff(r.Context(), claims.Subject, claims.IssuedTime())
	if err != nil {
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrDirectoryUnavailable(err)
	}
	if superseded {
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrSupersededCredential()
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.lookupTimeout())
	defer cancel()

	p, err := g.Directory.GetPrincipalByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, "", jwtx.Claims{}, authn.ErrUnknownPrincipal()
		}
		// Timeouts and driver failures are transient; the credential is
		// not judged.
		return domain.Principal{}, "", jwtx.Claims{}, authn.ErrDirectoryUnavailable(err)
	}

	return p, token, claims, nil
}

// extractToken pulls the credential off the request. The Authorization
// header wins over the session cookie when both are present.
func (g *Gate) extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}

	name := g.CookieName
	if name == "" {
		name = DefaultSessionCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (g *Gate) lookupTimeout() time.Duration {
	if g.LookupTimeout > 0 {
		return g.LookupTimeout
	}
	return defaultLookupTimeout
}

// writeAuthError renders an authentication or authorization rejection in the
// shared envelope. 5xx kinds use the error status; the role echo happens
// only when the rejection carries one.
func writeAuthError(w http.ResponseWriter, e *authn.Error) {
	code := e.HTTPStatus()
	switch {
	case code >= http.StatusInternalServerError:
		httpx.WriteError(w, code, e.Message)
	case e.Role != "":
		httpx.WriteFailWithRole(w, code, e.Message, e.Role.String())
	default:
		httpx.WriteFail(w, code, e.Message)
	}
}
