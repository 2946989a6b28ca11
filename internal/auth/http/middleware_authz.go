package http

import (
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/authn"
	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// RestrictTo admits only the listed roles. The rejection is generic: it
// names neither the caller's role nor the allowed set. Must run after the
// gate; an unauthenticated request is rejected as not logged in, never as a
// role mismatch.
func RestrictTo(roles ...domain.Role) httpx.Middleware {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, authn.ErrMissingCredential())
				return
			}

			if _, ok := allowed[p.Role]; !ok {
				log := slogx.FromContext(r.Context())
				log.Info("role rejected",
					"principal_id", p.ID,
					"role", p.Role.String(),
					"path", r.URL.Path,
				)
				writeAuthError(w, authn.ErrInsufficientRole(""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireCashierOrAdmin admits cashier and admin roles. Unlike RestrictTo,
// the rejection echoes the caller's own role in the payload; the front-desk
// UI uses it to explain the denial. That asymmetry is documented API
// behavior, keep it.
func RequireCashierOrAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, authn.ErrMissingCredential())
				return
			}

			if p.Role != domain.RoleCashier && p.Role != domain.RoleAdmin {
				log := slogx.FromContext(r.Context())
				log.Info("role rejected",
					"principal_id", p.ID,
					"role", p.Role.String(),
					"path", r.URL.Path,
				)
				writeAuthError(w, authn.ErrInsufficientRole(p.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
