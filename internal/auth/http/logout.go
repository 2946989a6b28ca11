package http

import (
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/authn"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

type LogoutHandler struct {
	Credentials *service.CredentialService
	Cookies     CookieConfig
}

// HandleLogout blacklists the presented token until its natural expiry and
// clears the session cookie. Revoking an already-revoked token cannot reach
// here (the gate rejects it first), so the operation is idempotent in effect.
func (h *LogoutHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token, okToken := TokenFromContext(ctx)
	claims, okClaims := ClaimsFromContext(ctx)
	if !okToken || !okClaims {
		writeAuthError(w, authn.ErrMissingCredential())
		return
	}

	if err := h.Credentials.Logout(ctx, token, claims); err != nil {
		log.Error("logout failed", "principal_id", claims.Subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not log out")
		return
	}

	log.Info("credential revoked", "principal_id", claims.Subject)

	h.Cookies.clear(w)
	httpx.WriteSuccess(w, http.StatusOK, nil)
}

// HandleLogoutAll supersedes every credential the caller holds that was
// issued before this instant, including the one authenticating this request.
func (h *LogoutHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := PrincipalFromContext(ctx)
	if !ok {
		writeAuthError(w, authn.ErrMissingCredential())
		return
	}

	if err := h.Credentials.LogoutAll(ctx, p.ID); err != nil {
		log.Error("logout-all failed", "principal_id", p.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not log out")
		return
	}

	log.Info("all credentials superseded", "principal_id", p.ID)

	h.Cookies.clear(w)
	httpx.WriteSuccess(w, http.StatusOK, nil)
}
