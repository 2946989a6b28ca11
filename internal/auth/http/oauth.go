package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/fieldbook/fieldbook/internal/auth/oidc"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// OAuthHandler drives the browser half of the external login flow. The
// provider handshake itself lives behind the oidc adapter; this handler owns
// the state/nonce cookies and the final credential issuance.
type OAuthHandler struct {
	Provider    *oidc.Provider
	Identity    *service.IdentityService
	Credentials *service.CredentialService
	Cookies     CookieConfig

	// FrontendCallbackURL is where the browser lands after a successful
	// callback, with the token attached as a query parameter. Empty means
	// respond with JSON instead of redirecting.
	FrontendCallbackURL string
}

// HandleLogin redirects to the provider's authorization endpoint. The state
// and nonce are stashed in short-lived cookies and checked on the way back.
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	authURL, state, nonce, err := h.Provider.Begin()
	if err != nil {
		log.Error("oauth begin failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not start login")
		return
	}

	writeHandshakeCookie(w, stateCookieName, state, h.Cookies.Secure)
	writeHandshakeCookie(w, nonceCookieName, nonce, h.Cookies.Secure)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback completes the flow: state check, code exchange, ID token
// verification, identity linking, credential issuance.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clearHandshakeCookie(w, stateCookieName, h.Cookies.Secure)
	clearHandshakeCookie(w, nonceCookieName, h.Cookies.Secure)

	if providerErr := r.URL.Query().Get("error"); providerErr != "" {
		log.Info("provider denied authorization", "provider_error", providerErr)
		httpx.WriteFail(w, http.StatusUnauthorized, "authorization was denied")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httpx.WriteFail(w, http.StatusUnauthorized, "login session expired or invalid, please try again")
		return
	}

	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil || nonceCookie.Value == "" {
		httpx.WriteFail(w, http.StatusUnauthorized, "login session expired or invalid, please try again")
		return
	}

	profile, err := h.Provider.Exchange(ctx, r.URL.Query().Get("code"), nonceCookie.Value)
	if err != nil {
		log.Warn("oauth exchange failed", "err", err)
		httpx.WriteFail(w, http.StatusUnauthorized, "could not verify your identity with the provider")
		return
	}

	p, err := h.Identity.LinkOrCreate(ctx, profile)
	if err != nil {
		if errors.Is(err, service.ErrEmailBelongsToLocalAccount) {
			httpx.WriteFail(w, http.StatusConflict,
				"an account with this email already exists, please log in with your password")
			return
		}
		log.Error("identity linking failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not complete login")
		return
	}

	cred, err := h.Credentials.IssueFor(ctx, p)
	if err != nil {
		log.Error("credential issuance failed", "principal_id", p.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not complete login")
		return
	}

	log.Info("principal logged in via provider", "principal_id", p.ID)
	h.Cookies.write(w, cred.Token, cred.ExpiresAt)

	if h.FrontendCallbackURL == "" {
		httpx.WriteSuccess(w, http.StatusOK, sessionPayload{
			Credential: cred,
			Principal:  toPrincipalPayload(p),
		})
		return
	}

	redirect := h.FrontendCallbackURL + "?token=" + url.QueryEscape(cred.Token)
	http.Redirect(w, r, redirect, http.StatusFound)
}
