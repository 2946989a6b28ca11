package http

import (
	"errors"
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

type LoginHandler struct {
	Credentials *service.CredentialService
	Cookies     CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP performs password login. Unknown email, passwordless account and
// wrong password all produce the same 401 so the endpoint cannot be used to
// map the directory.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, cred, err := h.Credentials.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteFail(w, http.StatusUnauthorized, "incorrect email or password")
		return
	default:
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	log.Info("principal logged in", "principal_id", p.ID)

	h.Cookies.write(w, cred.Token, cred.ExpiresAt)
	httpx.WriteSuccess(w, http.StatusOK, sessionPayload{
		Credential: cred,
		Principal:  toPrincipalPayload(p),
	})
}
