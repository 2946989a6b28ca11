package http

import (
	"errors"
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

type RegisterHandler struct {
	Credentials *service.CredentialService
	Cookies     CookieConfig
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// ServeHTTP creates a local customer-role principal and logs it straight in.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, cred, err := h.Credentials.Register(ctx, req.Email, req.Password, req.DisplayName)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidEmail):
		httpx.WriteFail(w, http.StatusBadRequest, "a valid email address is required")
		return
	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteFail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteFail(w, http.StatusConflict, "an account with this email already exists")
		return
	default:
		log.Error("registration failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	log.Info("principal registered", "principal_id", p.ID)

	h.Cookies.write(w, cred.Token, cred.ExpiresAt)
	httpx.WriteSuccess(w, http.StatusCreated, sessionPayload{
		Credential: cred,
		Principal:  toPrincipalPayload(p),
	})
}
