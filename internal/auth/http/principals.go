package http

import (
	"errors"
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

type PrincipalsHandler struct {
	Principals *service.PrincipalService
}

// HandleLookup resolves an email to a directory record for front-desk staff.
func (h *PrincipalsHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	email := r.URL.Query().Get("email")
	if email == "" {
		httpx.WriteFail(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	p, err := h.Principals.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteFail(w, http.StatusNotFound, "no account found for that email")
			return
		}
		log.Error("email lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not look up account")
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toPrincipalPayload(p))
}

// HandleList returns the whole directory, newest first.
func (h *PrincipalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principals, err := h.Principals.List(ctx)
	if err != nil {
		log.Error("directory list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not list accounts")
		return
	}

	payload := make([]principalPayload, 0, len(principals))
	for _, p := range principals {
		payload = append(payload, toPrincipalPayload(p))
	}

	httpx.WriteSuccess(w, http.StatusOK, payload)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole changes a principal's role. The subject's outstanding
// credentials stay valid and pick up the new role on their next request,
// because the gate always resolves the live record.
func (h *PrincipalsHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if id == "" {
		httpx.WriteFail(w, http.StatusBadRequest, "principal id is required")
		return
	}

	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteFail(w, http.StatusBadRequest, "role must be one of customer, cashier, admin")
		return
	}

	if err := h.Principals.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteFail(w, http.StatusNotFound, "no account found with that id")
			return
		}
		log.Error("role update failed", "principal_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not update role")
		return
	}

	p, err := h.Principals.Get(ctx, id)
	if err != nil {
		log.Error("post-update read failed", "principal_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not update role")
		return
	}

	log.Info("role updated", "principal_id", id, "role", role.String())
	httpx.WriteSuccess(w, http.StatusOK, toPrincipalPayload(p))
}
