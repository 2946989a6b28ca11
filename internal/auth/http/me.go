package http

import (
	"net/http"

	"github.com/fieldbook/fieldbook/internal/auth/authn"
	"github.com/fieldbook/fieldbook/pkg/httpx"
)

// MeHandler returns the caller's live directory record. No role policy; the
// gate alone guards it. Because the gate resolves the record on every
// request, a role change made elsewhere is visible here immediately.
type MeHandler struct{}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeAuthError(w, authn.ErrMissingCredential())
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toPrincipalPayload(p))
}
