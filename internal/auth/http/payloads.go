package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/pkg/httpx"
)

// maxRequestBodyBytes caps request bodies; every payload this service
// accepts is small.
const maxRequestBodyBytes = 1 << 20

// principalPayload is the directory record as exposed over the API. The
// password hash and provider subject never leave the service.
type principalPayload struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	Role          string    `json:"role"`
	PictureURL    string    `json:"picture_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPrincipalPayload(p domain.Principal) principalPayload {
	return principalPayload{
		ID:            p.ID,
		Email:         p.Email,
		DisplayName:   p.DisplayName,
		Role:          p.Role.String(),
		PictureURL:    p.PictureURL,
		EmailVerified: p.EmailVerified,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// sessionPayload is the response body for every credential-issuing endpoint.
type sessionPayload struct {
	Credential domain.Credential `json:"credential"`
	Principal  principalPayload  `json:"principal"`
}

// decodeJSON reads a small JSON request body into dst. On failure it writes
// the 400 itself and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			httpx.WriteFail(w, http.StatusBadRequest, "request body is required")
			return false
		}
		httpx.WriteFail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
