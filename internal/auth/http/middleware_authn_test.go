package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/pkg/idx"
)

func TestGateRejectionTaxonomy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p := env.createPrincipal(t, "gate@example.com", domain.RoleCustomer)

	request := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return env.do(req)
	}

	t.Run("missing credential", func(t *testing.T) {
		rec := request("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, "fail", body.Status)
		require.Equal(t, "you are not logged in", body.Message)
	})

	t.Run("malformed credential", func(t *testing.T) {
		rec := request("not-a-jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid token, please log in again", decodeEnvelope(t, rec).Message)
	})

	t.Run("expired credential", func(t *testing.T) {
		past := env.codec.WithClock(func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		})
		token, _, err := past.Issue(p.ID)
		require.NoError(t, err)

		rec := request(token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token has expired, please log in again", decodeEnvelope(t, rec).Message)
	})

	t.Run("revoked credential", func(t *testing.T) {
		token, claims, err := env.codec.Issue(p.ID)
		require.NoError(t, err)
		require.NoError(t, env.rev.Revoke(ctx, token, claims.ExpiryTime()))

		rec := request(token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token has been invalidated, please log in again", decodeEnvelope(t, rec).Message)
	})

	t.Run("superseded credential", func(t *testing.T) {
		token, claims, err := env.codec.Issue(p.ID)
		require.NoError(t, err)
		require.NoError(t, env.rev.MarkLogoutAll(ctx, p.ID, claims.IssuedTime().Add(time.Second)))

		rec := request(token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "session has been terminated, please log in again", decodeEnvelope(t, rec).Message)
	})

	t.Run("unknown principal", func(t *testing.T) {
		ghost := domain.Principal{ID: idx.New().String()}
		rec := request(env.tokenFor(t, ghost))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "the user belonging to this token no longer exists", decodeEnvelope(t, rec).Message)
	})
}

func TestGateDirectoryUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := env.createPrincipal(t, "unavailable@example.com", domain.RoleCustomer)
	token := env.tokenFor(t, p)

	// Killing the database makes the lookup fail transiently; the
	// credential itself is not judged.
	require.NoError(t, env.store.Close())

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := env.do(req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decodeEnvelope(t, rec)
	require.Equal(t, "error", body.Status)
	require.Equal(t, "service temporarily unavailable", body.Message)
}

func TestGateCredentialExtraction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	p := env.createPrincipal(t, "extract@example.com", domain.RoleCustomer)
	token := env.tokenFor(t, p)

	t.Run("session cookie authenticates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: token})

		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer header wins over the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: "garbage"})

		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("garbage header loses even with a valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: token})

		rec := env.do(req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
