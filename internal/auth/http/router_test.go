package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/internal/auth/store/drivers/sqlite"
	"github.com/fieldbook/fieldbook/pkg/cryptox"
	"github.com/fieldbook/fieldbook/pkg/idx"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	router *Router
	store  store.Store
	rev    *revocation.MemoryStore
	codec  *jwtx.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec(testSecret, "test-issuer", time.Hour)
	require.NoError(t, err)

	rev := revocation.NewMemoryStore(2 * time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(codec, "test", st, rev, logger)
	router.CredentialService = &service.CredentialService{
		Codec:       codec,
		Store:       st,
		Revocations: rev,
	}
	router.IdentityService = &service.IdentityService{Store: st}
	router.PrincipalService = &service.PrincipalService{Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, rev: rev, codec: codec}
}

// createPrincipal inserts a directory record directly, bypassing the
// registration endpoint, so tests can mint arbitrary roles.
func (e *testEnv) createPrincipal(t *testing.T, email string, role domain.Role) domain.Principal {
	t.Helper()

	hash, err := cryptox.HashPassword("s3cret-password")
	require.NoError(t, err)

	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  "Test Person",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, e.store.Principals().CreatePrincipal(context.Background(), p))
	return p
}

func (e *testEnv) tokenFor(t *testing.T, p domain.Principal) string {
	t.Helper()

	token, _, err := e.codec.Issue(p.ID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	UserRole string          `json:"user_role"`
	Data     json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
