package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/internal/auth/store/drivers/sqlite"
	"github.com/fieldbook/fieldbook/pkg/idx"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func newCredentialService(t *testing.T) (*CredentialService, *revocation.MemoryStore) {
	t.Helper()

	codec, err := jwtx.NewCodec(testSecret, "test-issuer", time.Hour)
	require.NoError(t, err)

	rev := revocation.NewMemoryStore(2 * time.Hour)

	return &CredentialService{
		Codec:       codec,
		Store:       newTestStore(t),
		Revocations: rev,
	}, rev
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newCredentialService(t)

	t.Run("creates a customer and issues a credential", func(t *testing.T) {
		p, cred, err := svc.Register(ctx, "Anna@Example.com", "s3cret-password", "Anna")
		require.NoError(t, err)

		require.Equal(t, domain.RoleCustomer, p.Role)
		require.Equal(t, "anna@example.com", p.Email)
		require.True(t, p.HasPassword())

		require.Equal(t, "Bearer", cred.TokenType)
		claims, err := svc.Codec.Verify(cred.Token)
		require.NoError(t, err)
		require.Equal(t, p.ID, claims.Subject)
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "anna@example.com", "another-password", "Other")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "short@example.com", "short", "Short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("rejects a bad email", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "not-an-email", "s3cret-password", "Nobody")
		require.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newCredentialService(t)

	registered, _, err := svc.Register(ctx, "bruce@example.com", "s3cret-password", "Bruce")
	require.NoError(t, err)

	t.Run("issues a credential for the right password", func(t *testing.T) {
		p, cred, err := svc.Login(ctx, "BRUCE@example.com", "s3cret-password")
		require.NoError(t, err)
		require.Equal(t, registered.ID, p.ID)

		claims, err := svc.Codec.Verify(cred.Token)
		require.NoError(t, err)
		require.Equal(t, registered.ID, claims.Subject)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, wrongPass := svc.Login(ctx, "bruce@example.com", "wrong-password")
		_, _, unknown := svc.Login(ctx, "nobody@example.com", "s3cret-password")

		require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
		require.ErrorIs(t, unknown, ErrInvalidCredentials)
	})

	t.Run("passwordless account cannot password-login", func(t *testing.T) {
		err := svc.Store.Principals().CreatePrincipal(ctx, domain.Principal{
			ID:            idx.New().String(),
			Email:         "oauth-only@example.com",
			Role:          domain.RoleCustomer,
			ProviderID:    "provider|123",
			EmailVerified: true,
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "oauth-only@example.com", "whatever-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogoutBlacklistsToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, rev := newCredentialService(t)

	_, cred, err := svc.Register(ctx, "carla@example.com", "s3cret-password", "Carla")
	require.NoError(t, err)

	claims, err := svc.Codec.Verify(cred.Token)
	require.NoError(t, err)

	revoked, err := rev.IsRevoked(ctx, cred.Token)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, cred.Token, claims))

	revoked, err = rev.IsRevoked(ctx, cred.Token)
	require.NoError(t, err)
	require.True(t, revoked)

	// Revocation is per-token, other tokens of the same subject survive.
	_, other, err := svc.Login(ctx, "carla@example.com", "s3cret-password")
	require.NoError(t, err)
	revoked, err = rev.IsRevoked(ctx, other.Token)
	require.NoError(t, err)
	require.False(t, revoked)
}

// TestLogoutAllTimeline walks a fixed clock through the full lifecycle: a
// token issued before the logout-all marker is superseded, one issued after
// stays valid.
func TestLogoutAllTimeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()
	current := base.Add(100 * time.Second)
	clock := func() time.Time { return current }

	codec, err := jwtx.NewCodec(testSecret, "test-issuer", time.Hour)
	require.NoError(t, err)
	codec = codec.WithClock(clock)

	rev := revocation.NewMemoryStore(2 * time.Hour).WithClock(clock)

	// t=100: issue the first credential.
	t1, t1Claims, err := codec.Issue("u1")
	require.NoError(t, err)

	// t=200: log out everywhere, cutoff at now.
	current = base.Add(200 * time.Second)
	require.NoError(t, rev.MarkLogoutAll(ctx, "u1", current))

	// t=300: the old credential still verifies but is superseded.
	current = base.Add(300 * time.Second)
	_, err = codec.Verify(t1)
	require.NoError(t, err)

	superseded, err := rev.IssuedBeforeCutoff(ctx, "u1", t1Claims.IssuedTime())
	require.NoError(t, err)
	require.True(t, superseded)

	// t=400: a fresh credential post-cutoff.
	current = base.Add(400 * time.Second)
	_, t2Claims, err := codec.Issue("u1")
	require.NoError(t, err)

	// t=500: the fresh credential is not superseded; another subject is
	// untouched throughout.
	current = base.Add(500 * time.Second)
	superseded, err = rev.IssuedBeforeCutoff(ctx, "u1", t2Claims.IssuedTime())
	require.NoError(t, err)
	require.False(t, superseded)

	superseded, err = rev.IssuedBeforeCutoff(ctx, "u2", t1Claims.IssuedTime())
	require.NoError(t, err)
	require.False(t, superseded)
}
