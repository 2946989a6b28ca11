package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/idx"
)

func TestPrincipalService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &PrincipalService{Store: newTestStore(t)}

	id := idx.New().String()
	require.NoError(t, svc.Store.Principals().CreatePrincipal(ctx, domain.Principal{
		ID:    id,
		Email: "erin@example.com",
		Role:  domain.RoleCustomer,
	}))

	t.Run("lookup normalizes the email", func(t *testing.T) {
		p, err := svc.LookupByEmail(ctx, "  ERIN@example.com ")
		require.NoError(t, err)
		require.Equal(t, id, p.ID)
	})

	t.Run("lookup misses are ErrNotFound", func(t *testing.T) {
		_, err := svc.LookupByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("role update is visible on the next read", func(t *testing.T) {
		require.NoError(t, svc.UpdateRole(ctx, id, domain.RoleCashier))

		p, err := svc.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.RoleCashier, p.Role)
	})

	t.Run("rejects a role outside the closed set", func(t *testing.T) {
		err := svc.UpdateRole(ctx, id, domain.Role("superuser"))
		require.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("updating a missing principal is ErrNotFound", func(t *testing.T) {
		err := svc.UpdateRole(ctx, idx.New().String(), domain.RoleAdmin)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
