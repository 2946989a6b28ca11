package service

import (
	"context"
	"strings"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/store"
)

// PrincipalService serves the directory reads and the administrative role
// mutation. The role change takes effect on the subject's next request:
// the gate resolves the live record, never a copy cached in the token.
type PrincipalService struct {
	Store store.Store
}

func (s *PrincipalService) Get(ctx context.Context, id string) (domain.Principal, error) {
	return s.Store.Principals().GetPrincipalByID(ctx, id)
}

func (s *PrincipalService) List(ctx context.Context) ([]domain.Principal, error) {
	return s.Store.Principals().ListPrincipals(ctx)
}

func (s *PrincipalService) LookupByEmail(ctx context.Context, email string) (domain.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.Store.Principals().GetPrincipalByEmail(ctx, email)
}

func (s *PrincipalService) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	return s.Store.Principals().UpdateRole(ctx, id, role)
}
