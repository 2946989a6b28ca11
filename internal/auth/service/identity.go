package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/idx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// ErrEmailBelongsToLocalAccount is returned when an external profile's
// email is already registered to a principal with a different (or no)
// provider id. The accounts stay distinct; merging is an explicit flow
// this service does not offer.
var ErrEmailBelongsToLocalAccount = errors.New("email_belongs_to_local_account")

// IdentityService resolves an externally-verified profile to a local
// principal, creating one on first sight.
type IdentityService struct {
	Store store.Store
}

// LinkOrCreate is idempotent on provider id: a repeat login returns the
// existing principal untouched. First sight creates a customer-role,
// passwordless, email-verified principal. Role escalation is impossible on
// this path.
func (s *IdentityService) LinkOrCreate(
	ctx context.Context,
	profile domain.ExternalProfile,
) (domain.Principal, error) {
	log := slogx.FromContext(ctx)

	existing, err := s.Store.Principals().GetPrincipalByProviderID(ctx, profile.ProviderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:            idx.New().String(),
		Email:         strings.ToLower(strings.TrimSpace(profile.Email)),
		DisplayName:   strings.TrimSpace(profile.DisplayName),
		Role:          domain.RoleCustomer,
		ProviderID:    profile.ProviderID,
		PictureURL:    profile.PictureURL,
		EmailVerified: true,
	}

	err = s.Store.Principals().CreatePrincipal(ctx, p)
	if err == nil {
		log.Info("principal created from external identity", "principal_id", p.ID)
		return p, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return domain.Principal{}, err
	}

	// Two first logins can race; the loser lands here and adopts the
	// winner's record.
	winner, lookupErr := s.Store.Principals().GetPrincipalByProviderID(ctx, profile.ProviderID)
	if lookupErr == nil {
		return winner, nil
	}
	if !errors.Is(lookupErr, store.ErrNotFound) {
		return domain.Principal{}, lookupErr
	}

	// Not a race: the email is taken by a principal that isn't linked to
	// this provider identity.
	return domain.Principal{}, ErrEmailBelongsToLocalAccount
}
