package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/cryptox"
	"github.com/fieldbook/fieldbook/pkg/idx"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// MinPasswordLength is the floor for local registration passwords.
const MinPasswordLength = 8

var (
	// ErrInvalidCredentials covers unknown email, passwordless account
	// and wrong password alike. Callers must not tell these apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrEmailTaken   = errors.New("email_taken")
	ErrWeakPassword = errors.New("weak_password")
	ErrInvalidEmail = errors.New("invalid_email")
)

// CredentialService owns the credential lifecycle: local registration,
// password login, issuance, and the two revocation actions. Every login
// path, local or external, terminates in IssueFor so the authentication
// gate sees exactly one kind of credential.
type CredentialService struct {
	Codec       *jwtx.Codec
	Store       store.Store
	Revocations revocation.Store
}

// Register creates a local principal and issues its first credential.
func (s *CredentialService) Register(
	ctx context.Context,
	email, password, displayName string,
) (domain.Principal, domain.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Principal{}, domain.Credential{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return domain.Principal{}, domain.Credential{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Principal{}, domain.Credential{}, err
	}

	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         domain.RoleCustomer,
		PasswordHash: hash,
	}

	if err := s.Store.Principals().CreatePrincipal(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, domain.Credential{}, ErrEmailTaken
		}
		return domain.Principal{}, domain.Credential{}, err
	}

	cred, err := s.IssueFor(ctx, p)
	if err != nil {
		return domain.Principal{}, domain.Credential{}, err
	}
	return p, cred, nil
}

// Login verifies an email/password pair and issues a credential.
func (s *CredentialService) Login(
	ctx context.Context,
	email, password string,
) (domain.Principal, domain.Credential, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	p, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, domain.Credential{}, ErrInvalidCredentials
		}
		return domain.Principal{}, domain.Credential{}, err
	}

	// OAuth-only principals have no password; same rejection as a wrong
	// password so the response doesn't map the directory.
	if !p.HasPassword() {
		return domain.Principal{}, domain.Credential{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		log.Info("password verification failed", "principal_id", p.ID)
		return domain.Principal{}, domain.Credential{}, ErrInvalidCredentials
	}

	cred, err := s.IssueFor(ctx, p)
	if err != nil {
		return domain.Principal{}, domain.Credential{}, err
	}
	return p, cred, nil
}

// IssueFor signs a fresh credential for the principal.
func (s *CredentialService) IssueFor(_ context.Context, p domain.Principal) (domain.Credential, error) {
	token, claims, err := s.Codec.Issue(p.ID)
	if err != nil {
		return domain.Credential{}, err
	}

	return domain.Credential{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiryTime(),
	}, nil
}

// Logout blacklists the presented token until its natural expiry. The
// claims must come from a successful verification of the same token.
func (s *CredentialService) Logout(ctx context.Context, token string, claims jwtx.Claims) error {
	return s.Revocations.Revoke(ctx, token, claims.ExpiryTime())
}

// LogoutAll supersedes every credential the subject holds that was issued
// before this instant. Credentials issued afterwards remain valid.
func (s *CredentialService) LogoutAll(ctx context.Context, subjectID string) error {
	return s.Revocations.MarkLogoutAll(ctx, subjectID, time.Now().UTC())
}
