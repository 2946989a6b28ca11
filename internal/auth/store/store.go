package store

import (
	"context"
	"errors"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
)

var (
	// ErrNotFound is the permanent "no such record" failure. Anything
	// else returned by a driver is treated as transient by callers.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists reports a uniqueness violation (email or
	// provider id).
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the principal directory.
// Concrete drivers (sqlite today, postgres later) implement this.
type Store interface {
	Principals() Principals

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Principals is the keyed-record access the authentication core consumes.
// Lookups must honor context deadlines: a slow directory surfaces as a
// context error, never as ErrNotFound.
type Principals interface {
	// GetPrincipalByID resolves a credential subject to the live record.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByEmail is used during password login and front-desk
	// lookup.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// GetPrincipalByProviderID is used by identity linking.
	GetPrincipalByProviderID(ctx context.Context, providerID string) (domain.Principal, error)

	// CreatePrincipal inserts a new principal (id is provided by the app
	// via ULID). Returns ErrAlreadyExists on email or provider id
	// collision.
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// ListPrincipals returns all principals ordered by creation date
	// (newest first).
	ListPrincipals(ctx context.Context) ([]domain.Principal, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error

	// UpdateRole changes a principal's role. This is the administrative
	// mutation outstanding credentials must keep resolving across.
	UpdateRole(ctx context.Context, id string, role domain.Role) error
}
