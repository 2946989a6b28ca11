package domain

import "time"

// Principal identifies a user of the booking platform. Created either by
// local registration (PasswordHash set) or by identity linking on first
// external login (ProviderID set). Never deleted by this service; role and
// password mutations happen elsewhere and previously issued credentials
// must keep resolving to the live record.
type Principal struct {
	ID            string
	Email         string
	DisplayName   string
	Role          Role
	PasswordHash  string // argon2id encoded, empty for OAuth-only principals
	ProviderID    string // unique when present, empty for local principals
	PictureURL    string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the principal can use the password login path.
func (p Principal) HasPassword() bool { return p.PasswordHash != "" }

// ExternalProfile is the already-verified profile delivered by the OAuth
// provider. The handshake and its cryptography live behind the provider
// adapter; by the time this struct exists the identity is trusted.
type ExternalProfile struct {
	ProviderID  string
	Email       string
	DisplayName string
	PictureURL  string
}
