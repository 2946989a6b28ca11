package domain

import "time"

// Credential is what the issuance endpoints return: a signed bearer token
// and its expiry. The token itself is the only server-side artifact; its
// validity is computed at verification time from signature, clock and
// revocation state.
type Credential struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"` // always "Bearer"
	ExpiresAt time.Time `json:"expires_at"`
}
