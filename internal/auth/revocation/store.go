// Package revocation tracks which credentials must no longer authenticate:
// an explicit per-token blacklist for single-session logout, and a
// per-subject cutoff timestamp for "log out everywhere". Both are consulted
// on every authenticated request, after signature verification and before
// the directory lookup.
package revocation

import (
	"context"
	"time"
)

// Store is the shared mutable revocation state. Implementations must be
// safe under concurrent readers and writers with read-your-writes
// consistency per process. The in-memory implementation is correct only for
// a single-instance deployment; the Redis implementation is correct
// whenever all instances share the same backend.
type Store interface {
	// Revoke blacklists one specific token until its natural expiry.
	// Entries are keyed by a collision-resistant fingerprint of the raw
	// token, never the token itself.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked is a point lookup against the blacklist.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// MarkLogoutAll sets invalidateBefore[subjectID] = at. Monotonic: a
	// call with an earlier timestamp than the existing marker is a no-op,
	// so a stale out-of-order call can never re-validate credentials.
	MarkLogoutAll(ctx context.Context, subjectID string, at time.Time) error

	// IssuedBeforeCutoff reports issuedAt < invalidateBefore[subjectID].
	// An absent marker means false.
	IssuedBeforeCutoff(ctx context.Context, subjectID string, issuedAt time.Time) (bool, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// Purger is implemented by stores that need explicit cleanup of expired
// entries. Purging is a memory-bound optimization: an expired entry can
// never affect a verification decision because the codec's expiry check
// runs first.
type Purger interface {
	// PurgeExpired drops unreachable entries and reports how many were
	// removed.
	PurgeExpired(ctx context.Context) (int, error)
}
