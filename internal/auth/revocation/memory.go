package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/fieldbook/fieldbook/pkg/cryptox"
)

// MemoryStore is the in-process Store implementation. Correct for a
// single-instance deployment only: a revoke on one instance is invisible to
// another. Multi-instance deployments must use the Redis store.
type MemoryStore struct {
	mu       sync.RWMutex
	revoked  map[string]time.Time // fingerprint -> token expiry
	cutoffs  map[string]time.Time // subject id -> invalidateBefore
	cutoffTTL time.Duration

	now func() time.Time
}

// NewMemoryStore creates an empty store. cutoffTTL bounds how long a
// logout-all marker is retained; anything at least the credential TTL is
// safe because older tokens have expired on their own by then.
func NewMemoryStore(cutoffTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		revoked:   make(map[string]time.Time),
		cutoffs:   make(map[string]time.Time),
		cutoffTTL: cutoffTTL,
		now:       time.Now,
	}
}

// WithClock overrides the store's time source for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	fp := cryptox.FingerprintToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Last-write-wins by expiry keeps a racing purge from dropping an
	// in-flight revoke: the entry lands with its own expiry regardless of
	// what was there before.
	s.revoked[fp] = expiresAt
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	fp := cryptox.FingerprintToken(token)

	s.mu.RLock()
	expiresAt, ok := s.revoked[fp]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// An entry past the token's own expiry is dead weight; report not
	// revoked and let the sweeper reclaim it.
	return s.now().Before(expiresAt), nil
}

func (s *MemoryStore) MarkLogoutAll(_ context.Context, subjectID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.cutoffs[subjectID]; ok && !existing.Before(at) {
		return nil // markers only move forward
	}

	s.cutoffs[subjectID] = at
	return nil
}

func (s *MemoryStore) IssuedBeforeCutoff(_ context.Context, subjectID string, issuedAt time.Time) (bool, error) {
	s.mu.RLock()
	cutoff, ok := s.cutoffs[subjectID]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return issuedAt.Before(cutoff), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// PurgeExpired drops blacklist entries whose tokens have expired and
// cutoff markers old enough that every credential they could supersede has
// expired anyway.
func (s *MemoryStore) PurgeExpired(context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for fp, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, fp)
			removed++
		}
	}

	if s.cutoffTTL > 0 {
		for subject, cutoff := range s.cutoffs {
			if now.Sub(cutoff) > s.cutoffTTL {
				delete(s.cutoffs, subject)
				removed++
			}
		}
	}

	return removed, nil
}
