package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldbook/fieldbook/pkg/cryptox"
)

const (
	revokedPrefix = "revoked:"
	cutoffPrefix  = "logout_cutoff:"
)

// markCutoffScript sets the cutoff only when it moves forward, so two racing
// logout-all calls can never roll the marker back. ARGV[1] is the cutoff in
// unix seconds, ARGV[2] the key TTL in seconds.
var markCutoffScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
return 1
`)

// RedisStore is the shared Store implementation for multi-instance
// deployments. Blacklist entries carry a key TTL equal to the token's
// remaining lifetime, so Redis reclaims them without a sweeper.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	cutoffTTL time.Duration

	now func() time.Time
}

// NewRedisStore creates a store on an existing client. cutoffTTL bounds
// marker retention the same way as the memory store.
func NewRedisStore(client redis.UniversalClient, cutoffTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "fieldbook:",
		cutoffTTL: cutoffTTL,
		now:       time.Now,
	}
}

// WithClock overrides the store's time source for tests.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

func (s *RedisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// Already past natural expiry; the codec rejects it regardless.
		return nil
	}

	key := s.prefix + revokedPrefix + cryptox.FingerprintToken(token)
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := s.prefix + revokedPrefix + cryptox.FingerprintToken(token)

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("revocation: redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) MarkLogoutAll(ctx context.Context, subjectID string, at time.Time) error {
	key := s.prefix + cutoffPrefix + subjectID

	ttl := s.cutoffTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	err := markCutoffScript.Run(ctx, s.client,
		[]string{key},
		at.Unix(),
		int(ttl.Seconds()),
	).Err()
	if err != nil {
		return fmt.Errorf("revocation: redis mark cutoff: %w", err)
	}
	return nil
}

func (s *RedisStore) IssuedBeforeCutoff(ctx context.Context, subjectID string, issuedAt time.Time) (bool, error) {
	key := s.prefix + cutoffPrefix + subjectID

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("revocation: redis get cutoff: %w", err)
	}

	cutoff, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("revocation: corrupt cutoff %q: %w", val, err)
	}

	return issuedAt.Unix() < cutoff, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
