package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewCodecRejectsShortSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewCodec([]byte("too short"), "fieldbook", time.Hour)
	require.Error(t, err)
}

func TestIssueThenVerify(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	codec = codec.WithClock(fixedClock(now))

	token, issued, err := codec.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	require.Equal(t, now, issued.IssuedTime())
	require.Equal(t, now.Add(time.Hour), issued.ExpiryTime())

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", claims.Subject)
	require.Equal(t, issued.IssuedTime(), claims.IssuedTime())
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)

	token, _, err := codec.Issue("subject-1")
	require.NoError(t, err)

	// Flip the last character of the signature segment.
	last := token[len(token)-1]
	flip := byte('A')
	if last == flip {
		flip = 'B'
	}
	tampered := token[:len(token)-1] + string(flip)

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)

	token, _, err := codec.Issue("subject-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = parts[1][:len(parts[1])-1] + "x"

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	ours, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)
	theirs, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), "fieldbook", time.Hour)
	require.NoError(t, err)

	token, _, err := theirs.Issue("subject-1")
	require.NoError(t, err)

	_, err = ours.Verify(token)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyDistinguishesExpiredFromMalformed(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)

	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	token, _, err := codec.WithClock(fixedClock(issuedAt)).Issue("subject-1")
	require.NoError(t, err)

	// Still valid one second before expiry.
	_, err = codec.WithClock(fixedClock(issuedAt.Add(time.Hour - time.Second))).Verify(token)
	require.NoError(t, err)

	// Expired after the TTL has fully elapsed, never malformed.
	_, err = codec.WithClock(fixedClock(issuedAt.Add(2 * time.Hour))).Verify(token)
	require.ErrorIs(t, err, ErrExpired)
	require.NotErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec(testSecret, "fieldbook", time.Hour)
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", "a.b.c", "e30.e30."} {
		_, err := codec.Verify(bad)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestVerifyEnforcesIssuer(t *testing.T) {
	t.Parallel()

	issuerA, err := NewCodec(testSecret, "issuer-a", time.Hour)
	require.NoError(t, err)
	issuerB, err := NewCodec(testSecret, "issuer-b", time.Hour)
	require.NoError(t, err)

	token, _, err := issuerA.Issue("subject-1")
	require.NoError(t, err)

	_, err = issuerB.Verify(token)
	require.ErrorIs(t, err, ErrMalformed)
}
