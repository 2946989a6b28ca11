package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the OWASP minimum recommendation for
// interactive logins; bump memory first if they ever need strengthening.
const (
	iterations  uint32 = 3
	memory      uint32 = 64 * 1024 // KiB
	parallelism uint8  = 2
	saltLength         = 16
	keyLength   uint32 = 32
)

// ErrPasswordMismatch is returned by VerifyPassword when the password does
// not match the stored hash. Callers must not distinguish this from an
// unknown account in any user-facing message.
var ErrPasswordMismatch = errors.New("cryptox: password mismatch")

// HashPassword generates a PHC-format Argon2id hash string including salt
// and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism, b64Salt, b64Hash,
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. The parameters encoded in the hash are used for the comparison, so
// hashes created under older parameter sets keep verifying.
func VerifyPassword(password, encodedHash string) error {
	var (
		mem, iters uint32
		par        uint8
		b64Salt    string
		b64Hash    string
	)

	n, err := fmt.Sscanf(encodedHash, "$argon2id$v=19$m=%d,t=%d,p=%d$%s", &mem, &iters, &par, &b64Salt)
	if err != nil || n != 4 {
		return errors.New("cryptox: invalid hash format")
	}

	// Sscanf's %s is greedy, the final token is "salt$hash".
	for i := range len(b64Salt) {
		if b64Salt[i] == '$' {
			b64Hash = b64Salt[i+1:]
			b64Salt = b64Salt[:i]
			break
		}
	}
	if b64Hash == "" {
		return errors.New("cryptox: invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(b64Salt)
	if err != nil {
		return errors.New("cryptox: invalid hash salt")
	}
	expected, err := base64.RawStdEncoding.DecodeString(b64Hash)
	if err != nil {
		return errors.New("cryptox: invalid hash digest")
	}

	got := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expected)))
	if subtle.ConstantTimeCompare(got, expected) != 1 {
		return ErrPasswordMismatch
	}

	return nil
}
