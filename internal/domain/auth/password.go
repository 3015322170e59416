package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrUnknownHashType is returned when a stored hash has an unrecognized format.
var ErrUnknownHashType = errors.New("unknown hash type")

// argon2idParams defines OWASP minimum parameters for Argon2id.
// Memory: 47 MiB, Iterations: 1, Parallelism: 1
var argon2idParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword returns an Argon2id hash of the password in PHC format,
// suitable for the password_hash field of a configured account.
// Format: $argon2id$v=19$m=48128,t=1,p=1$<salt>$<hash>
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2idParams)
}

// hashSHA256 returns the SHA-256 hex digest of the password. Kept for
// compatibility with accounts seeded from legacy deployments.
func hashSHA256(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DetectHashType identifies the hash algorithm used for a stored hash.
// Returns "argon2id" for PHC format, "sha256" for prefixed or bare hex,
// "unknown" for unrecognized formats.
func DetectHashType(storedHash string) string {
	if strings.HasPrefix(storedHash, "$argon2id$") {
		return "argon2id"
	}
	if strings.HasPrefix(storedHash, "sha256:") {
		return "sha256"
	}
	// Legacy bare SHA-256 hex is exactly 64 hex characters.
	if len(storedHash) == 64 && isHexString(storedHash) {
		return "sha256"
	}
	return "unknown"
}

// VerifyPassword checks a plaintext password against a stored hash.
// Supports Argon2id PHC hashes and legacy SHA-256 hashes ("sha256:<hex>"
// or bare hex). Returns ErrUnknownHashType for unrecognized formats.
func VerifyPassword(password, storedHash string) (bool, error) {
	switch DetectHashType(storedHash) {
	case "argon2id":
		return argon2id.ComparePasswordAndHash(password, storedHash)
	case "sha256":
		want := strings.TrimPrefix(storedHash, "sha256:")
		got := hashSHA256(password)
		return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1, nil
	default:
		return false, ErrUnknownHashType
	}
}

func isHexString(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
