package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations follows the current OWASP recommendation for
	// PBKDF2-HMAC-SHA256.
	DefaultIterations = 210000

	saltLength = 16
	keyLength  = 32
)

// Provider hashes passwords with salted PBKDF2-HMAC-SHA256. The iteration
// count is embedded in each hash, so it can be raised without invalidating
// stored credentials.
type Provider struct {
	iterations int
}

// New returns a Provider using the given iteration count, or
// DefaultIterations when it is not positive.
func New(iterations int) *Provider {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Provider{iterations: iterations}
}

// HashPassword returns "iterations$salt$derivedKey" with salt and key hex
// encoded.
func (p *Provider) HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, p.iterations, keyLength, sha256.New)
	return fmt.Sprintf("%d$%s$%s", p.iterations, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPassword re-derives the key with the parameters embedded in the
// stored hash and compares in constant time.
func (p *Provider) VerifyPassword(hashedPassword, password string) bool {
	parts := strings.SplitN(hashedPassword, "$", 3)
	if len(parts) != 3 {
		return false
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// Hash is a fast deterministic digest for single-use verification keys and
// mobile codes. Those secrets are high-entropy random values, so a single
// unsalted SHA-256 pass is sufficient and keeps them queryable by hash.
func (p *Provider) Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
