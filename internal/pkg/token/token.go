package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NewVerificationKey generates a cryptographically random 64-character hex
// key for account-verification, password-reset, and email-change flows.
func NewVerificationKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCode generates a random numeric code of n digits, zero-padded, for SMS
// delivery.
func NewCode(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
