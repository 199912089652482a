package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

const verificationTokenBytes = 32

// GenerateVerificationToken returns a hex string of 2*verificationTokenBytes
// characters, read from a cryptographically secure source. The plaintext is
// only ever embedded in the emailed link, the database sees its hash
func GenerateVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to read random bytes for token, %w", err)
	}

	return hex.EncodeToString(b), nil
}

// HashToken derives the stored form of a verification token
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// TokenMatches compares a presented token against a stored hash without
// leaking timing information
func TokenMatches(presented, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(presented)), []byte(storedHash)) == 1
}
