package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptySecret is returned when hashing an empty password.
var ErrEmptySecret = errors.New("auth: empty secret")

// HashCost is the bcrypt work factor used for new hashes.
var HashCost = bcrypt.DefaultCost

// Hash returns a salted bcrypt encoding of secret. Each call produces a
// different string; all of them verify against the same secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), HashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares secret against storedHash in constant time. Malformed
// hashes simply fail to verify.
func Verify(secret, storedHash string) bool {
	if secret == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}
