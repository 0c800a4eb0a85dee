package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptHash reports that a stored credential hash could not be
// parsed as bcrypt output. A plain mismatch is not an error.
var ErrCorruptHash = errors.New("corrupt credential hash")

// HashPassword returns a bcrypt hash using the given cost. bcrypt
// salts internally, so hashing the same input twice yields different
// digests.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash against a plaintext candidate.
// A mismatch returns (false, nil); only a malformed stored hash
// produces an error.
func VerifyPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrCorruptHash
}
