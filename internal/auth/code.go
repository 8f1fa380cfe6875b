package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCodeCost is the bcrypt work factor for login codes.
const DefaultCodeCost = bcrypt.DefaultCost

// CodeHasher hashes and checks one-time login codes with bcrypt, so the
// configured demo code never sits in memory as plain text after startup.
type CodeHasher struct {
	cost int
}

// NewCodeHasher returns a CodeHasher with DefaultCodeCost.
func NewCodeHasher() *CodeHasher {
	return &CodeHasher{cost: DefaultCodeCost}
}

// NewCodeHasherForTest returns a CodeHasher with the given cost. Use
// bcrypt.MinCost in tests of other packages.
func NewCodeHasherForTest(cost int) *CodeHasher {
	return &CodeHasher{cost: cost}
}

// Hash returns the bcrypt hash of code.
func (h *CodeHasher) Hash(code string) (string, error) {
	if len(code) > 72 {
		return "", fmt.Errorf("auth: code must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing code: %w", err)
	}

	return string(hashed), nil
}

// ErrCodeMismatch is returned by Verify when the code does not match.
var ErrCodeMismatch = errors.New("auth: code does not match")

// Verify returns nil when code matches hash.
func (h *CodeHasher) Verify(hash, code string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCodeMismatch
		}
		return fmt.Errorf("auth: comparing code hash: %w", err)
	}
	return nil
}
