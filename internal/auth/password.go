package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used in production.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer inputs would be silently
// truncated, so Hash rejects them instead.
const maxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and verifies passwords with bcrypt.
//
// Credentials are only ever compared through Verify, so "login succeeds on an
// exact match" holds without the plaintext being stored anywhere.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest returns a PasswordService with a caller-chosen
// cost. Tests in other packages pass bcrypt.MinCost (4) to stay fast.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash, ErrPasswordMismatch when it
// doesn't, and a wrapped error when the hash itself is unusable.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
