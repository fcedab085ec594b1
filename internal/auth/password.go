package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is bcrypt's input limit in bytes.
const MaxPasswordLength = 72

var ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")

// BcryptEncoder hashes passwords with bcrypt.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder returns an encoder using cost, or bcrypt.DefaultCost when
// cost is out of bcrypt's range.
func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

// Encode creates a bcrypt digest of the password.
func (e *BcryptEncoder) Encode(plain string) (string, error) {
	if len(plain) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), e.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Matches compares a password with its digest.
func (e *BcryptEncoder) Matches(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// GenerateSecret creates a random 32-byte secret, hex encoded.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
