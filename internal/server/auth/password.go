package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewPasswordHasher(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A malformed hash is an
// error; a plain mismatch is not.
func (h *PasswordHasher) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// VerifyDummy spends the same bcrypt work as Verify against a fixed hash of
// the configured cost. Login calls it for unknown identifiers so response
// time does not reveal whether an account exists.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash(), []byte(password))
}

func (h *PasswordHasher) dummyHash() []byte {
	h.dummyOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("smarthealth-dummy-password"), h.cost)
		if err != nil {
			// out-of-range cost; Hash fails the same way
			b, _ = bcrypt.GenerateFromPassword([]byte("smarthealth-dummy-password"), bcrypt.DefaultCost)
		}
		h.dummy = b
	})
	return h.dummy
}
