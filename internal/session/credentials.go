package session

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials turns a password into the value kept in the registry and
// checks a login attempt against it.
type Credentials interface {
	Seal(password string) (string, error)
	Match(stored, candidate string) bool
}

// Plaintext keeps passwords as given and compares them by exact equality.
// This is the registry format the storefront pages understand; it offers no
// protection to anyone who can read the backing store.
type Plaintext struct{}

func (Plaintext) Seal(password string) (string, error) { return password, nil }

func (Plaintext) Match(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Bcrypt stores bcrypt hashes. A zero Cost means bcrypt.DefaultCost.
type Bcrypt struct{ Cost int }

func (b Bcrypt) Seal(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (Bcrypt) Match(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// CredentialsFor maps a configured password mode to its Credentials.
// Unknown modes fall back to Plaintext.
func CredentialsFor(mode string, cost int) Credentials {
	if mode == "bcrypt" {
		return Bcrypt{Cost: cost}
	}
	return Plaintext{}
}
