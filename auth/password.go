// Package auth covers the dashboard shared secret and the bearer tokens
// issued in exchange for it.
package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks a submitted dashboard password.
type Authenticator interface {
	Authenticate(password string) bool
}

// PlainPassword compares against the configured secret as-is.
type PlainPassword struct {
	Secret string
}

func (p PlainPassword) Authenticate(password string) bool {
	if p.Secret == "" || password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.Secret), []byte(password)) == 1
}

// BcryptPassword compares against a bcrypt hash of the secret.
type BcryptPassword struct {
	Hash []byte
}

func (b BcryptPassword) Authenticate(password string) bool {
	if len(b.Hash) == 0 || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(b.Hash, []byte(password)) == nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// NewAuthenticator prefers the hash when one is configured. A secret that
// is itself a bcrypt hash is treated as one.
func NewAuthenticator(secret, hash string) Authenticator {
	if hash != "" {
		return BcryptPassword{Hash: []byte(hash)}
	}
	if isBcryptHash(secret) {
		return BcryptPassword{Hash: []byte(secret)}
	}
	return PlainPassword{Secret: secret}
}
