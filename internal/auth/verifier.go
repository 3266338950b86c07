package auth

import (
	"crypto/subtle"
	"fmt"
)

// ErrInvalidCredentials is returned for any credential mismatch. Callers
// must surface it as a generic failure without hinting which field was wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// CredentialVerifier decides whether a username/password pair identifies the
// admin. The strategy is pluggable so the comparison can be swapped for a
// remote identity provider without touching handlers.
type CredentialVerifier interface {
	Verify(username, password string) error
}

// StaticVerifier checks credentials against a single configured admin
// account. The password is a bcrypt hash when available, with a constant-time
// plaintext comparison as a development fallback.
type StaticVerifier struct {
	username     string
	passwordHash string
	password     string
}

func NewStaticVerifier(username, passwordHash, password string) *StaticVerifier {
	return &StaticVerifier{
		username:     username,
		passwordHash: passwordHash,
		password:     password,
	}
}

func (v *StaticVerifier) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	if v.passwordHash != "" {
		if err := CheckPassword(v.passwordHash, password); err != nil || !userOK {
			return ErrInvalidCredentials
		}
		return nil
	}

	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
