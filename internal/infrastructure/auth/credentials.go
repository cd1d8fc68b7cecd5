package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login, without saying which part was wrong
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminCredentials checks logins against the single configured account
type AdminCredentials struct {
	username     string
	passwordHash []byte
}

// NewAdminCredentials creates a checker. An empty hash disables login.
func NewAdminCredentials(username, passwordHash string) *AdminCredentials {
	return &AdminCredentials{username: username, passwordHash: []byte(passwordHash)}
}

// Verify returns nil when username and password match the configured account
func (a *AdminCredentials) Verify(username, password string) error {
	if len(a.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces the bcrypt hash stored in admin.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
