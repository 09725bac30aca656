package auth

import (
	"fmt"

	"bank-auth/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// Scheme decides how passwords are stored and compared
type Scheme string

const (
	// Plaintext stores passwords as received and lets the database compare them
	Plaintext Scheme = Scheme(config.PasswordPlaintext)
	// Bcrypt stores bcrypt hashes and compares in the application
	Bcrypt Scheme = Scheme(config.PasswordBcrypt)
)

func (s Scheme) hash(password string) (string, error) {
	if s != Bcrypt {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s Scheme) matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
