package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/session"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BcryptVerifier checks supplied against a bcrypt hash.
func BcryptVerifier(stored, supplied string) bool {
	return ComparePassword(stored, supplied) == nil
}

// VerifierFor returns the password check matching the storage scheme.
func VerifierFor(scheme string) session.PasswordVerifier {
	if scheme == config.PasswordSchemeBcrypt {
		return BcryptVerifier
	}
	return session.PlainEqual
}

// PasswordEncoder turns a new plaintext password into its stored form.
type PasswordEncoder struct {
	Scheme string
	Cost   int
}

// Encode returns the value to persist for password.
func (e PasswordEncoder) Encode(password string) (string, error) {
	if e.Scheme == config.PasswordSchemeBcrypt {
		return HashPassword(password, e.Cost)
	}
	return password, nil
}
