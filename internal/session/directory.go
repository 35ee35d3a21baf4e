package session

import (
	"context"
	"time"

	"github.com/ontimely/admin-portal/internal/domain"
)

// CredentialDirectory resolves staff credentials by email.
// FindActiveByEmail must only ever return members with IsActive set and
// returns ErrNotFound otherwise.
type CredentialDirectory interface {
	FindActiveByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// PasswordVerifier reports whether supplied matches the stored password value.
type PasswordVerifier func(stored, supplied string) bool

// PlainEqual compares the stored value with the supplied password verbatim.
func PlainEqual(stored, supplied string) bool {
	return stored == supplied
}
