package session

import (
	"errors"
	"fmt"
)

// Messages surfaced through AuthState.Error. Callers match on these literals.
const (
	MsgAccountNotFound = "Invalid credentials or account not found"
	MsgInvalidPassword = "Invalid password"
	MsgLoginFailed     = "Login failed"
	MsgInitFailed      = "Failed to initialize authentication"
)

var (
	// ErrNotFound is returned by a CredentialDirectory when no active member has the email.
	ErrNotFound = errors.New("staff member not found")
	// ErrMalformedSession is returned by a Store whose persisted record cannot be decoded.
	ErrMalformedSession = errors.New("malformed session record")
)

// Kind classifies why an operation did not authenticate.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindInfrastructure Kind = "infrastructure"
)

// Error carries the kind of failure alongside the user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func authenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func infrastructureError(message string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// IsKind reports whether err is a session Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var sessErr *Error
	return errors.As(err, &sessErr) && sessErr.Kind == kind
}
