// Package apperr holds the error taxonomy shared by the gate, the services
// and the client-side stores. Callers match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the identity provider, datastore or API could not be
	// reached. The core does not retry; callers apply their own policy.
	ErrTransport = errors.New("transport failure")

	// ErrUnauthenticated means there is no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the session is valid but the role is insufficient.
	ErrForbidden = errors.New("authorization denied")

	// ErrProfileMissing means no profile row exists for an identity.
	ErrProfileMissing = errors.New("profile missing")

	// ErrValidation means a mutation was rejected locally; state is unchanged.
	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
)

// Validation wraps ErrValidation with a readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transport wraps err as a transport failure, keeping the cause in the chain.
func Transport(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
