// Package apperrors defines the error taxonomy shared across layers.
// Callers wrap these sentinels with fmt.Errorf("...: %w", ...) and check
// them with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotFound indicates an unknown entity id.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner indicates an attempt to touch another user's data.
	ErrNotOwner = errors.New("not the owner")

	// ErrUnauthenticated indicates a request without a valid session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials indicates a failed login. It is deliberately
	// the same for unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUser indicates a registration with a taken username.
	ErrDuplicateUser = errors.New("username already taken")

	// ErrUpstream indicates a failure of an external service.
	ErrUpstream = errors.New("upstream service failed")
)

// ValidationError reports missing or malformed input. The message is safe
// to surface to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation creates a ValidationError with the given message.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
