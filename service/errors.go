package service

import "errors"

var (
	// ErrDuplicateEmail an account with this email already exists
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials unknown email or wrong password; the two cases are
	// deliberately indistinguishable
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound record missing or owned by another user
	ErrNotFound = errors.New("record not found")
	// ErrSessionNotFound session token unknown or expired
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError rejected user input. Message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPersistence reports whether err is an unexpected storage failure, i.e.
// none of the domain errors above.
func IsPersistence(err error) bool {
	if err == nil || IsValidation(err) {
		return false
	}
	return !errors.Is(err, ErrDuplicateEmail) &&
		!errors.Is(err, ErrInvalidCredentials) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrSessionNotFound)
}
