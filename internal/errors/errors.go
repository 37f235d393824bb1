package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console core
var (
	// Session errors
	ErrNoSession    = errors.New("no valid session")
	ErrNoToken      = errors.New("no access token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Transport errors
	ErrTransport       = errors.New("transport failure")
	ErrDecodeResponse  = errors.New("failed to decode response")
	ErrInvalidOrigin   = errors.New("invalid backend origin")
	ErrBootstrapCalled = errors.New("bootstrap already run")

	// Preference store errors
	ErrPrefNotFound = errors.New("preference not found")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
