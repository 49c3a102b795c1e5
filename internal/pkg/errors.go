package pkg

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Wrap with the helpers below and
// test with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrReference     = errors.New("referenced entity missing")
	ErrConflict      = errors.New("conflict")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrExpired       = errors.New("expired")
	ErrIntegrity     = errors.New("integrity check failed")
)

func Validationf(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func Referencef(format string, args ...any) error {
	return wrap(ErrReference, format, args...)
}

func Conflictf(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func Authorizationf(format string, args ...any) error {
	return wrap(ErrAuthorization, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func Expiredf(format string, args ...any) error {
	return wrap(ErrExpired, format, args...)
}

func Integrityf(format string, args ...any) error {
	return wrap(ErrIntegrity, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Code returns the stable identifier of the taxonomy entry err belongs to,
// or "internal" when it belongs to none.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrReference):
		return "reference"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAuthorization):
		return "authorization"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	default:
		return "internal"
	}
}
