package errors

import (
	"fmt"
)

// Wrap wraps an error with additional context while preserving the original
// error category. If err is already a typed error (Permanent, Temporary,
// NotFound, Unauthorized), it wraps it with the same type. Otherwise, it
// returns a PermanentError.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}

	switch {
	case IsTemporary(err):
		return NewTemporary(msg, err)
	case IsNotFound(err):
		var nfe *NotFoundError
		if As(err, &nfe) {
			return NewNotFoundWithCause(nfe.resource, nfe.id, err)
		}
		return NewPermanent(msg, err)
	case IsUnauthorized(err):
		return NewUnauthorizedWithCause(msg, err)
	default:
		return NewPermanent(msg, err)
	}
}

// Wrapf wraps an error with a formatted message while preserving the original
// error category.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
