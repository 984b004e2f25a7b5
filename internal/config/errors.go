package config

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a recoverable input or range error.
type ErrorKind int

const (
	ParseError ErrorKind = iota
	BoundsError
	RangeOrderError
	MagnitudeError
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse"
	case BoundsError:
		return "bounds"
	case RangeOrderError:
		return "range_order"
	case MagnitudeError:
		return "magnitude"
	default:
		return "unknown"
	}
}

// ValidationError is the inline message shown next to the offending control.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}
