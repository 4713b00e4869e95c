package multierr

import (
	"bytes"
	"errors"
	"fmt"
)

// Error collects several independent errors, such as every invalid field of a config or every resource
// that failed to render, so they can be reported together.
type Error []error

func (e Error) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"

	case 1:
		return e[0].Error()

	default:
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "%d errors occurred:", len(e))
		for _, err := range e {
			fmt.Fprintf(buf, "\n\t* %v", err)
		}
		return buf.String()
	}
}

// Append mutates e to add err. No-op if `err == nil`.
//
//	var errs multierr.Error
//	errs.Append(err)
func (e *Error) Append(err error) {
	if e == nil || err == nil {
		return
	}
	if merr, ok := err.(Error); ok {
		*e = append(*e, merr...)
		return
	}
	*e = append(*e, err)
}

// ErrOrNil converts to a plain [error]: nil when empty (avoiding a typed nil), the sole error when there is
// only one, otherwise e.
func (e Error) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e
	}
}

// Unwrap implements the multiple-error form used by [errors.Is] and [errors.As].
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether any member matches target.
func (e Error) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
