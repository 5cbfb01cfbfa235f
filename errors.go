package ung

import "ung/internal/errs"

// ErrorKind classifies why a UniNavGraph operation failed.
type ErrorKind = errs.Kind

const (
	IoError       = errs.IoError
	FormatError   = errs.FormatError
	ConfigError   = errs.ConfigError
	DataError     = errs.DataError
	InternalError = errs.InternalError
)

// Error is the error type every UniNavGraph operation returns on failure:
// a Kind for programmatic dispatch, the failing operation's name, and the
// wrapped cause.
type Error = errs.Error

// NewError constructs an *Error. Internal packages build these through
// internal/errs directly to avoid importing this root package; NewError
// exists so callers outside the module can construct one the same way,
// e.g. in a custom MetricsCollector or test double.
func NewError(kind ErrorKind, op string, err error) *Error {
	return errs.New(kind, op, err)
}
