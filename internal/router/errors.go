package router

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes requests the router rejects before touching the
// catalog.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates a non-admin caller attempted an admin action.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrCodeMalformedInput indicates a payload or free-text reply that does
	// not have the required structure.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeNoEditContext indicates a schedule editor step arrived before the
	// day or lesson it operates on was selected.
	ErrCodeNoEditContext ErrorCode = "NO_EDIT_CONTEXT"
)

// Error is a rejected request. The router turns it into a notice; it is
// returned alongside the Response for logging and tests.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errUnauthorized(what string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: what + " requires admin"}
}

func errMalformed(format string, args ...any) *Error {
	return &Error{Code: ErrCodeMalformedInput, Message: fmt.Sprintf(format, args...)}
}

func errNoEditContext(msg string) *Error {
	return &Error{Code: ErrCodeNoEditContext, Message: msg}
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnauthorized reports whether err rejected a non-admin caller.
func IsUnauthorized(err error) bool { return hasCode(err, ErrCodeUnauthorized) }

// IsMalformedInput reports whether err rejected badly structured input.
func IsMalformedInput(err error) bool { return hasCode(err, ErrCodeMalformedInput) }

// IsNoEditContext reports whether err rejected an out-of-order editor step.
func IsNoEditContext(err error) bool { return hasCode(err, ErrCodeNoEditContext) }
