package catalog

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes catalog validation errors.
type ErrorCode string

const (
	// ErrCodeDuplicateKey indicates a subject with the key already exists.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// ErrCodeNotFound indicates the referenced subject does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeUnknownSubject indicates a lesson operation referenced a subject
	// that is not in the catalog.
	ErrCodeUnknownSubject ErrorCode = "UNKNOWN_SUBJECT"

	// ErrCodeIndexOutOfRange indicates a 1-based lesson index outside
	// [1, len(day)].
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeUnknownDay indicates a day key outside the seven-day enumeration.
	ErrCodeUnknownDay ErrorCode = "UNKNOWN_DAY"

	// ErrCodeInvalidSubject indicates a subject with an empty name or a key
	// outside the identifier alphabet.
	ErrCodeInvalidSubject ErrorCode = "INVALID_SUBJECT"

	// ErrCodeNoChange indicates a replacement with the subject already at
	// that position.
	ErrCodeNoChange ErrorCode = "NO_CHANGE"
)

// Error is a catalog validation error. The catalog is left unchanged
// whenever an *Error is returned.
type Error struct {
	Code    ErrorCode
	Message string

	// Subject, Day and Index carry the offending values when relevant.
	Subject string
	Day     Day
	Index   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errDuplicateKey(key string) *Error {
	return &Error{Code: ErrCodeDuplicateKey, Message: fmt.Sprintf("subject %q already exists", key), Subject: key}
}

func errNotFound(key string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("subject %q not found", key), Subject: key}
}

func errUnknownSubject(key string) *Error {
	return &Error{Code: ErrCodeUnknownSubject, Message: fmt.Sprintf("unknown subject %q", key), Subject: key}
}

func errIndexOutOfRange(day Day, index, length int) *Error {
	return &Error{
		Code:    ErrCodeIndexOutOfRange,
		Message: fmt.Sprintf("lesson %d out of range [1, %d] for %s", index, length, day),
		Day:     day,
		Index:   index,
	}
}

// NewIndexOutOfRange reports a 1-based lesson index outside a day of
// length lessons.
func NewIndexOutOfRange(day Day, index, length int) *Error {
	return errIndexOutOfRange(day, index, length)
}

func errUnknownDay(day Day) *Error {
	return &Error{Code: ErrCodeUnknownDay, Message: fmt.Sprintf("unknown day %q", day), Day: day}
}

func errNoChange(day Day, index int, key string) *Error {
	return &Error{
		Code:    ErrCodeNoChange,
		Message: fmt.Sprintf("lesson %d of %s is already %q", index, day, key),
		Subject: key,
		Day:     day,
		Index:   index,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsDuplicateKey reports whether err is a duplicate subject key error.
func IsDuplicateKey(err error) bool { return hasCode(err, ErrCodeDuplicateKey) }

// IsNotFound reports whether err is a missing subject error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsUnknownSubject reports whether err references a subject not in the catalog.
func IsUnknownSubject(err error) bool { return hasCode(err, ErrCodeUnknownSubject) }

// IsIndexOutOfRange reports whether err is a lesson index error.
func IsIndexOutOfRange(err error) bool { return hasCode(err, ErrCodeIndexOutOfRange) }

// IsUnknownDay reports whether err is an unknown day key error.
func IsUnknownDay(err error) bool { return hasCode(err, ErrCodeUnknownDay) }

// IsInvalidSubject reports whether err rejects a malformed subject.
func IsInvalidSubject(err error) bool { return hasCode(err, ErrCodeInvalidSubject) }

// IsNoChange reports whether err rejects a replacement that changes nothing.
func IsNoChange(err error) bool { return hasCode(err, ErrCodeNoChange) }

// PersistError reports that a mutation was applied in memory but could not be
// written to durable storage.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistFailure reports whether err is a *PersistError.
func IsPersistFailure(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
