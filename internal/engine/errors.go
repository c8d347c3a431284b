package engine

import "errors"

// ErrNotModified is returned by a Sender when an edit would leave the
// message exactly as it is. The engine treats it as success.
var ErrNotModified = errors.New("message is not modified")

// IsNotModified reports whether err is, or wraps, ErrNotModified.
func IsNotModified(err error) bool {
	return errors.Is(err, ErrNotModified)
}
