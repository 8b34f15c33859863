package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive API operations.
var (
	ErrNotFound    = errors.New("archive: not found")
	ErrRateLimited = errors.New("archive: rate limited by server")
	ErrBadRequest  = errors.New("archive: bad request")
	ErrServer      = errors.New("archive: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "fetchCatalog"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("archive %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, err error) error {
	return &Error{
		Op:  op,
		Err: err,
	}
}
