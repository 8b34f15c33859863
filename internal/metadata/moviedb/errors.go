package moviedb

import (
	"errors"
	"fmt"
)

// Sentinel errors for TMDB API operations.
var (
	ErrNotFound     = errors.New("moviedb: not found")
	ErrUnauthorized = errors.New("moviedb: invalid api key")
	ErrRateLimited  = errors.New("moviedb: rate limited by server")
	ErrBadRequest   = errors.New("moviedb: bad request")
	ErrServer       = errors.New("moviedb: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // Operation: "searchFilms"
	Query string // If applicable
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("moviedb %s %q: %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("moviedb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, query string, err error) error {
	return &Error{
		Op:    op,
		Query: query,
		Err:   err,
	}
}
