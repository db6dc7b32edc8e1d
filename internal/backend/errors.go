package backend

import (
	"fmt"
	"net/http"
)

// ErrClass classifies a backend failure for metrics and retry decisions:
// transient errors are safe to retry with backoff, permanent ones are
// not.
type ErrClass string

const (
	ClassTransient ErrClass = "transient"
	ClassPermanent ErrClass = "permanent"
)

// Error wraps a backend adapter failure with its operation and class.
type Error struct {
	Op    string
	Class ErrClass
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s: %s: %v", e.Op, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op string, class ErrClass, err error) *Error {
	return &Error{Op: op, Class: class, Err: err}
}

// classify decides whether an error (or an HTTP status) should be treated
// as transient — network failures, timeouts, and 429/5xx responses are
// retryable; 4xx (other than 429) indicates a malformed request and is
// permanent.
func classify(err error, status int) ErrClass {
	if err != nil {
		return ClassTransient
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return ClassTransient
	}
	return ClassPermanent
}
