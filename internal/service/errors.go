package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindRequest is a generic network or server failure.
	KindRequest Kind = iota
	// KindUnauthorized means the bearer token is no longer accepted.
	KindUnauthorized
	// KindInvalidCredentials means login was rejected.
	KindInvalidCredentials
	// KindConflict means the signup username already exists.
	KindConflict
	// KindNotFound means the mutation target no longer exists.
	KindNotFound
)

// Sentinel errors, matched with errors.Is against any *Error of the same kind.
var (
	ErrRequest            = errors.New("request failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("username already exists")
	ErrNotFound           = errors.New("not found")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrRequest
	}
}

// String returns the kind name.
func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error is a classified API failure.
type Error struct {
	Op      string // operation, e.g. "login" or "list tasks"
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // server-supplied message, if any
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err. Errors that are not classified count as KindRequest.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindRequest
}
