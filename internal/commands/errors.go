package commands

import (
	"errors"
	"fmt"
	"io"

	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

// report prints err to errOut and returns the matching exit code.
func report(errOut io.Writer, err error) int {
	var apiErr *service.Error
	switch {
	case errors.Is(err, tasklist.ErrNotAuthenticated):
		fmt.Fprintln(errOut, "error: not logged in (run: gtodo login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, tasklist.ErrStale):
		fmt.Fprintln(errOut, "error: session expired (run: gtodo login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintln(errOut, "error: invalid username or password")
		return exitcode.AuthError
	case errors.Is(err, service.ErrConflict):
		fmt.Fprintln(errOut, "error: username already exists")
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, tasklist.ErrEmptyName):
		fmt.Fprintln(errOut, "error: task name required")
		return exitcode.UserError
	case errors.Is(err, session.ErrMissingCredentials):
		fmt.Fprintln(errOut, "error: username and password are required")
		return exitcode.UserError
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Message != "":
		// Rejected input, e.g. a password the server considers too short.
		fmt.Fprintf(errOut, "error: %s\n", apiErr.Message)
		return exitcode.UserError
	case errors.Is(err, service.ErrRequest):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
}
