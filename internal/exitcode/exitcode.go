// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, username taken).
	UserError = 1

	// AuthError indicates the command needs a valid session (not logged in,
	// bad credentials, session expired).
	AuthError = 2

	// BackendError indicates an API or network failure.
	BackendError = 3
)
