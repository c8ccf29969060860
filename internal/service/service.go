// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for the remote to-do API.
// All HTTP calls go through this interface.
// Session and task list code never import the HTTP backend directly.
type Service interface {
	// Login exchanges credentials for a bearer token.
	// Returns ErrInvalidCredentials if the server rejects them.
	Login(ctx context.Context, creds Credentials) (string, error)

	// Signup creates an account.
	// Returns ErrConflict if the username is already taken.
	Signup(ctx context.Context, creds Credentials) error

	// ListTasks returns the user's tasks in server order.
	ListTasks(ctx context.Context, token string) ([]Task, error)

	// CreateTask creates a task and returns it with its server-assigned ID.
	CreateTask(ctx context.Context, token, name string) (Task, error)

	// ToggleTask flips the done flag of a task and returns the updated task.
	ToggleTask(ctx context.Context, token string, id TaskID) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, token string, id TaskID) error
}
