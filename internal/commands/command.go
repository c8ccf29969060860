// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"gtodo/internal/config"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

// Env is what a command runs against.
type Env struct {
	// Config is always provided (config dir, API URL, flags).
	Config *config.Config

	// Session owns the stored token.
	Session *session.Controller

	// Tasks is the task list of Session.
	Tasks *tasklist.Synchronizer

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	Logger *slog.Logger
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires an Authenticated session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string) int
}

// AutoRefresher is implemented by commands that want the task list reloaded
// in the background whenever the session becomes Authenticated.
type AutoRefresher interface {
	AutoRefresh() bool
}

// info prints an informational line unless --quiet is set.
func (e *Env) info(msg string) {
	if !e.Config.Quiet {
		fmt.Fprintln(e.Out, msg)
	}
}
