package commands

import (
	"context"
	"flag"
	"fmt"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *LoginCmd) SetPassword(password string) {
	c.password = password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the token" }
func (c *LoginCmd) Usage() string     { return "gtodo login [common flags] [--password <pw>] [username]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	if env.Session.Authenticated() {
		env.info("already logged in")
		return exitcode.Success
	}

	var username string
	if len(args) == 1 {
		username = args[0]
	}
	creds, err := newPrompter(env).credentials(username, c.password)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := env.Session.Login(ctx, creds); err != nil {
		return report(env.ErrOut, err)
	}

	env.info("ok")
	return exitcode.Success
}
