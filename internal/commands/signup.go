package commands

import (
	"context"
	"flag"
	"fmt"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command. It does not log in.
type SignupCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *SignupCmd) SetPassword(password string) {
	c.password = password
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string     { return "gtodo signup [common flags] [--password <pw>] [username]" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
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

	if err := env.Session.Signup(ctx, creds); err != nil {
		return report(env.ErrOut, err)
	}

	env.info("account created (run: gtodo login)")
	return exitcode.Success
}
